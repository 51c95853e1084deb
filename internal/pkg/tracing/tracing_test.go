package tracing

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(false, "test", &bytes.Buffer{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetup_ExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := Setup(true, "test", &buf, zerolog.Nop())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "ItemService.Create")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "ItemService.Create") {
		t.Fatalf("expected exported span, got %q", buf.String())
	}
}
