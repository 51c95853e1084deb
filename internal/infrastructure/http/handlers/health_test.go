package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func serve(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, readinessResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var body readinessResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func okCheck(name string) DependencyCheck {
	return DependencyCheck{Name: name, Check: func(context.Context) error { return nil }}
}

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewHealthDependenciesHandler(okCheck("mongodb"), okCheck("redis"))
	rec, body := serve(t, h.Readiness)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body.Status != "ok" || len(body.Dependencies) != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestReadiness_Degraded(t *testing.T) {
	h := NewHealthDependenciesHandler(
		okCheck("mongodb"),
		DependencyCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	)
	rec, body := serve(t, h.Readiness)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if body.Status != "degraded" {
		t.Errorf("expected degraded, got %q", body.Status)
	}
	if got := body.Dependencies["redis"]; got.Status != "unhealthy" || got.Error != "connection refused" {
		t.Errorf("unexpected redis status: %+v", got)
	}
	if got := body.Dependencies["mongodb"]; got.Status != "ok" {
		t.Errorf("unexpected mongodb status: %+v", got)
	}
}
