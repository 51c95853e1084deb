package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = strings.Repeat("s", 32)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": secret,
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "marketplace", cfg.Mongo.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Equal(t, 4, cfg.Audit.Workers)
	assert.False(t, cfg.Tracing.Enabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":      secret,
		"ENV":             "Production",
		"TOKEN_TTL":       "2h",
		"AUDIT_WORKERS":   "8",
		"TRACING_ENABLED": "true",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 8, cfg.Audit.Workers)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET"},
		{"short secret", map[string]string{"JWT_SECRET": "short"}, "at least 32"},
		{"bad ttl", map[string]string{"JWT_SECRET": secret, "TOKEN_TTL": "soon"}, "TOKEN_TTL"},
		{"no workers", map[string]string{"JWT_SECRET": secret, "AUDIT_WORKERS": "0"}, "AUDIT_WORKERS"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(tc.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
