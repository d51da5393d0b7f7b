package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/prbusiness/dashboard/internal/core/access"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Session.Driver != "memory" || cfg.Locale != "en" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Mode() != access.ModeUnion {
		t.Errorf("expected union mode, got %s", cfg.Mode())
	}
	if cfg.Backend.Timeout != 10*time.Second || cfg.Session.TTL != 168*time.Hour {
		t.Errorf("unexpected durations: %v %v", cfg.Backend.Timeout, cfg.Session.TTL)
	}
	if cfg.JWTSecret == "" {
		t.Error("development must fall back to a cookie secret")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"NAV_POLICY":     "active_role",
		"SESSION_DRIVER": "redis",
		"LOCALE":         "zh",
		"JWT_SECRET":     "s3cret",
		"REDIS_DB":       "2",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode() != access.ModeActiveRole || cfg.Session.Driver != "redis" || cfg.Redis.DB != 2 || cfg.JWTSecret != "s3cret" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production without secret", map[string]string{"ENV": "production"}},
		{"unknown policy", map[string]string{"NAV_POLICY": "intersection"}},
		{"unknown driver", map[string]string{"SESSION_DRIVER": "disk"}},
		{"unknown locale", map[string]string{"LOCALE": "fr"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := load(context.Background(), envconfig.MapLookuper(tt.env)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
