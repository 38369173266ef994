package config

import (
	"testing"
	"time"

	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults should succeed: %v", err)
	}

	if cfg.Data.Dir != "" {
		t.Errorf("default data dir should be empty (embedded), got %q", cfg.Data.Dir)
	}
	if cfg.Site.OutputDir != "public" {
		t.Errorf("default output dir should be public, got %q", cfg.Site.OutputDir)
	}
	if cfg.Site.PlotlySrc != DefaultPlotlySrc {
		t.Errorf("default plotly src mismatch: %q", cfg.Site.PlotlySrc)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("default listen addr should be :8080, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("default shutdown timeout should be 5s, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SELLOS_DATA_DIR", "/srv/apl/processed")
	t.Setenv("SELLOS_OUTPUT_DIR", "dist")
	t.Setenv("SELLOS_LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("SELLOS_BUILD_WORKERS", "2")
	t.Setenv("SELLOS_SHUTDOWN_TIMEOUT", "10s")
	t.Setenv("SELLOS_DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Data.Dir != "/srv/apl/processed" {
		t.Errorf("data dir not picked up: %q", cfg.Data.Dir)
	}
	if cfg.Site.OutputDir != "dist" {
		t.Errorf("output dir not picked up: %q", cfg.Site.OutputDir)
	}
	if cfg.Site.Workers != 2 {
		t.Errorf("workers not picked up: %d", cfg.Site.Workers)
	}
	if cfg.Server.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("listen addr not picked up: %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown timeout not picked up: %v", cfg.Server.ShutdownTimeout)
	}
	if !cfg.Debug {
		t.Error("debug flag not picked up")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad listen addr", "SELLOS_LISTEN_ADDR", "8080"},
		{"zero workers", "SELLOS_BUILD_WORKERS", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.key, tc.value)
			}
			if errors.GetCode(err) != errors.CodeConfigInvalid {
				t.Errorf("expected CONFIG_INVALID, got %s", errors.GetCode(err))
			}
		})
	}
}

func TestMalformedNumbersFallBackToDefaults(t *testing.T) {
	t.Setenv("SELLOS_BUILD_WORKERS", "many")
	t.Setenv("SELLOS_SHUTDOWN_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Site.Workers != 4 {
		t.Errorf("unparseable workers should fall back to 4, got %d", cfg.Site.Workers)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("unparseable timeout should fall back to 5s, got %v", cfg.Server.ShutdownTimeout)
	}
}
