package config_test

import (
	"testing"
	"time"

	"github.com/pestaway/backoffice/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("REFRESH_TOKEN_TTL", "")

	cfg := config.Load()

	if cfg.Port != "8080" {
		t.Errorf("port: got %s, want 8080", cfg.Port)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("access TTL: got %s, want 15m", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("refresh TTL: got %s, want 168h", cfg.RefreshTokenTTL)
	}
}

func TestLoadTTLOverrides(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("REFRESH_TOKEN_TTL", "48h")

	cfg := config.Load()

	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Errorf("access TTL: got %s, want 5m", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 48*time.Hour {
		t.Errorf("refresh TTL: got %s, want 48h", cfg.RefreshTokenTTL)
	}
}

func TestLoadInvalidTTLFallsBack(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "soon")

	cfg := config.Load()

	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("access TTL: got %s, want default 15m", cfg.AccessTokenTTL)
	}
}
