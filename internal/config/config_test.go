package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("APIPort = %q, want 8080", cfg.APIPort)
	}
	if cfg.NATSSubject != "directory.import" {
		t.Fatalf("NATSSubject = %q", cfg.NATSSubject)
	}
	if got := cfg.SigCacheTTL(); got != 24*time.Hour {
		t.Fatalf("SigCacheTTL() = %v, want 24h", got)
	}
}

func TestLoadYAMLOverlayThenEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "api_port: \"9000\"\nsig_cache_ttl_seconds: 60\nredis_url: \"redis://file:6379/1\"\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("REDIS_URL", "redis://env:6379/2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "9000" {
		t.Fatalf("APIPort = %q, want file value 9000", cfg.APIPort)
	}
	if got := cfg.SigCacheTTL(); got != time.Minute {
		t.Fatalf("SigCacheTTL() = %v, want 1m", got)
	}
	if cfg.RedisURL != "redis://env:6379/2" {
		t.Fatalf("RedisURL = %q, env should win over file", cfg.RedisURL)
	}
}

func TestLoadIgnoresMalformedIntEnv(t *testing.T) {
	t.Setenv("API_RATE_LIMIT_RPS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIRateLimitRPS != 20 {
		t.Fatalf("APIRateLimitRPS = %d, want default 20", cfg.APIRateLimitRPS)
	}
}
