package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestLoadReadsSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
server:
  port: "9090"
  cors_origins: ["http://localhost:19006"]
cache:
  share_ttl: 2m
admission:
  lookup_timeout: 5s
  time_zone: Asia/Kolkata
  prompt:
    title: Who are you?
handoff:
  ttl: 30s
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || len(cfg.Server.CORSOrigins) != 1 {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Admission.Prompt.Title != "Who are you?" {
		t.Fatalf("unexpected prompt title %q", cfg.Admission.Prompt.Title)
	}
	if got := TTLDuration(cfg.Admission.LookupTimeout, time.Minute); got != 5*time.Second {
		t.Fatalf("expected 5s lookup timeout, got %v", got)
	}
	if cfg.Location().String() != "Asia/Kolkata" {
		t.Fatalf("expected Asia/Kolkata, got %v", cfg.Location())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		"PORT":         "7000",
		"DATABASE_URL": "postgres://db",
		"REDIS_ADDR":   "redis:6379",
		"REDIS_DB":     "2",
		"JWT_SECRET":   "s3cret",
	}
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.applyEnv(func(k string) string { return env[k] })

	if cfg.Server.Port != "7000" || cfg.Postgres.URL != "postgres://db" || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Redis.DB != 2 || cfg.Auth.JWTSecret != "s3cret" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestTTLDuration(t *testing.T) {
	cases := []struct {
		raw      string
		fallback time.Duration
		want     time.Duration
	}{
		{"", time.Minute, time.Minute},
		{"20s", time.Minute, 20 * time.Second},
		{"bogus", time.Minute, time.Minute},
	}
	for _, tc := range cases {
		if got := TTLDuration(tc.raw, tc.fallback); got != tc.want {
			t.Fatalf("TTLDuration(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := Config{}
	cfg.Admission.TimeZone = "Not/AZone"
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
}
