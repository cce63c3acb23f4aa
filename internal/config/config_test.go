package config

import "testing"

func TestLoadTrafficControlDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_SECOND", "")
	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("MAX_CONCURRENT_REQUESTS", "")
	t.Setenv("MAX_UPLOAD_MB", "")

	cfg := Load()
	if cfg.RateLimitPerSecond != 10 {
		t.Fatalf("expected default rate limit 10, got %v", cfg.RateLimitPerSecond)
	}
	if cfg.RateLimitBurst != 20 {
		t.Fatalf("expected default burst 20, got %d", cfg.RateLimitBurst)
	}
	if cfg.MaxConcurrent != 64 {
		t.Fatalf("expected default max concurrent 64, got %d", cfg.MaxConcurrent)
	}
	if cfg.MaxUploadBytes != 25*1024*1024 {
		t.Fatalf("expected default max upload 25MB, got %d", cfg.MaxUploadBytes)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")
	t.Setenv("MAX_UPLOAD_MB", "50")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MODEL_TIMEOUT_SECONDS", "180")

	cfg := Load()
	if cfg.RateLimitPerSecond != 2.5 {
		t.Fatalf("expected rate limit override, got %v", cfg.RateLimitPerSecond)
	}
	if cfg.MaxUploadBytes != 50*1024*1024 {
		t.Fatalf("expected max upload 50MB, got %d", cfg.MaxUploadBytes)
	}
	if !cfg.MinioUseSSL {
		t.Fatalf("expected minio ssl override")
	}
	if cfg.ModelTimeout != 180 {
		t.Fatalf("expected model timeout 180, got %d", cfg.ModelTimeout)
	}
}

func TestLoadInvalidNumberFallsBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg := Load()
	if cfg.RateLimitBurst != 20 {
		t.Fatalf("expected fallback burst 20, got %d", cfg.RateLimitBurst)
	}
}
