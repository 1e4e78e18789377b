package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("PG_DSN", "postgres://u:p@localhost:5432/tasks")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.TokenTTL.Duration() != time.Hour {
		t.Fatalf("token ttl: got %v", cfg.Auth.TokenTTL.Duration())
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Fatalf("bcrypt cost: got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Reminder.Interval.Duration() != 0 {
		t.Fatalf("reminder ticker must be off by default")
	}
	if !cfg.App.Dev() {
		t.Fatalf("default env should be dev")
	}
}

func TestLoad_RedisURLOverridesAddr(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_URL", "redis://:pw@redis.internal:6390/3")
	t.Setenv("AUTH_TOKEN_TTL", "900")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Redis.Addr != "redis.internal:6390" || cfg.Redis.Password != "pw" || cfg.Redis.DB != 3 {
		t.Fatalf("redis config: %+v", cfg.Redis)
	}
	if cfg.Auth.TokenTTL.Duration() != 15*time.Minute {
		t.Fatalf("bare seconds ttl: got %v", cfg.Auth.TokenTTL.Duration())
	}
}

func TestLoad_RejectsBadBcryptCost(t *testing.T) {
	setRequired(t)
	t.Setenv("BCRYPT_COST", "2")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bcrypt cost below minimum")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("PG_DSN", "postgres://localhost/tasks")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_RedissURLEnablesTLS(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_URL", "rediss://app:pw@cache.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Redis.TLS || cfg.Redis.Username != "app" || cfg.Redis.Addr != "cache.example.com:6379" {
		t.Fatalf("redis config: %+v", cfg.Redis)
	}
}
