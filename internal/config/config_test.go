package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LOCK_BACKEND", "")
	t.Setenv("OVER_LIMIT_POLICY", "")
	t.Setenv("LOCK_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LockBackend != LockBackendMemory {
		t.Errorf("expected memory lock backend, got %s", cfg.LockBackend)
	}
	if cfg.OverLimitPolicy != OverLimitWarn {
		t.Errorf("expected warn policy, got %s", cfg.OverLimitPolicy)
	}
	if cfg.BlockOverLimit() {
		t.Error("warn policy should not block")
	}
	if cfg.LockTTL != 10*time.Second {
		t.Errorf("expected 10s lock TTL, got %s", cfg.LockTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Run("block policy", func(t *testing.T) {
		t.Setenv("OVER_LIMIT_POLICY", "block")
		cfg, _ := Load()
		if !cfg.BlockOverLimit() {
			t.Error("expected block policy")
		}
	})

	t.Run("unknown policy falls back to warn", func(t *testing.T) {
		t.Setenv("OVER_LIMIT_POLICY", "shout")
		cfg, _ := Load()
		if cfg.OverLimitPolicy != OverLimitWarn {
			t.Errorf("expected warn, got %s", cfg.OverLimitPolicy)
		}
	})

	t.Run("redis without address falls back to memory", func(t *testing.T) {
		t.Setenv("LOCK_BACKEND", "redis")
		t.Setenv("REDIS_ADDR", "")
		cfg, _ := Load()
		if cfg.LockBackend != LockBackendMemory {
			t.Errorf("expected memory, got %s", cfg.LockBackend)
		}
	})

	t.Run("redis with address", func(t *testing.T) {
		t.Setenv("LOCK_BACKEND", "redis")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		cfg, _ := Load()
		if cfg.LockBackend != LockBackendRedis {
			t.Errorf("expected redis, got %s", cfg.LockBackend)
		}
	})

	t.Run("invalid duration falls back", func(t *testing.T) {
		t.Setenv("LOCK_TTL", "soon")
		cfg, _ := Load()
		if cfg.LockTTL != 10*time.Second {
			t.Errorf("expected fallback 10s, got %s", cfg.LockTTL)
		}
	})
}
