package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsLocal(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("KV_BACKEND", "")
	t.Setenv("CONSISTENCY_ENABLED", "")
	t.Setenv("CONSISTENCY_MAX_WAIT_MS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "local" {
		t.Fatalf("Env = %q", cfg.Env)
	}
	if cfg.Store.Backend != "memory" {
		t.Fatalf("local backend = %q, want memory", cfg.Store.Backend)
	}
	if !cfg.Consistency.Enabled {
		t.Fatal("consistency should default to enabled")
	}
	if cfg.Consistency.MaxWait != 15*time.Second {
		t.Fatalf("MaxWait = %v", cfg.Consistency.MaxWait)
	}
	if cfg.Store.S3.UseSSL {
		t.Fatal("local S3 should not default to SSL")
	}
}

func TestLoadExplicitValues(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("KV_BACKEND", "s3")
	t.Setenv("KV_NAMESPACE", "staging")
	t.Setenv("KV_S3_ENDPOINT", "s3.example.com")
	t.Setenv("KV_S3_BUCKET", "my-bucket")
	t.Setenv("CONSISTENCY_ENABLED", "false")
	t.Setenv("CONSISTENCY_INITIAL_DELAY_MS", "150")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "s3" {
		t.Fatalf("backend = %q", cfg.Store.Backend)
	}
	if cfg.Store.Namespace != "staging" {
		t.Fatalf("namespace = %q", cfg.Store.Namespace)
	}
	if cfg.Store.S3.Bucket != "my-bucket" || !cfg.Store.S3.UseSSL {
		t.Fatalf("s3 = %+v", cfg.Store.S3)
	}
	if cfg.Consistency.Enabled {
		t.Fatal("consistency should be disabled")
	}
	if cfg.Consistency.InitialDelay != 150*time.Millisecond {
		t.Fatalf("InitialDelay = %v", cfg.Consistency.InitialDelay)
	}
}

func TestEnvMillisRejectsGarbage(t *testing.T) {
	t.Setenv("CONSISTENCY_MAX_DELAY_MS", "not-a-number")
	if got := envMillis("CONSISTENCY_MAX_DELAY_MS", time.Second); got != time.Second {
		t.Fatalf("envMillis = %v, want fallback", got)
	}
	t.Setenv("CONSISTENCY_MAX_DELAY_MS", "-5")
	if got := envMillis("CONSISTENCY_MAX_DELAY_MS", time.Second); got != time.Second {
		t.Fatalf("envMillis negative = %v, want fallback", got)
	}
}
