package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Store       StoreConfig
	Consistency ConsistencyConfig
}

type StoreConfig struct {
	// Backend selects the key-value client: memory, postgres or s3.
	Backend   string
	DSN       string
	Namespace string
	S3        S3Config
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type ConsistencyConfig struct {
	Enabled      bool
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxWait      time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Env:         env,
		Store:       loadStoreConfig(env),
		Consistency: loadConsistencyConfig(),
	}, nil
}

func loadStoreConfig(env string) StoreConfig {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("KV_BACKEND")))
	if backend == "" {
		if strings.EqualFold(env, "local") {
			backend = "memory"
		} else {
			backend = "postgres"
		}
	}
	return StoreConfig{
		Backend:   backend,
		DSN:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Namespace: strings.TrimSpace(os.Getenv("KV_NAMESPACE")),
		S3:        loadS3Config(env),
	}
}

func loadS3Config(env string) S3Config {
	return S3Config{
		Endpoint:  resolveS3Endpoint(env),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("KV_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("KV_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("KV_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("KV_S3_BUCKET")), "contentguard-artifacts"),
		UseSSL:    resolveS3UseSSL(env),
	}
}

func resolveS3Endpoint(env string) string {
	if strings.EqualFold(env, "local") {
		return firstNonEmpty(strings.TrimSpace(os.Getenv("KV_S3_ENDPOINT")), "minio:9000")
	}
	return strings.TrimSpace(os.Getenv("KV_S3_ENDPOINT"))
}

func resolveS3UseSSL(env string) bool {
	if strings.EqualFold(env, "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("KV_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func loadConsistencyConfig() ConsistencyConfig {
	enabled := true
	if raw := strings.TrimSpace(os.Getenv("CONSISTENCY_ENABLED")); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			enabled = v
		}
	}
	return ConsistencyConfig{
		Enabled:      enabled,
		InitialDelay: envMillis("CONSISTENCY_INITIAL_DELAY_MS", 300*time.Millisecond),
		MaxDelay:     envMillis("CONSISTENCY_MAX_DELAY_MS", 3*time.Second),
		MaxWait:      envMillis("CONSISTENCY_MAX_WAIT_MS", 15*time.Second),
	}
}

func envMillis(name string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
