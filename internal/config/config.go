package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/labstack/gommon/random"
)

// Config carries everything main needs to wire the application together.
type Config struct {
	DatabaseURL    string
	Port           int
	MigrateOnStart bool

	JWTSecret       string
	AccessTokenTTL  int // seconds
	RefreshTokenTTL int // seconds

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	PhotoBucket    string

	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from the environment, applying development
// defaults where a value is optional.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Port:            8080,
		MigrateOnStart:  os.Getenv("MIGRATE_ON_START") != "false",
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  900,     // 15 minutes
		RefreshTokenTTL: 1209600, // 14 days
		RedisAddr:       envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		MinioEndpoint:   envOr("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:  envOr("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:  envOr("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:     os.Getenv("MINIO_USE_SSL") == "true",
		PhotoBucket:     envOr("PHOTO_BUCKET", "bakeshop-photos"),
		AdminEmail:      envOr("ADMIN_EMAIL", "admin@bakeshop.local"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = random.String(32)
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; tokens will not survive restarts")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}
	if ttlStr := os.Getenv("ACCESS_TOKEN_TTL"); ttlStr != "" {
		ttl, err := strconv.Atoi(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL %q: %w", ttlStr, err)
		}
		cfg.AccessTokenTTL = ttl
	}
	if ttlStr := os.Getenv("REFRESH_TOKEN_TTL"); ttlStr != "" {
		ttl, err := strconv.Atoi(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_TOKEN_TTL %q: %w", ttlStr, err)
		}
		cfg.RefreshTokenTTL = ttl
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			cfg.RedisDB = db
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
