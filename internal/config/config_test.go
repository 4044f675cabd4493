package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/waterlog")
	t.Setenv("APP_JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("BOTTLE_PRICE", "")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.BottlePrice.String() != "60" {
		t.Fatalf("expected bottle price 60, got %s", cfg.BottlePrice)
	}
	if cfg.AccessTokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token ttl, got %s", cfg.AccessTokenTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/waterlog")
	t.Setenv("APP_JWT_SECRET", "secret")
	t.Setenv("BOTTLE_PRICE", "75.50")
	t.Setenv("SEED_DEMO_DATA", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BottlePrice.String() != "75.5" {
		t.Fatalf("expected 75.5, got %s", cfg.BottlePrice)
	}
	if !cfg.SeedDemoData {
		t.Fatal("expected demo seeding enabled")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestFromEnvInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/waterlog")
	t.Setenv("APP_JWT_SECRET", "secret")
	t.Setenv("BOTTLE_PRICE", "-3")
	t.Setenv("PLANT_ID", "abc")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BottlePrice.String() != "60" {
		t.Fatalf("expected fallback price, got %s", cfg.BottlePrice)
	}
	if cfg.PlantID != 1 {
		t.Fatalf("expected fallback plant id, got %d", cfg.PlantID)
	}
}

func TestFromEnvRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_JWT_SECRET", "secret")
	if _, err := FromEnv(); err != ErrMissingDatabaseURL {
		t.Fatalf("expected ErrMissingDatabaseURL, got %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/waterlog")
	t.Setenv("APP_JWT_SECRET", "")
	if _, err := FromEnv(); err != ErrMissingJWTSecret {
		t.Fatalf("expected ErrMissingJWTSecret, got %v", err)
	}
}
