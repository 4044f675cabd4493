package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the API server settings
type Config struct {
	Port              string
	DatabaseURL       string
	JWTSecret         string
	AccessTokenTTL    time.Duration
	BottlePrice       decimal.Decimal
	PlantID           int
	PlantName         string
	CORSOrigins       []string
	FirebaseBase64    string
	FirebaseFile      string
	OTLPEndpoint      string
	SeedDemoData      bool
	ReadHeaderTimeout time.Duration
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")
	ErrMissingJWTSecret   = errors.New("APP_JWT_SECRET environment variable is required")
)

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment only.
func FromEnv() (Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	firebaseFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
	if firebaseFile == "" {
		firebaseFile = "./firebase-service-account.json"
	}

	plantName := os.Getenv("PLANT_NAME")
	if plantName == "" {
		plantName = "Planta Centro"
	}

	cfg := Config{
		Port:              port,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         os.Getenv("APP_JWT_SECRET"),
		AccessTokenTTL:    time.Duration(readInt("ACCESS_TOKEN_EXPIRE_MINUTES", 1440)) * time.Minute,
		BottlePrice:       readDecimal("BOTTLE_PRICE", decimal.NewFromInt(60)),
		PlantID:           readInt("PLANT_ID", 1),
		PlantName:         plantName,
		CORSOrigins:       readList("CORS_ORIGINS", []string{"*"}),
		FirebaseBase64:    os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		FirebaseFile:      firebaseFile,
		OTLPEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		SeedDemoData:      readBool("SEED_DEMO_DATA", false),
		ReadHeaderTimeout: time.Duration(readInt("READ_HEADER_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	if cfg.DatabaseURL == "" {
		return cfg, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return cfg, ErrMissingJWTSecret
	}
	return cfg, nil
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || !value.IsPositive() {
		return fallback
	}
	return value
}

func readList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
