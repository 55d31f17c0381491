// Package config loads application configuration from environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. It is only suitable for
// local development.
const DefaultJWTSecret = "dev-secret-change-me"

// SeedUser is one candidate operator account read from OWNER_USERS.
type SeedUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Config holds the application configuration. It is built once at startup
// and passed to each component; nothing reads the environment after Load.
type Config struct {
	ListenAddr    string
	CanonicalHost string
	JWTSecret     string
	TokenTTL      time.Duration
	SeedUsers     []SeedUser
	DBPath        string
	DistDir       string

	LoginRatePerSec float64
	LoginBurst      int

	LogLevel  string
	LogFormat string
}

// UsingDefaultSecret reports whether the insecure development secret is in use.
func (c *Config) UsingDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory. Variables already set in the
// environment take precedence over .env.
// Optional variables with defaults: PORT (3000), LISTEN_ADDR (":"+PORT),
// CANONICAL_HOST (dispulse.co), JWT_SECRET (development secret),
// TOKEN_TTL (12h), DB_PATH (data/app.db), DIST_DIR (dist),
// LOGIN_RATE_PER_SEC (0.2), LOGIN_BURST (5), LOG_LEVEL (info), LOG_FORMAT (text).
// OWNER_USERS, when set, must be a JSON array of {name, email, password, role}.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	port := "3000"
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("PORT has invalid value %q: %w", v, err)
		}
		port = v
	}

	listenAddr := ":" + port
	if v, ok := os.LookupEnv("LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	canonicalHost := "dispulse.co"
	if v, ok := os.LookupEnv("CANONICAL_HOST"); ok {
		canonicalHost = v
	}

	secret := DefaultJWTSecret
	if v, ok := os.LookupEnv("JWT_SECRET"); ok && v != "" {
		secret = v
	}

	tokenTTL := 12 * time.Hour
	if v, ok := os.LookupEnv("TOKEN_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("TOKEN_TTL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("TOKEN_TTL must be positive, got %q", v)
		}
		tokenTTL = parsed
	}

	seedUsers, err := parseSeedUsers(os.Getenv("OWNER_USERS"))
	if err != nil {
		return nil, err
	}

	dbPath := "data/app.db"
	if v, ok := os.LookupEnv("DB_PATH"); ok && v != "" {
		dbPath = v
	}

	distDir := "dist"
	if v, ok := os.LookupEnv("DIST_DIR"); ok && v != "" {
		distDir = v
	}

	ratePerSec := 0.2
	if v, ok := os.LookupEnv("LOGIN_RATE_PER_SEC"); ok {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("LOGIN_RATE_PER_SEC has invalid value %q", v)
		}
		ratePerSec = parsed
	}

	burst := 5
	if v, ok := os.LookupEnv("LOGIN_BURST"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("LOGIN_BURST has invalid value %q", v)
		}
		burst = parsed
	}

	logLevel := "info"
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		logLevel = v
	}

	logFormat := "text"
	if v, ok := os.LookupEnv("LOG_FORMAT"); ok && v != "" {
		logFormat = v
	}

	return &Config{
		ListenAddr:      listenAddr,
		CanonicalHost:   canonicalHost,
		JWTSecret:       secret,
		TokenTTL:        tokenTTL,
		SeedUsers:       seedUsers,
		DBPath:          dbPath,
		DistDir:         distDir,
		LoginRatePerSec: ratePerSec,
		LoginBurst:      burst,
		LogLevel:        logLevel,
		LogFormat:       logFormat,
	}, nil
}

// parseSeedUsers decodes the OWNER_USERS JSON array. An empty value yields no
// users. Incomplete entries are kept here and skipped by the seeder.
func parseSeedUsers(raw string) ([]SeedUser, error) {
	if raw == "" {
		return []SeedUser{}, nil
	}

	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("OWNER_USERS is not valid JSON: %w", err)
	}
	if _, ok := generic.([]any); !ok {
		return nil, errors.New("OWNER_USERS must be a JSON array")
	}

	var users []SeedUser
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("OWNER_USERS has invalid entries: %w", err)
	}

	return users, nil
}
