package config

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every env var that Load() reads.
var allConfigKeys = []string{
	"PORT",
	"LISTEN_ADDR",
	"CANONICAL_HOST",
	"JWT_SECRET",
	"TOKEN_TTL",
	"OWNER_USERS",
	"DB_PATH",
	"DIST_DIR",
	"LOGIN_RATE_PER_SEC",
	"LOGIN_BURST",
	"LOG_LEVEL",
	"LOG_FORMAT",
}

// isolateConfigEnv saves and unsets all config env vars so tests don't
// inherit values from the host environment. t.Cleanup restores them.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, "dispulse.co", cfg.CanonicalHost)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.True(t, cfg.UsingDefaultSecret())
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Empty(t, cfg.SeedUsers)
	assert.Equal(t, "data/app.db", cfg.DBPath)
	assert.Equal(t, "dist", cfg.DistDir)
	assert.InDelta(t, 0.2, cfg.LoginRatePerSec, 1e-9)
	assert.Equal(t, 5, cfg.LoginBurst)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("CANONICAL_HOST", "example.com")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("OWNER_USERS", `[{"name":"Ann","email":"ann@x.co","password":"pw"}]`)
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("DIST_DIR", "/srv/dist")
	t.Setenv("LOGIN_RATE_PER_SEC", "2")
	t.Setenv("LOGIN_BURST", "10")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "example.com", cfg.CanonicalHost)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.False(t, cfg.UsingDefaultSecret())
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	require.Len(t, cfg.SeedUsers, 1)
	assert.Equal(t, SeedUser{Name: "Ann", Email: "ann@x.co", Password: "pw"}, cfg.SeedUsers[0])
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "/srv/dist", cfg.DistDir)
	assert.InDelta(t, 2.0, cfg.LoginRatePerSec, 1e-9)
	assert.Equal(t, 10, cfg.LoginBurst)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_ListenAddrOverridesPort(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("LISTEN_ADDR", "127.0.0.1:9999")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
}

func TestLoad_EmptyCanonicalHostDisablesRedirect(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CANONICAL_HOST", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "", cfg.CanonicalHost)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "bad port", key: "PORT", value: "http", wantErr: "PORT"},
		{name: "bad ttl", key: "TOKEN_TTL", value: "soon", wantErr: "TOKEN_TTL"},
		{name: "zero ttl", key: "TOKEN_TTL", value: "0s", wantErr: "TOKEN_TTL"},
		{name: "owner users not json", key: "OWNER_USERS", value: "{oops", wantErr: "OWNER_USERS"},
		{name: "owner users not array", key: "OWNER_USERS", value: `{"name":"x"}`, wantErr: "OWNER_USERS"},
		{name: "owner users wrong field type", key: "OWNER_USERS", value: `[{"email":7}]`, wantErr: "OWNER_USERS"},
		{name: "bad rate", key: "LOGIN_RATE_PER_SEC", value: "-1", wantErr: "LOGIN_RATE_PER_SEC"},
		{name: "bad burst", key: "LOGIN_BURST", value: "many", wantErr: "LOGIN_BURST"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tc.key, tc.value)

			cfg, err := Load()

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_IncompleteSeedUsersKept(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("OWNER_USERS", `[{"name":"NoPassword","email":"np@x.co"},{"email":"b@x.co","password":"pw","name":"B","role":"editor"}]`)

	cfg, err := Load()

	require.NoError(t, err)
	require.Len(t, cfg.SeedUsers, 2)
	assert.Empty(t, cfg.SeedUsers[0].Password)
	assert.Equal(t, "editor", cfg.SeedUsers[1].Role)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "v", line["k"])
}
