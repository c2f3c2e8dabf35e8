package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvConfigPath, "")
	for _, env := range envKeys {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.UserCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, "authenticated", cfg.JWT.Audience)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_url: postgres://file/db
port: "9000"
cors_origins:
  - https://a.example
jwt:
  secret: file-secret
  issuer: https://issuer.example
redis:
  addr: localhost:6379
  db: 2
`), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("USER_CACHE_TTL", "30s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/db", cfg.DatabaseURL)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "https://issuer.example", cfg.JWT.Issuer)
	assert.Equal(t, []string{"https://a.example"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.UserCacheTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_CORSFromEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{
			name: "complete",
			cfg:  Config{DatabaseURL: "postgres://x", IdempotencyTTL: time.Hour, JWT: JWTConfig{Secret: "s"}},
		},
		{
			name:    "missing database and secret",
			cfg:     Config{IdempotencyTTL: time.Hour},
			wantErr: []string{"DATABASE_URL", "JWT_SECRET"},
		},
		{
			name:    "zero idempotency ttl",
			cfg:     Config{DatabaseURL: "postgres://x", JWT: JWTConfig{Secret: "s"}},
			wantErr: []string{"IDEMPOTENCY_TTL"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, s := range tt.wantErr {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}
