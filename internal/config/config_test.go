package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTAccessTTL)
	assert.Equal(t, 48*time.Hour, cfg.Booking.ExpiringSoonWindow)
	assert.Equal(t, 5, cfg.Booking.DefaultMaxRequestsPerUser)
	assert.NotEmpty(t, cfg.CORS.AllowedOrigins)
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  http_addr: ":9090"
database:
  url: "file.db"
redis:
  addr: "localhost:6379"
  lock_ttl: 10s
booking:
  default_max_requests_per_user: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/rental")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.App.HTTPAddr)
	assert.Equal(t, "postgres://u:p@localhost/rental", cfg.Database.URL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 10*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, 3, cfg.Booking.DefaultMaxRequestsPerUser)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("JWT_ACCESS_TTL", "soon")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_TTL")
}

func TestLoad_GCSRequiresBucket(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "gcs")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GCS_BUCKET")
}

func TestLoad_ProdRejectsDefaultSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "real-secret")
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "whsec_real")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, IsProdLike(cfg.App.Env))
}

func TestLoad_CORSOriginsFromEnv(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
}
