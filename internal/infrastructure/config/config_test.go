package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no config.toml or
// .env from the repository leaks in.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		inTempDir(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "storefront", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTokenExpiration)
		assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenExpiration)
		assert.Equal(t, "http://localhost:8080", cfg.HTTP.PublicBaseURL)
		assert.Equal(t, "storefront.sales", cfg.Events.Topic)
		assert.Empty(t, cfg.Redis.Host)
	})

	t.Run("loads values from environment variables with STOREFRONT prefix", func(t *testing.T) {
		inTempDir(t)
		t.Setenv("STOREFRONT_APP_PORT", "9000")
		t.Setenv("STOREFRONT_DATABASE_HOST", "db.internal")
		t.Setenv("STOREFRONT_DATABASE_PORT", "5433")
		t.Setenv("STOREFRONT_JWT_ACCESS_TOKEN_EXPIRATION", "10m")
		t.Setenv("STOREFRONT_REDIS_HOST", "cache")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 10*time.Minute, cfg.JWT.AccessTokenExpiration)
		assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	})

	t.Run("reads .env file", func(t *testing.T) {
		dir := inTempDir(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STOREFRONT_APP_NAME=from-dotenv\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("STOREFRONT_APP_NAME") })

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", cfg.App.Name)
	})

	t.Run("reads config.toml", func(t *testing.T) {
		dir := inTempDir(t)
		toml := "[app]\nname = \"from-toml\"\n\n[events]\nbrokers = [\"kafka:9092\"]\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o600))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "from-toml", cfg.App.Name)
		assert.Equal(t, []string{"kafka:9092"}, cfg.Events.Brokers)
	})

	t.Run("production rejects the default secret", func(t *testing.T) {
		inTempDir(t)
		t.Setenv("STOREFRONT_APP_ENV", "production")
		t.Setenv("STOREFRONT_DATABASE_PASSWORD", "pw")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production accepts a long secret", func(t *testing.T) {
		inTempDir(t)
		t.Setenv("STOREFRONT_APP_ENV", "production")
		t.Setenv("STOREFRONT_DATABASE_PASSWORD", "pw")
		t.Setenv("STOREFRONT_JWT_SECRET", "0123456789abcdef0123456789abcdef")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.App.IsProduction())
	})
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("idle connections above open connections", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = 50
		assert.Error(t, cfg.validate())
	})

	t.Run("access token must expire before refresh token", func(t *testing.T) {
		cfg := base()
		cfg.JWT.AccessTokenExpiration = cfg.JWT.RefreshTokenExpiration
		assert.Error(t, cfg.validate())
	})

	t.Run("s3 needs a bucket", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Provider = "s3"
		assert.Error(t, cfg.validate())
	})

	t.Run("sampling ratio range", func(t *testing.T) {
		cfg := base()
		cfg.Telemetry.SamplingRatio = 1.5
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseConfig_URL(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss word", DBName: "shop", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/shop?sslmode=disable", d.URL())
	assert.Equal(t, d.URL(), d.DSN())
}
