package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("MENU_BATCH_RETENTION", "")
		t.Setenv("SCRAPE_RATE_PER_SECOND", "")

		cfg := Load()

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
		assert.Equal(t, 360*time.Minute, cfg.MenuCacheTTL)
		assert.Equal(t, 5, cfg.MenuBatchRetention)
		assert.Equal(t, 60*time.Second, cfg.MenuFetchTimeout)
		assert.Equal(t, 2.0, cfg.ScrapeRatePerSecond)
		assert.Equal(t, "USD", cfg.DefaultCurrency)
		assert.True(t, cfg.IsDevelopment())
		assert.False(t, cfg.StorageConfigured())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("MENU_CACHE_TTL_MINUTES", "30")
		t.Setenv("MENU_BATCH_RETENTION", "2")
		t.Setenv("SCRAPE_RATE_PER_SECOND", "0.5")
		t.Setenv("S3_ENABLED", "true")
		t.Setenv("S3_ACCESS_KEY", "key")
		t.Setenv("S3_SECRET_KEY", "secret")

		cfg := Load()

		assert.Equal(t, "9090", cfg.Port)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, 30*time.Minute, cfg.MenuCacheTTL)
		assert.Equal(t, 2, cfg.MenuBatchRetention)
		assert.Equal(t, 0.5, cfg.ScrapeRatePerSecond)
		assert.True(t, cfg.StorageConfigured())
	})

	t.Run("invalid numbers fall back to defaults", func(t *testing.T) {
		t.Setenv("MENU_BATCH_RETENTION", "lots")
		t.Setenv("SCRAPE_RATE_PER_SECOND", "-1")

		cfg := Load()

		assert.Equal(t, 5, cfg.MenuBatchRetention)
		assert.Equal(t, 2.0, cfg.ScrapeRatePerSecond)
	})
}

func TestLoadCLI(t *testing.T) {
	t.Run("defaults without a config file", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("COMPWATCH_HOME", dir)

		cfg, err := LoadCLI("")
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:8080", cfg.APIURL)
		assert.Equal(t, filepath.Join(dir, "state.json"), cfg.TokenFile)
		assert.Equal(t, 90*time.Second, cfg.Sync.Timeout)
		assert.Equal(t, time.Second, cfg.Sync.Pause)
	})

	t.Run("file then environment", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("COMPWATCH_HOME", dir)
		t.Setenv("COMPWATCH_SYNC_PAUSE", "250ms")

		yaml := "api_url: https://compwatch.example\nsync:\n  timeout: 30s\n  pause: 2s\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

		cfg, err := LoadCLI("")
		require.NoError(t, err)

		assert.Equal(t, "https://compwatch.example", cfg.APIURL)
		assert.Equal(t, 30*time.Second, cfg.Sync.Timeout)
		assert.Equal(t, 250*time.Millisecond, cfg.Sync.Pause)
	})

	t.Run("rejects a bad api url", func(t *testing.T) {
		t.Setenv("COMPWATCH_HOME", t.TempDir())
		t.Setenv("COMPWATCH_API_URL", "localhost:8080")

		_, err := LoadCLI("")
		assert.Error(t, err)
	})

	t.Run("explicit file may be missing", func(t *testing.T) {
		t.Setenv("COMPWATCH_HOME", t.TempDir())

		_, err := LoadCLI(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.NoError(t, err)
	})
}
