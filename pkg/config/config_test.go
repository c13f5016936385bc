package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "course_catalog", cfg.Database.Name)
	assert.False(t, cfg.Catalog.CacheEnabled)
	assert.Equal(t, 10*time.Minute, cfg.Catalog.CacheTTL)
	assert.Equal(t, 8, cfg.Catalog.CourseFetchLimit)
	assert.Equal(t, "catalog_changes", cfg.Realtime.Channel)
	assert.Equal(t, 10*time.Second, cfg.Realtime.MinReconnect)
	assert.Equal(t, time.Minute, cfg.Realtime.MaxReconnect)
	assert.Equal(t, 1, cfg.Realtime.DispatchWorkers)
	assert.Equal(t, 64, cfg.Realtime.DispatchBuffer)
	assert.Equal(t, 30*time.Second, cfg.Websocket.PingInterval)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENV", EnvProduction)
	t.Setenv("ALLOWED_ORIGINS", " https://catalog.example.edu , ,https://admin.example.edu")
	t.Setenv("ENABLE_COURSE_CACHE", "true")
	t.Setenv("COURSE_CACHE_TTL", "90s")
	t.Setenv("REALTIME_CHANNEL", "catalog_changes_staging")
	t.Setenv("WS_WRITE_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, []string{"https://catalog.example.edu", "https://admin.example.edu"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Catalog.CacheEnabled)
	assert.Equal(t, 90*time.Second, cfg.Catalog.CacheTTL)
	assert.Equal(t, "catalog_changes_staging", cfg.Realtime.Channel)
	assert.Equal(t, 10*time.Second, cfg.Websocket.WriteTimeout)
}
