package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_LISTEN_ADDR", "APP_STORE_BACKEND", "APP_BATCH_SIZE", "APP_REMOTE_UPSERT", "APP_HEALTH_INTERVAL", "APP_CORS_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "auto", cfg.StoreBackend)
	assert.Equal(t, "processed-data", cfg.ProcessedDir)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.False(t, cfg.RemoteUpsert)
	assert.Equal(t, time.Minute, cfg.HealthInterval)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_STORE_BACKEND", "Postgres")
	t.Setenv("APP_BATCH_SIZE", "200")
	t.Setenv("APP_REMOTE_UPSERT", "true")
	t.Setenv("APP_REMOTE_TIMEOUT", "5")
	t.Setenv("APP_HEALTH_INTERVAL", "90s")
	t.Setenv("APP_CORS_ORIGINS", "http://a.test, ,http://b.test")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.StoreBackend)
	assert.Equal(t, 200, cfg.BatchSize)
	assert.True(t, cfg.RemoteUpsert)
	assert.Equal(t, 5*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 90*time.Second, cfg.HealthInterval)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("APP_BATCH_SIZE", "-3")
	t.Setenv("APP_REMOTE_UPSERT", "maybe")
	t.Setenv("APP_EXTRACT_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 500, cfg.BatchSize)
	assert.False(t, cfg.RemoteUpsert)
	assert.Equal(t, 30*time.Second, cfg.ExtractTimeout)
}
