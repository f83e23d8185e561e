package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("AVAILABILITY_STORAGE", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, StorageMemory, cfg.Availability.Storage)
	assert.Equal(t, 90*24*time.Hour, cfg.Availability.RecurrenceHorizon)
	assert.Equal(t, 50, cfg.Redis.FeedSize)
	assert.Equal(t, time.Hour, cfg.S3.PresignTTL)
}

func TestNewConfigOverrides(t *testing.T) {
	t.Setenv("AVAILABILITY_STORAGE", StoragePostgres)
	t.Setenv("AVAILABILITY_RECURRENCE_HORIZON_DAYS", "30")
	t.Setenv("AVAILABILITY_SESSION_CACHE_SIZE", "not-a-number")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "5m")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Availability.Storage)
	assert.Equal(t, 30*24*time.Hour, cfg.Availability.RecurrenceHorizon)
	assert.Equal(t, 1024, cfg.Availability.SessionCacheSize)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTokenTTL)
}

func TestNewConfigRejectsUnknownStorage(t *testing.T) {
	t.Setenv("AVAILABILITY_STORAGE", "sqlite")

	_, err := NewConfig()
	assert.ErrorContains(t, err, "AVAILABILITY_STORAGE")
}

func TestNewConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "soon")

	_, err := NewConfig()
	assert.ErrorContains(t, err, "HTTP_READ_TIMEOUT")
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("S3_USE_SSL", "false")
	assert.False(t, getEnvAsBool("S3_USE_SSL", true))

	t.Setenv("S3_USE_SSL", "maybe")
	assert.True(t, getEnvAsBool("S3_USE_SSL", true))
}
