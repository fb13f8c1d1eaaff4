package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "support-desk", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, 3, cfg.Tickets.MaxPerUser)
	assert.False(t, cfg.Features.TranscriptDM)
	assert.True(t, cfg.Audit.TicketCreation)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("MAX_TICKETS_PER_USER", "5")
	t.Setenv("RATING_ENABLED", "true")
	t.Setenv("LOG_TICKET_CLAIM", "false")
	t.Setenv("STORAGE_BACKEND", BackendRedis)
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, 5, cfg.Tickets.MaxPerUser)
	assert.True(t, cfg.Features.RatingEnabled)
	assert.False(t, cfg.Audit.TicketClaim)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, 2, cfg.Storage.RedisDB)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "cassandra")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresPostgresDSN(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", BackendPostgres)
	t.Setenv("POSTGRES_DSN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("MAX_TICKETS_PER_USER", "many")
	t.Setenv("RATING_ENABLED", "definitely")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Tickets.MaxPerUser)
	assert.False(t, cfg.Features.RatingEnabled)
}
