package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "localhost", cfg.DBConfig.Host)
	assert.Equal(t, 5432, cfg.DBConfig.Port)
	assert.Equal(t, "transfer_events", cfg.KafkaEventsTopic)
	assert.Equal(t, 1*time.Second, cfg.OutboxPollInterval)
	assert.True(t, cfg.StartingBalance.Equal(decimal.RequireFromString("1000.00")))
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("TRANSFERS_HTTP_PORT", "9090")
	t.Setenv("TRANSFERS_DB_HOST", "db.internal")
	t.Setenv("KAFKA_BROKER_URL", "broker1:9092,broker2:9092")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("TRANSFERS_STARTING_BALANCE", "500.50")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "db.internal", cfg.DBConfig.Host)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.GetKafkaBrokers())
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxPollInterval)
	assert.True(t, cfg.StartingBalance.Equal(decimal.RequireFromString("500.50")))
}

func TestLoadConfigRejectsBadStartingBalance(t *testing.T) {
	t.Setenv("TRANSFERS_STARTING_BALANCE", "not-a-number")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestGetDBMigrationConnectionString(t *testing.T) {
	t.Setenv("TRANSFERS_DB_USER", "svc")
	t.Setenv("TRANSFERS_DB_PASSWORD", "pw")
	t.Setenv("TRANSFERS_DB_NAME", "transfers")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://svc:pw@localhost:5432/transfers?sslmode=disable", cfg.GetDBMigrationConnectionString())
}
