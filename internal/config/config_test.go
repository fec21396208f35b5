package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	require.Equal(t, "@every 30s", cfg.DLQSchedule)
	require.Equal(t, []string{"activity_events"}, cfg.ConsumerTopics)
	require.Equal(t, 50, cfg.WebListLimit)
	require.Equal(t, 5, cfg.ConsumerMaxAttempts)
	require.Equal(t, 2*time.Second, cfg.ConsumerRetryBackoff)
}

func TestLoadTrimsLists(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " broker-1:9092 , ,broker-2:9092 ")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 250*time.Millisecond, cfg.OutboxPollInterval)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("OUTBOX_BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("OUTBOX_BATCH_SIZE", "10")
	t.Setenv("DLQ_BASE_DELAY", "soon")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("DLQ_BASE_DELAY", "1m")
	t.Setenv("CONSUMER_MAX_ATTEMPTS", "0")
	_, err = Load()
	require.Error(t, err)
}
