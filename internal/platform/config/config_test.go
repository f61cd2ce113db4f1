package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 40, cfg.Autonomy.Latitude)
	assert.Equal(t, "Master Architect Rickey Howard", cfg.Autonomy.AuthorizedPrincipal)
	assert.True(t, cfg.Autonomy.FailOpenOnStateFetch)
	assert.Equal(t, "odyssey.audit.events", cfg.Kafka.AuditTopic)
	assert.Equal(t, 2*time.Second, cfg.Kafka.PollInterval)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("AUTONOMY_LATITUDE", "75")
	t.Setenv("AUTONOMY_FAIL_OPEN", "false")
	t.Setenv("KAFKA_BROKERS", " localhost:9092, localhost:9093 ,localhost:9092,")

	cfg := FromEnv()

	assert.Equal(t, 75, cfg.Autonomy.Latitude)
	assert.False(t, cfg.Autonomy.FailOpenOnStateFetch)
	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, cfg.Kafka.Brokers)
}
