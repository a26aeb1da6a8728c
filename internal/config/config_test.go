package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("AI_API_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 60, cfg.AITimeout)
	assert.Equal(t, "batch-jobs", cfg.KafkaTopic)
}

func TestLoadLists(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CORS_ORIGINS", "http://admin.local,https://shop.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokerList())
	assert.Equal(t, []string{"http://admin.local", "https://shop.example"}, cfg.CORSOrigins)
}
