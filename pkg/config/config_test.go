package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
environment: test
server:
  port: 9000
  read_timeout: 5s
  write_timeout: 5s
  shutdown_timeout: 5s
feed:
  sources:
    - id: ust
      url: ""
  fetch_timeout: 15s
  refresh_interval: 30m
cache:
  max_age: 1h
  interpolation: flat_forward
sink:
  type: kafka
  kafka:
    brokers: ["localhost:9092"]
    topic: curves
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 9000, cfg.Server.Port)
	require.Len(t, cfg.Feed.Sources, 1)
	assert.Equal(t, "ust", cfg.Feed.Sources[0].ID)
	assert.Equal(t, 30*time.Minute, cfg.Feed.RefreshInterval)
	assert.Equal(t, "flat_forward", cfg.Cache.Interpolation)
	assert.Equal(t, "kafka", cfg.Sink.Type)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SINK", "clickhouse")
	t.Setenv("KAFKA_BROKERS", "b1:9092,b2:9092")

	cfg, err := LoadWithEnv(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "clickhouse", cfg.Sink.Type)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Sink.Kafka.Brokers)
}

func TestValidateRejections(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: test\n"))
	assert.ErrorContains(t, err, "feed.sources")

	_, err = Load(writeConfig(t, "feed:\n  sources:\n    - id: ust\n"))
	assert.ErrorContains(t, err, "environment")

	_, err = Load(writeConfig(t, "environment: test\nfeed:\n  sources:\n    - id: ust\nsink:\n  type: s3\n"))
	assert.ErrorContains(t, err, "sink.type")

	_, err = Load(writeConfig(t, "environment: test\nfeed:\n  sources:\n    - id: ust\ncache:\n  interpolation: cubic\n"))
	assert.ErrorContains(t, err, "interpolation")
}
