package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `dataset:
  source: "csv"
  path: "testdata/day.csv"
server:
  addr: ":9000"
  bins: 20
metrics:
  prometheus_addr: ":2112"
  sinks:
    - type: "nop"
    - type: "influx"
      conf:
        url: "http://influx:8086"
        bucket: "bikes"
cache:
  enabled: true
  addr: "redis:6379"
  ttl_seconds: 60
mqtt:
  broker: "tcp://localhost:1883"
  topic: "bikes/dashboard"
  qos: 1
  retain: true
logging:
  level: "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testdata/day.csv", cfg.Dataset.Path)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 20, cfg.Server.Bins)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, ":2112", cfg.Metrics.PrometheusAddr)
	require.Len(t, cfg.Metrics.Sinks, 2)
	assert.Equal(t, "influx", cfg.Metrics.Sinks[1].Type)
	assert.Equal(t, "bikes", cfg.Metrics.Sinks[1].Conf["bucket"])
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 60, cfg.Cache.TTLSeconds)
	assert.Equal(t, "bikedash", cfg.Cache.Prefix)
	assert.Equal(t, "bikes/dashboard", cfg.MQTT.Topic)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.True(t, cfg.MQTT.Retain)
	assert.Equal(t, "bikedash/status", cfg.MQTT.StatusTopic)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := writeFile(t, "config.json", `{"dataset":{"path":"a.csv"},"server":{"addr":":8081"}}`)
	t.Setenv("K_SERVER__ADDR", ":7000")
	t.Setenv("K_DATASET__PATH", "b.csv")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "b.csv", cfg.Dataset.Path)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, SourceCSV, cfg.Dataset.Source)
	assert.Equal(t, "data/day.csv", cfg.Dataset.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Server.Bins)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Cache.Enabled)
	assert.Empty(t, cfg.MQTT.Broker)
	assert.Empty(t, cfg.MQTT.Topic)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", ""))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "config.yaml", "dataset:\n  source: postgres\n"))
	assert.ErrorContains(t, err, "dsn")

	_, err = Load(writeFile(t, "config.yaml", "dataset:\n  source: excel\n"))
	assert.ErrorContains(t, err, "unknown source")

	_, err = Load(writeFile(t, "config.yaml", "logging:\n  level: loud\n"))
	assert.ErrorContains(t, err, "logging")

	_, err = Load(writeFile(t, "config.yaml", "server:\n  mode: fast\n"))
	assert.ErrorContains(t, err, "server")
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "BIKEDASH_TEST_DOTENV=from-file\n")
	t.Setenv("BIKEDASH_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("BIKEDASH_TEST_DOTENV"))
	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("BIKEDASH_TEST_DOTENV"))
}
