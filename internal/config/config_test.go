package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/teenjuna/capacitor/internal/config"
	"github.com/teenjuna/capacitor/internal/testing/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.NewLoader().Load("")
	require.Nil(t, err)
	require.Equal(t, cfg.Capacity, 100)
	require.Equal(t, cfg.Inactivity, time.Second)
	require.Equal(t, cfg.Sink, config.SinkStdout)
	require.Equal(t, cfg.Log.Level, "info")
	require.Equal(t, cfg.Metrics.Addr, ":9090")
}

func TestLoadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "capacitor.yaml")
	content := `
capacity: 50
inactivity: 250ms
sink: kafka
kafka:
  brokers:
    - broker-1:9092
    - broker-2:9092
  topic: events
retry:
  attempts: 3
  interval: 2s
`
	require.Nil(t, os.WriteFile(file, []byte(content), 0o644))

	cfg, err := config.NewLoader().Load(file)
	require.Nil(t, err)
	require.Equal(t, cfg.Capacity, 50)
	require.Equal(t, cfg.Inactivity, time.Millisecond*250)
	require.Equal(t, cfg.Sink, config.SinkKafka)
	require.Equal(t, cfg.Kafka.Brokers, []string{"broker-1:9092", "broker-2:9092"})
	require.Equal(t, cfg.Kafka.Topic, "events")
	require.Equal(t, cfg.Retry.Attempts, 3)
	require.Equal(t, cfg.Retry.Interval, time.Second*2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NotNil(t, err)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("CAPACITOR_CAPACITY", "7")
	t.Setenv("CAPACITOR_SINK", "sqlite")
	t.Setenv("CAPACITOR_SQLITE_FILE", "/tmp/out.db")
	t.Setenv("CAPACITOR_INACTIVITY", "0")

	cfg, err := config.NewLoader().Load("")
	require.Nil(t, err)
	require.Equal(t, cfg.Capacity, 7)
	require.Equal(t, cfg.Sink, config.SinkSQLite)
	require.Equal(t, cfg.SQLite.File, "/tmp/out.db")
	require.Equal(t, cfg.Inactivity, time.Duration(0))
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{Capacity: 1, Sink: config.SinkStdout}
	}

	cases := []struct {
		name   string
		modify func(c *config.Config)
		ok     bool
	}{
		{name: "valid", modify: func(c *config.Config) {}, ok: true},
		{name: "zero capacity", modify: func(c *config.Config) { c.Capacity = 0 }},
		{name: "unknown sink", modify: func(c *config.Config) { c.Sink = "s3" }},
		{name: "sqlite without file", modify: func(c *config.Config) { c.Sink = config.SinkSQLite }},
		{name: "kafka without topic", modify: func(c *config.Config) {
			c.Sink = config.SinkKafka
			c.Kafka.Brokers = []string{"localhost:9092"}
		}},
		{name: "kafka without brokers", modify: func(c *config.Config) {
			c.Sink = config.SinkKafka
			c.Kafka.Topic = "events"
		}},
		{name: "negative retry attempts", modify: func(c *config.Config) { c.Retry.Attempts = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.modify(&cfg)
			err := cfg.Validate()
			if tc.ok {
				require.Nil(t, err)
			} else {
				require.NotNil(t, err)
			}
		})
	}
}
