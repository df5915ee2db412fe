// Package config loads the settings of the capacitor command from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration of the capacitor command.
type Config struct {
	Capacity   int           `mapstructure:"capacity"`
	Inactivity time.Duration `mapstructure:"inactivity"`
	Sink       string        `mapstructure:"sink"`
	SQLite     SQLiteConfig  `mapstructure:"sqlite"`
	Kafka      KafkaConfig   `mapstructure:"kafka"`
	Retry      RetryConfig   `mapstructure:"retry"`
	Log        LogConfig     `mapstructure:"log"`
	Metrics    MetricsConfig `mapstructure:"metrics"`
}

type SQLiteConfig struct {
	File string `mapstructure:"file"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// RetryConfig configures retries of failed flushes. Zero attempts disables retries.
type RetryConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Interval time.Duration `mapstructure:"interval"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig configures the Prometheus endpoint. An empty address disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

const (
	SinkStdout = "stdout"
	SinkSQLite = "sqlite"
	SinkKafka  = "kafka"
)

// Loader reads configuration with viper. Environment variables use the CAPACITOR_ prefix and
// underscores instead of dots, e.g. CAPACITOR_KAFKA_TOPIC.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CAPACITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Load reads the file at path, if it is not empty, applies defaults and environment overrides
// and validates the result. A path that does not exist is an error.
func (l *Loader) Load(path string) (*Config, error) {
	l.setDefaults()

	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (l *Loader) setDefaults() {
	l.v.SetDefault("capacity", 100)
	l.v.SetDefault("inactivity", time.Second)
	l.v.SetDefault("sink", SinkStdout)
	l.v.SetDefault("sqlite.file", "batches.db")
	l.v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	l.v.SetDefault("kafka.topic", "")
	l.v.SetDefault("retry.attempts", 0)
	l.v.SetDefault("retry.interval", time.Second)
	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("metrics.addr", ":9090")
}

func (c *Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("invalid capacity: %d", c.Capacity)
	}

	switch c.Sink {
	case SinkStdout:
	case SinkSQLite:
		if c.SQLite.File == "" {
			return errors.New("sqlite.file is required for sqlite sink")
		}
	case SinkKafka:
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka.brokers is required for kafka sink")
		}
		if c.Kafka.Topic == "" {
			return errors.New("kafka.topic is required for kafka sink")
		}
	default:
		return fmt.Errorf("unsupported sink: %s", c.Sink)
	}

	if c.Retry.Attempts < 0 {
		return fmt.Errorf("invalid retry attempts: %d", c.Retry.Attempts)
	}
	if c.Retry.Interval < 0 {
		return fmt.Errorf("invalid retry interval: %s", c.Retry.Interval)
	}

	return nil
}
