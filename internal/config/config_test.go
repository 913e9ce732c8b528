package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"delivery-dispatch/internal/config"
)

var envKeys = []string{
	"PORT", "LOG_LEVEL", "STORAGE_DRIVER",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"DISPATCH_INTERVAL", "DISPATCH_AUTOSTART", "DISPATCH_OPERATION_TIMEOUT", "DISPATCH_PASS_TIMEOUT",
	"DISPATCH_AUTO_ARRIVAL", "DISPATCH_ARRIVAL_RADIUS_M", "LIVE_SUBSCRIBER_BUFFER",
	"KAFKA_BROKERS", "KAFKA_GROUP_ID", "KAFKA_TOPIC", "RABBITMQ_URL", "RABBITMQ_EXCHANGE",
	"GRPC_PORT", "DEBUG_PORT", "PPROF_USER", "PPROF_PASS",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_LIMIT", "RATE_LIMIT_WINDOW", "RATE_LIMIT_TTL", "RATE_LIMIT_MAX_BUCKETS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadArgs_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadArgs(nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, config.StorageMemory, cfg.Storage.Driver)

	require.Equal(t, "127.0.0.1", cfg.DB.Host)
	require.Equal(t, "5432", cfg.DB.Port)
	require.Equal(t, "dispatch_db", cfg.DB.Name)

	require.Equal(t, 5*time.Second, cfg.Dispatch.Interval)
	require.False(t, cfg.Dispatch.AutoStart)
	require.Equal(t, 3*time.Second, cfg.Dispatch.OperationTimeout)
	require.Equal(t, 30*time.Second, cfg.Dispatch.PassTimeout)
	require.Equal(t, 50.0, cfg.Dispatch.ArrivalRadiusM)
	require.Equal(t, 16, cfg.Live.SubscriberBuffer)

	require.Empty(t, cfg.Kafka.Brokers)
	require.Empty(t, cfg.RabbitMQ.URL)
	require.Equal(t, 50051, cfg.GRPC.Port)
	require.Equal(t, 6060, cfg.Debug.Port)
	require.False(t, cfg.RateLimit.Enabled)
}

func TestLoadArgs_EnvOverrides(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "15432")
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p@ss")
	t.Setenv("POSTGRES_DB", "service")
	t.Setenv("DISPATCH_INTERVAL", "2s")
	t.Setenv("DISPATCH_AUTOSTART", "true")
	t.Setenv("DISPATCH_AUTO_ARRIVAL", "1")
	t.Setenv("DISPATCH_ARRIVAL_RADIUS_M", "75.5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("RABBITMQ_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("GRPC_PORT", "0")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_LIMIT", "5")

	cfg, err := config.LoadArgs(nil)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, config.StoragePostgres, cfg.Storage.Driver)
	require.Equal(t, "postgres://u:p%40ss@db:15432/service?sslmode=disable", cfg.DB.DSN())
	require.Equal(t, 2*time.Second, cfg.Dispatch.Interval)
	require.True(t, cfg.Dispatch.AutoStart)
	require.True(t, cfg.Dispatch.AutoArrival)
	require.Equal(t, 75.5, cfg.Dispatch.ArrivalRadiusM)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, "amqp://guest:guest@mq:5672/", cfg.RabbitMQ.URL)
	require.Equal(t, 0, cfg.GRPC.Port)
	require.True(t, cfg.RateLimit.Enabled)
	require.Equal(t, 5, cfg.RateLimit.Limit)
}

func TestLoadArgs_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")

	cfg, err := config.LoadArgs([]string{"-p", "7070", "--storage=postgres", "--dispatch-interval=250ms", "--autostart"})
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Port)
	require.Equal(t, config.StoragePostgres, cfg.Storage.Driver)
	require.Equal(t, 250*time.Millisecond, cfg.Dispatch.Interval)
	require.True(t, cfg.Dispatch.AutoStart)
}

func TestLoadArgs_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"port range":      {"PORT": "70000"},
		"port not number": {"PORT": "abc"},
		"postgres port":   {"POSTGRES_PORT": "not-a-number"},
		"interval":        {"DISPATCH_INTERVAL": "bad-interval"},
		"zero interval":   {"DISPATCH_INTERVAL": "0s"},
		"storage":         {"STORAGE_DRIVER": "sqlite"},
		"autostart":       {"DISPATCH_AUTOSTART": "maybe"},
		"radius":          {"DISPATCH_ARRIVAL_RADIUS_M": "-1"},
		"buffer":          {"LIVE_SUBSCRIBER_BUFFER": "0"},
		"debug port":      {"DEBUG_PORT": "-5"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			cfg, err := config.LoadArgs(nil)
			require.Error(t, err)
			require.Nil(t, cfg)
		})
	}
}

func TestLoadArgs_FlagsParseError(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadArgs([]string{"--port=not-a-number"})
	require.Error(t, err)
	require.Nil(t, cfg)
	require.Contains(t, err.Error(), "parse flags")
}
