package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config stores service settings.
type Config struct {
	Port      int
	LogLevel  string
	DB        DB
	Storage   Storage
	Dispatch  Dispatch
	Live      Live
	Kafka     Kafka
	RabbitMQ  RabbitMQ
	GRPC      GRPC
	Debug     Debug
	RateLimit RateLimit
}

// DB stores PostgreSQL connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns a postgres:// connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Storage selects the persistence backend.
type Storage struct {
	Driver string
}

// Dispatch configures matching and the delivery lifecycle.
type Dispatch struct {
	Interval         time.Duration
	AutoStart        bool
	OperationTimeout time.Duration
	PassTimeout      time.Duration
	AutoArrival      bool
	ArrivalRadiusM   float64
}

// Live configures the real-time hub.
type Live struct {
	SubscriberBuffer int
}

// Kafka configures fulfillment intake. Empty brokers disable it.
type Kafka struct {
	Brokers []string
	GroupID string
	Topic   string
}

// RabbitMQ configures status notifications. An empty URL disables them.
type RabbitMQ struct {
	URL      string
	Exchange string
}

// GRPC configures the health server. Port 0 disables it.
type GRPC struct {
	Port int
}

// Debug configures the metrics and pprof server. Port 0 disables it.
type Debug struct {
	Port int
	User string
	Pass string
}

// RateLimit configures the per-client request limiter.
type RateLimit struct {
	Enabled    bool
	Limit      int
	Window     time.Duration
	TTL        time.Duration
	MaxBuckets int
}

// Load reads configuration from .env, the environment and os.Args.
func Load() (*Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs reads .env (if present), then the environment, then args.
func LoadArgs(args []string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	fset := pflag.NewFlagSet("delivery-dispatch", pflag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.IntVarP(&cfg.Port, "port", "p", cfg.Port, "HTTP port to listen on")
	fset.StringVar(&cfg.Storage.Driver, "storage", cfg.Storage.Driver, "storage driver: memory or postgres")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fset.DurationVar(&cfg.Dispatch.Interval, "dispatch-interval", cfg.Dispatch.Interval, "automatic matching interval")
	fset.BoolVar(&cfg.Dispatch.AutoStart, "autostart", cfg.Dispatch.AutoStart, "start automatic matching at boot")
	fset.IntVar(&cfg.GRPC.Port, "grpc-port", cfg.GRPC.Port, "gRPC health port, 0 disables")
	fset.IntVar(&cfg.Debug.Port, "debug-port", cfg.Debug.Port, "metrics/pprof port, 0 disables")
	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		Port:      DefaultPort(),
		LogLevel:  envString("LOG_LEVEL", defaultLogLevel),
		DB:        DefaultDB(),
		Storage:   Storage{Driver: envString("STORAGE_DRIVER", defaultStorageDriver)},
		Dispatch:  DefaultDispatch(),
		Live:      Live{SubscriberBuffer: defaultSubscriberBuffer},
		Kafka:     Kafka{GroupID: defaultKafkaGroupID, Topic: defaultKafkaTopic},
		RabbitMQ:  RabbitMQ{Exchange: defaultRabbitExchange},
		GRPC:      GRPC{Port: defaultGRPCPort},
		Debug:     Debug{Port: defaultDebugPort},
		RateLimit: DefaultRateLimit(),
	}

	cfg.DB.Host = envString("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = envString("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = envString("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Pass = envString("POSTGRES_PASSWORD", cfg.DB.Pass)
	cfg.DB.Name = envString("POSTGRES_DB", cfg.DB.Name)

	cfg.Kafka.Brokers = envList("KAFKA_BROKERS")
	cfg.Kafka.GroupID = envString("KAFKA_GROUP_ID", cfg.Kafka.GroupID)
	cfg.Kafka.Topic = envString("KAFKA_TOPIC", cfg.Kafka.Topic)

	cfg.RabbitMQ.URL = envString("RABBITMQ_URL", "")
	cfg.RabbitMQ.Exchange = envString("RABBITMQ_EXCHANGE", cfg.RabbitMQ.Exchange)

	cfg.Debug.User = envString("PPROF_USER", "")
	cfg.Debug.Pass = envString("PPROF_PASS", "")

	p := parser{}
	cfg.Port = p.intVar("PORT", cfg.Port)
	cfg.Dispatch.Interval = p.durationVar("DISPATCH_INTERVAL", cfg.Dispatch.Interval)
	cfg.Dispatch.AutoStart = p.boolVar("DISPATCH_AUTOSTART", cfg.Dispatch.AutoStart)
	cfg.Dispatch.OperationTimeout = p.durationVar("DISPATCH_OPERATION_TIMEOUT", cfg.Dispatch.OperationTimeout)
	cfg.Dispatch.PassTimeout = p.durationVar("DISPATCH_PASS_TIMEOUT", cfg.Dispatch.PassTimeout)
	cfg.Dispatch.AutoArrival = p.boolVar("DISPATCH_AUTO_ARRIVAL", cfg.Dispatch.AutoArrival)
	cfg.Dispatch.ArrivalRadiusM = p.floatVar("DISPATCH_ARRIVAL_RADIUS_M", cfg.Dispatch.ArrivalRadiusM)
	cfg.Live.SubscriberBuffer = p.intVar("LIVE_SUBSCRIBER_BUFFER", cfg.Live.SubscriberBuffer)
	cfg.GRPC.Port = p.intVar("GRPC_PORT", cfg.GRPC.Port)
	cfg.Debug.Port = p.intVar("DEBUG_PORT", cfg.Debug.Port)
	cfg.RateLimit.Enabled = p.boolVar("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.Limit = p.intVar("RATE_LIMIT_LIMIT", cfg.RateLimit.Limit)
	cfg.RateLimit.Window = p.durationVar("RATE_LIMIT_WINDOW", cfg.RateLimit.Window)
	cfg.RateLimit.TTL = p.durationVar("RATE_LIMIT_TTL", cfg.RateLimit.TTL)
	cfg.RateLimit.MaxBuckets = p.intVar("RATE_LIMIT_MAX_BUCKETS", cfg.RateLimit.MaxBuckets)

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	if _, err := strconv.Atoi(cfg.DB.Port); err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_PORT %q: %w", cfg.DB.Port, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if err := validPort("port", c.Port, false); err != nil {
		return err
	}
	if err := validPort("grpc port", c.GRPC.Port, true); err != nil {
		return err
	}
	if err := validPort("debug port", c.Debug.Port, true); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("invalid storage driver: %q", c.Storage.Driver)
	}
	if c.Dispatch.Interval <= 0 {
		return fmt.Errorf("invalid dispatch interval: %s", c.Dispatch.Interval)
	}
	if c.Dispatch.OperationTimeout <= 0 || c.Dispatch.PassTimeout <= 0 {
		return errors.New("dispatch timeouts must be positive")
	}
	if c.Dispatch.ArrivalRadiusM <= 0 {
		return fmt.Errorf("invalid arrival radius: %v", c.Dispatch.ArrivalRadiusM)
	}
	if c.Live.SubscriberBuffer <= 0 {
		return fmt.Errorf("invalid subscriber buffer: %d", c.Live.SubscriberBuffer)
	}
	if len(c.Kafka.Brokers) > 0 && (c.Kafka.Topic == "" || c.Kafka.GroupID == "") {
		return errors.New("kafka topic and group id are required when brokers are set")
	}
	return nil
}

func validPort(name string, port int, zeroOK bool) error {
	if zeroOK && port == 0 {
		return nil
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid %s: %d", name, port)
	}
	return nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parser collects every malformed variable instead of stopping at the first.
type parser struct{ errs []error }

func (p *parser) intVar(key string, def int) int {
	v := envString(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return n
}

func (p *parser) boolVar(key string, def bool) bool {
	v := envString(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return b
}

func (p *parser) floatVar(key string, def float64) float64 {
	v := envString(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return f
}

func (p *parser) durationVar(key string, def time.Duration) time.Duration {
	v := envString(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return d
}
