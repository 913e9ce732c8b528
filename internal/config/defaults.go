package config

import "time"

const (
	defaultPort             = 8080
	defaultLogLevel         = "info"
	defaultStorageDriver    = StorageMemory
	defaultSubscriberBuffer = 16
	defaultKafkaGroupID     = "delivery-dispatch"
	defaultKafkaTopic       = "order.fulfillment"
	defaultRabbitExchange   = "dispatch.events"
	defaultGRPCPort         = 50051
	defaultDebugPort        = 6060
)

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "dispatch_db",
}

var defaultDispatch = Dispatch{
	Interval:         5 * time.Second,
	AutoStart:        false,
	OperationTimeout: 3 * time.Second,
	PassTimeout:      30 * time.Second,
	AutoArrival:      false,
	ArrivalRadiusM:   50,
}

var defaultRateLimit = RateLimit{
	Enabled:    false,
	Limit:      20,
	Window:     time.Second,
	TTL:        5 * time.Minute,
	MaxBuckets: 10000,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultDispatch returns the default matching settings.
func DefaultDispatch() Dispatch {
	return defaultDispatch
}

// DefaultRateLimit returns the default rate limiter settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}
