// Package config loads the application configuration from a yaml file with
// environment variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Output backends selectable through Output.Backend.
const (
	BackendJSON     = "json"
	BackendStdout   = "stdout"
	BackendCSV      = "csv"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config represents the application configuration structure.
// It contains settings for the environment, the Tomba client, rate limiting,
// output sinks, metrics and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	Log struct {
		// Level overrides the environment's default log level (debug, info, warn, error)
		Level string `env:"LOG_LEVEL" env-default:"" yaml:"level"`
	} `yaml:"log"`

	// Tomba contains the provider client settings. Credentials come from the input.
	Tomba struct {
		// BaseURL is the Tomba API endpoint
		BaseURL string `env:"TOMBA_BASE_URL" env-default:"https://api.tomba.io" yaml:"baseURL"`
		// Timeout bounds a single HTTP call to Tomba
		Timeout time.Duration `env:"TOMBA_TIMEOUT" env-default:"30s" yaml:"timeout"`
	} `yaml:"tomba"`

	RateLimit struct {
		// Strategy is either "fixed" or "token"
		Strategy string `env:"RATE_LIMIT_STRATEGY" env-default:"fixed" yaml:"strategy"`
		// Capacity is the number of calls admitted per window
		Capacity int `env:"RATE_LIMIT_CAPACITY" env-default:"150" yaml:"capacity"`
		// Window is the length of a rate limit window
		Window time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"1m" yaml:"window"`
	} `yaml:"rateLimit"`

	Batch struct {
		// MaxResults is used when the input does not set maxResults
		MaxResults int `env:"BATCH_MAX_RESULTS" env-default:"50" yaml:"maxResults"`
	} `yaml:"batch"`

	Output struct {
		// Backend selects the sink: json, stdout, csv, sqlite, postgres or redis
		Backend string `env:"OUTPUT_BACKEND" env-default:"json" yaml:"backend"`
		// Path is the output file for json and csv, or the DSN for sqlite
		Path string `env:"OUTPUT_PATH" env-default:"output/email_counts.ndjson" yaml:"path"`
	} `yaml:"output"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"emailcount" yaml:"name"`
		// ApplicationName is reported to the server and shows up in pg_stat_activity
		ApplicationName string `env:"DATABASE_APPLICATION_NAME" env-default:"emailcount" yaml:"applicationName"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"4" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"1" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379" yaml:"addr"`
		Password string `env:"REDIS_PASSWORD" env-default:"" yaml:"password"`
		DB       int    `env:"REDIS_DB" env-default:"0" yaml:"db"`
		// Prefix namespaces the keys written by the redis sink
		Prefix string `env:"REDIS_PREFIX" env-default:"emailcount" yaml:"prefix"`
		// TTL expires each run's list; zero keeps it
		TTL time.Duration `env:"REDIS_TTL" env-default:"0s" yaml:"ttl"`
	} `yaml:"redis"`

	Metrics struct {
		Enabled bool `env:"METRICS_ENABLED" env-default:"false" yaml:"enabled"`
		// Addr is the address and port the metrics server will listen on
		Addr string `env:"METRICS_ADDR" env-default:":9090" yaml:"addr"`
		// Path defines the URL path where metrics are exposed
		Path string `env:"METRICS_PATH" env-default:"/metrics" yaml:"path"`
		// Pprof exposes net/http/pprof under /debug/pprof/
		Pprof bool `env:"METRICS_PPROF" env-default:"false" yaml:"pprof"`
	} `yaml:"metrics"`

	// GracefulShutdownTimeout is the maximum duration to wait for the metrics server to stop
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// An empty path reads the environment only.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from env: %w", err)
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
