package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StorageDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string        `yaml:"server_address"`
	Environment     string        `yaml:"environment"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Storage configuration
	StorageBackend string `yaml:"storage_backend"`
	SQLitePath     string `yaml:"sqlite_path"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	EventBusName  string `yaml:"event_bus_name"`

	// Lambda configuration
	IsLambda           bool   `yaml:"is_lambda"`
	LambdaFunctionName string `yaml:"-"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Authentication
	RequireAuth bool   `yaml:"require_auth"`
	JWTSecret   string `yaml:"-"`
	JWTIssuer   string `yaml:"jwt_issuer"`

	// Caching and limits. A RateLimitTable selects the shared DynamoDB limiter.
	CacheTTLSeconds    int    `yaml:"cache_ttl_seconds"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int    `yaml:"rate_limit_burst"`
	RateLimitTable     string `yaml:"rate_limit_table"`

	// Observability
	MetricsNamespace string  `yaml:"metrics_namespace"`
	OTLPEndpoint     string  `yaml:"otlp_endpoint"`
	TraceSampleRate  float64 `yaml:"trace_sample_rate"`

	// Feature flags
	EnableMetrics        bool `yaml:"enable_metrics"`
	EnableCloudWatch     bool `yaml:"enable_cloudwatch"`
	EnableTracing        bool `yaml:"enable_tracing"`
	EnableEvents         bool `yaml:"enable_events"`
	EnableCORS           bool `yaml:"enable_cors"`
	EnableCircuitBreaker bool `yaml:"enable_circuit_breaker"`

	// ConfigFile is the YAML file the configuration was read from, if any
	ConfigFile string `yaml:"-"`
}

// DefaultCacheTTLSeconds is the GET cache lifetime for a single process
// owning its store
const DefaultCacheTTLSeconds = 60

// autoCacheTTL marks a cache TTL that neither the file nor the environment set
const autoCacheTTL = -1

// Default returns the built-in configuration used before any file or
// environment overrides are applied
func Default() *Config {
	return &Config{
		ServerAddress:   ":8080",
		Environment:     "development",
		MaxBodyBytes:    1 << 20,
		ShutdownTimeout: 10 * time.Second,

		StorageBackend: StorageMemory,
		SQLitePath:     "strings.db",

		AWSRegion:     "us-west-2",
		DynamoDBTable: "string-analyzer",
		EventBusName:  "string-analyzer-events",

		LogLevel: "info",

		JWTIssuer: "string-analyzer",

		CacheTTLSeconds:    DefaultCacheTTLSeconds,
		RateLimitPerMinute: 600,
		RateLimitBurst:     50,

		MetricsNamespace: "string_analyzer",
		OTLPEndpoint:     "localhost:4317",
		TraceSampleRate:  0.1,

		EnableMetrics:        true,
		EnableCORS:           true,
		EnableCircuitBreaker: true,
	}
}

// LoadConfig loads configuration from defaults, the optional YAML file
// named by CONFIG_FILE, then environment variables
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(os.Getenv("CONFIG_FILE"))
}

// LoadConfigFrom is LoadConfig with an explicit file path. An empty path
// skips the file layer.
func LoadConfigFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.CacheTTLSeconds = autoCacheTTL

	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	applyEnv(cfg)

	if cfg.CacheTTLSeconds == autoCacheTTL {
		cfg.CacheTTLSeconds = cfg.defaultCacheTTL()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultCacheTTL disables the process-local GET cache when other
// processes can delete from the same store
func (c *Config) defaultCacheTTL() int {
	if c.StorageBackend != StorageMemory || c.IsLambda {
		return 0
	}
	return DefaultCacheTTLSeconds
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

func applyEnv(cfg *Config) {
	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.MaxBodyBytes = int64(getEnvInt("MAX_BODY_BYTES", int(cfg.MaxBodyBytes)))
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.StorageBackend = getEnv("STORAGE_BACKEND", cfg.StorageBackend)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)

	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", cfg.DynamoDBTable))
	cfg.EventBusName = getEnv("EVENT_BUS_NAME", cfg.EventBusName)

	// Lambda configuration
	cfg.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", cfg.LambdaFunctionName)
	cfg.IsLambda = getEnvBool("IS_LAMBDA", cfg.IsLambda || cfg.LambdaFunctionName != "")

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	// Authentication
	cfg.RequireAuth = getEnvBool("REQUIRE_AUTH", cfg.RequireAuth)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)

	cfg.CacheTTLSeconds = getEnvInt("CACHE_TTL_SECONDS", cfg.CacheTTLSeconds)
	cfg.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.RateLimitTable = getEnv("RATE_LIMIT_TABLE", cfg.RateLimitTable)

	cfg.MetricsNamespace = getEnv("METRICS_NAMESPACE", cfg.MetricsNamespace)
	cfg.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.TraceSampleRate = getEnvFloat("TRACE_SAMPLE_RATE", cfg.TraceSampleRate)

	// Feature flags
	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.EnableCloudWatch = getEnvBool("ENABLE_CLOUDWATCH", cfg.EnableCloudWatch)
	cfg.EnableTracing = getEnvBool("ENABLE_TRACING", cfg.EnableTracing)
	cfg.EnableEvents = getEnvBool("ENABLE_EVENTS", cfg.EnableEvents)
	cfg.EnableCORS = getEnvBool("ENABLE_CORS", cfg.EnableCORS)
	cfg.EnableCircuitBreaker = getEnvBool("ENABLE_CIRCUIT_BREAKER", cfg.EnableCircuitBreaker)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case StorageDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.RequireAuth && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when REQUIRE_AUTH is set")
	}
	if c.EnableEvents && c.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required when events are enabled")
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS cannot be negative")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("TRACE_SAMPLE_RATE must be between 0 and 1")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NeedsAWS reports whether any enabled component talks to AWS
func (c *Config) NeedsAWS() bool {
	return c.StorageBackend == StorageDynamoDB ||
		c.RateLimitTable != "" ||
		c.EnableEvents ||
		c.EnableCloudWatch
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
