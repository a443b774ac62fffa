package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
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
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Storage
	StorageBackend string `yaml:"storage_backend"`
	SQLitePath     string `yaml:"sqlite_path"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	EventBusName  string `yaml:"event_bus_name"`
	EnableEvents  bool   `yaml:"enable_events"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Authentication
	AuthEnabled bool   `yaml:"auth_enabled"`
	JWTSecret   string `yaml:"jwt_secret"`
	JWTIssuer   string `yaml:"jwt_issuer"`

	// Observability
	EnableMetrics bool   `yaml:"enable_metrics"`
	EnableTracing bool   `yaml:"enable_tracing"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`

	// HTTP surface
	CORSOrigins []string      `yaml:"cors_origins"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`

	// Client
	APIBaseURL        string        `yaml:"api_base_url"`
	APIToken          string        `yaml:"api_token"`
	ClientTimeout     time.Duration `yaml:"client_timeout"`
	DraftPollInterval time.Duration `yaml:"draft_poll_interval"`

	// Import
	ImportContradictionKeyword string `yaml:"import_contradiction_keyword"`
	ImportPlaceholder          string `yaml:"import_placeholder"`
	ImportDanglingPolicy       string `yaml:"import_dangling_policy"`

	// File the YAML layer was read from, empty when none
	SourceFile string `yaml:"-"`
}

// Defaults returns the configuration used when nothing else is set
func Defaults() *Config {
	return &Config{
		ServerAddress:              ":8080",
		Environment:                "development",
		ShutdownTimeout:            15 * time.Second,
		StorageBackend:             StorageMemory,
		SQLitePath:                 "evidence_maps.db",
		AWSRegion:                  "us-west-2",
		DynamoDBTable:              "evidence-maps",
		EventBusName:               "evidence-map-events",
		LogLevel:                   "info",
		JWTIssuer:                  "evidence-map",
		EnableMetrics:              true,
		OTLPEndpoint:               "localhost:4317",
		CORSOrigins:                []string{"*"},
		CacheTTL:                   30 * time.Second,
		APIBaseURL:                 "http://localhost:8080",
		ClientTimeout:              30 * time.Second,
		DraftPollInterval:          2 * time.Second,
		ImportContradictionKeyword: "CONTRADICTS",
		ImportPlaceholder:          "No description was extracted. Please fill in the details.",
		ImportDanglingPolicy:       "keep",
	}
}

// LoadConfig layers configuration from lowest to highest priority: defaults,
// the YAML file named by CONFIG_FILE, a .env file, then the environment.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile is LoadConfig with an explicit YAML path. An empty path skips the
// YAML layer.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := cfg.mergeYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.SourceFile = path
	return nil
}

// applyEnvironment overlays environment variables on the current values
func (c *Config) applyEnvironment() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", c.StorageBackend))
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.DynamoDBTable))
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)
	c.EnableEvents = getEnvBool("ENABLE_EVENTS", c.EnableEvents)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.AuthEnabled = getEnvBool("AUTH_ENABLED", c.AuthEnabled)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)

	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.OTLPEndpoint = getEnv("OTLP_ENDPOINT", c.OTLPEndpoint)

	c.CORSOrigins = getEnvList("CORS_ORIGINS", c.CORSOrigins)
	if secs := getEnvInt("CACHE_TTL_SECONDS", -1); secs >= 0 {
		c.CacheTTL = time.Duration(secs) * time.Second
	}

	c.APIBaseURL = getEnv("API_BASE_URL", c.APIBaseURL)
	c.APIToken = getEnv("API_TOKEN", c.APIToken)
	c.ClientTimeout = getEnvDuration("CLIENT_TIMEOUT", c.ClientTimeout)
	c.DraftPollInterval = getEnvDuration("DRAFT_POLL_INTERVAL", c.DraftPollInterval)

	c.ImportContradictionKeyword = getEnv("IMPORT_CONTRADICTION_KEYWORD", c.ImportContradictionKeyword)
	c.ImportPlaceholder = getEnv("IMPORT_PLACEHOLDER", c.ImportPlaceholder)
	c.ImportDanglingPolicy = getEnv("IMPORT_DANGLING_POLICY", c.ImportDanglingPolicy)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageMemory, StorageSQLite, StorageDynamoDB:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.StorageBackend == StorageSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
	}
	if c.StorageBackend == StorageDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb backend")
	}
	if c.EnableEvents && c.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required when events are enabled")
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when auth is enabled")
	}
	if c.IsProduction() && !c.AuthEnabled {
		return fmt.Errorf("AUTH_ENABLED must be true in production")
	}
	switch c.ImportDanglingPolicy {
	case "", "keep", "drop", "redirect":
	default:
		return fmt.Errorf("unknown IMPORT_DANGLING_POLICY %q", c.ImportDanglingPolicy)
	}
	if c.DraftPollInterval <= 0 {
		return fmt.Errorf("DRAFT_POLL_INTERVAL must be positive")
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

// getEnvDuration accepts Go durations ("1500ms") or whole seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvList splits a comma separated variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
