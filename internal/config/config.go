package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const ConfigFile = "coursegraph.toml"

// ValidLogLevels lists the accepted values for log.level.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Config holds the coursegraph configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Auth   AuthConfig   `toml:"auth"`
	Events EventsConfig `toml:"events"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig defines the HTTP gateway settings.
type ServerConfig struct {
	Port                int    `toml:"port"`
	GraphQLPath         string `toml:"graphql_path"`
	Playground          bool   `toml:"playground"`
	Introspection       bool   `toml:"introspection"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
	MaxComplexity       int    `toml:"max_complexity"`
	QueryCacheSize      int    `toml:"query_cache_size"`
}

// StoreConfig selects and configures the entity store backend.
type StoreConfig struct {
	Driver     string `toml:"driver"` // memory, mongo or sqlite
	MongoURI   string `toml:"mongo_uri,omitempty"`
	Database   string `toml:"database"`
	SQLitePath string `toml:"sqlite_path"`
}

// AuthConfig defines token signing and the admin gate.
type AuthConfig struct {
	Secret        string `toml:"secret,omitempty"`
	Issuer        string `toml:"issuer"`
	TokenTTLHours int    `toml:"token_ttl_hours"`
	RequireAdmin  bool   `toml:"require_admin"`
}

// EventsConfig defines where mutation events are published. An empty URL disables publishing.
type EventsConfig struct {
	AMQPURL string `toml:"amqp_url,omitempty"`
	Queue   string `toml:"queue"`
}

// LogConfig defines logging output.
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                4000,
			GraphQLPath:         "/graphql",
			Playground:          true,
			Introspection:       true,
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 15,
			MaxComplexity:       200,
			QueryCacheSize:      1000,
		},
		Store: StoreConfig{
			Driver:     "memory",
			Database:   "coursesDB",
			SQLitePath: filepath.Join("data", "coursegraph.db"),
		},
		Auth: AuthConfig{
			Issuer:        "coursegraph",
			TokenTTLHours: 24,
		},
		Events: EventsConfig{
			Queue: "coursegraph.events",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads configuration from path, falling back to defaults for anything the file
// does not set. A missing file yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = ConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv loads variables from a .env file in the working directory if one exists.
// Variables already set in the environment win.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("COURSEGRAPH_STORE"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Store.MongoURI = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		c.Store.Database = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Store.SQLitePath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.Secret = v
	}
	if v := os.Getenv("COURSEGRAPH_REQUIRE_ADMIN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COURSEGRAPH_REQUIRE_ADMIN: %w", err)
		}
		c.Auth.RequireAdmin = b
	}
	if v := os.Getenv("COURSEGRAPH_INTROSPECTION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COURSEGRAPH_INTROSPECTION: %w", err)
		}
		c.Server.Introspection = b
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.Events.AMQPURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "mongo", "sqlite":
	default:
		return fmt.Errorf("invalid store driver: %s (must be memory, mongo or sqlite)", c.Store.Driver)
	}
	if !c.IsValidLogLevel(c.Log.Level) {
		return fmt.Errorf("invalid log level: %s (must be %s)", c.Log.Level, strings.Join(ValidLogLevels, ", "))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.GraphQLPath, "/") {
		return fmt.Errorf("invalid graphql_path: %q (must start with /)", c.Server.GraphQLPath)
	}
	if c.Server.Playground && !c.Server.Introspection {
		return fmt.Errorf("server.playground needs server.introspection to be enabled")
	}
	if c.Auth.RequireAdmin && c.Auth.Secret == "" {
		return fmt.Errorf("auth.require_admin needs auth.secret (or JWT_SECRET) to be set")
	}
	return nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IsValidLogLevel returns true if level is one of ValidLogLevels.
func (c *Config) IsValidLogLevel(level string) bool {
	for _, l := range ValidLogLevels {
		if l == level {
			return true
		}
	}
	return false
}

// ReadTimeout returns the server read timeout.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the server write timeout.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// TokenTTL returns the lifetime of issued tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}
