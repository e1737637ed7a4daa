// Package config provides unified configuration for the concierge service.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (CONCIERGE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the concierge service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 1 MiB
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 15s
}

// EngineConfig holds reasoning engine settings.
type EngineConfig struct {
	Provider         string        `yaml:"provider"`          // "openai" or "anthropic", default: "openai"
	BackendURL       string        `yaml:"backend_url"`       // required for openai
	APIKey           string        `yaml:"api_key"`           // optional
	APIKeyFile       string        `yaml:"api_key_file"`      // _file variant for api_key
	Model            string        `yaml:"model"`             // required
	MaxTokens        int           `yaml:"max_tokens"`        // default: 1024
	Instructions     string        `yaml:"instructions"`      // optional system prompt
	InstructionsFile string        `yaml:"instructions_file"` // _file variant for instructions
	MaxHistoryTurns  int           `yaml:"max_history_turns"` // default: 20
	Timeout          time.Duration `yaml:"timeout"`           // default: 60s
}

// StorageConfig holds backing store settings.
type StorageConfig struct {
	Type           string         `yaml:"type"`            // "memory", "postgres" or "sqlite", default: "memory"
	CallTimeout    time.Duration  `yaml:"call_timeout"`    // default: 10s
	PersistTimeout time.Duration  `yaml:"persist_timeout"` // default: 5s
	Memory         MemoryConfig   `yaml:"memory"`
	Postgres       PostgresConfig `yaml:"postgres"`
	SQLite         SQLiteConfig   `yaml:"sqlite"`
}

// MemoryConfig holds in-memory store settings.
type MemoryConfig struct {
	SeedFile string `yaml:"seed_file"` // optional facility seed (YAML)
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 10
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path           string `yaml:"path"`             // default: "concierge.db"
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: true
}

// SearchConfig holds facility search tuning.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"` // default: 5
	MaxLimit     int `yaml:"max_limit"`     // default: 10
	PoolSize     int `yaml:"pool_size"`     // default: 50
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	Type string    `yaml:"type"` // "none" or "jwt", default: "none"
	JWT  JWTConfig `yaml:"jwt"`
}

// JWTConfig holds bearer token verification settings.
type JWTConfig struct {
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secret_file"` // _file variant for secret
	Issuer     string `yaml:"issuer"`
	Audience   string `yaml:"audience"`
	UserClaim  string `yaml:"user_claim"` // default: "sub"
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // default: "INFO"
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			MaxBodySize:     1 << 20,
			ShutdownTimeout: 15 * time.Second,
		},
		Engine: EngineConfig{
			Provider:        "openai",
			MaxTokens:       1024,
			MaxHistoryTurns: 20,
			Timeout:         60 * time.Second,
		},
		Storage: StorageConfig{
			Type:           "memory",
			CallTimeout:    10 * time.Second,
			PersistTimeout: 5 * time.Second,
			Postgres: PostgresConfig{
				MaxConns: 10,
			},
			SQLite: SQLiteConfig{
				Path:           "concierge.db",
				MigrateOnStart: true,
			},
		},
		Search: SearchConfig{
			DefaultLimit: 5,
			MaxLimit:     10,
			PoolSize:     50,
		},
		Auth: AuthConfig{
			Type: "none",
			JWT: JWTConfig{
				UserClaim: "sub",
			},
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
