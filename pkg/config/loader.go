package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, CONCIERGE_CONFIG env, ./config.yaml, /etc/concierge/config.yaml)
//  3. CONCIERGE_* environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. CONCIERGE_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/concierge/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("CONCIERGE_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/concierge/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps CONCIERGE_* environment variables to config fields.
// Unparseable numeric or duration values are ignored.
func applyEnvOverrides(cfg *Config) {
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v := os.Getenv(name); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setInt("CONCIERGE_PORT", &cfg.Server.Port)

	setString("CONCIERGE_PROVIDER", &cfg.Engine.Provider)
	setString("CONCIERGE_BACKEND_URL", &cfg.Engine.BackendURL)
	setString("CONCIERGE_API_KEY", &cfg.Engine.APIKey)
	setString("CONCIERGE_MODEL", &cfg.Engine.Model)
	setInt("CONCIERGE_MAX_TOKENS", &cfg.Engine.MaxTokens)
	setDuration("CONCIERGE_ENGINE_TIMEOUT", &cfg.Engine.Timeout)

	setString("CONCIERGE_STORAGE", &cfg.Storage.Type)
	setString("CONCIERGE_SEED_FILE", &cfg.Storage.Memory.SeedFile)
	setString("CONCIERGE_POSTGRES_DSN", &cfg.Storage.Postgres.DSN)
	setString("CONCIERGE_SQLITE_PATH", &cfg.Storage.SQLite.Path)

	setString("CONCIERGE_AUTH_TYPE", &cfg.Auth.Type)
	setString("CONCIERGE_JWT_SECRET", &cfg.Auth.JWT.Secret)
	setString("CONCIERGE_JWT_ISSUER", &cfg.Auth.JWT.Issuer)
	setString("CONCIERGE_JWT_AUDIENCE", &cfg.Auth.JWT.Audience)

	setString("CONCIERGE_LOG_FORMAT", &cfg.Logging.Format)

	if v := os.Getenv("CONCIERGE_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	refs := []struct {
		name  string
		file  string
		value *string
	}{
		{"engine.api_key_file", cfg.Engine.APIKeyFile, &cfg.Engine.APIKey},
		{"engine.instructions_file", cfg.Engine.InstructionsFile, &cfg.Engine.Instructions},
		{"storage.postgres.dsn_file", cfg.Storage.Postgres.DSNFile, &cfg.Storage.Postgres.DSN},
		{"auth.jwt.secret_file", cfg.Auth.JWT.SecretFile, &cfg.Auth.JWT.Secret},
	}
	for _, ref := range refs {
		if ref.file == "" || *ref.value != "" {
			continue
		}
		val, err := readSecretFile(ref.file)
		if err != nil {
			return fmt.Errorf("%s: %w", ref.name, err)
		}
		*ref.value = val
	}
	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
