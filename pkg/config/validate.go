package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}

	switch c.Engine.Provider {
	case "openai":
		if c.Engine.BackendURL == "" {
			errs = append(errs, fmt.Errorf("engine.backend_url is required when engine.provider is \"openai\""))
		}
	case "anthropic":
		if c.Engine.APIKey == "" && c.Engine.APIKeyFile == "" {
			errs = append(errs, fmt.Errorf("engine.api_key or engine.api_key_file is required when engine.provider is \"anthropic\""))
		}
	default:
		errs = append(errs, fmt.Errorf("engine.provider must be \"openai\" or \"anthropic\", got %q", c.Engine.Provider))
	}
	if c.Engine.Model == "" {
		errs = append(errs, fmt.Errorf("engine.model is required"))
	}
	if c.Engine.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("engine.max_tokens must be >= 0, got %d", c.Engine.MaxTokens))
	}

	switch c.Storage.Type {
	case "memory":
	case "postgres":
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			errs = append(errs, fmt.Errorf("storage.sqlite.path is required when storage.type is \"sqlite\""))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\", \"postgres\" or \"sqlite\", got %q", c.Storage.Type))
	}

	if c.Search.DefaultLimit <= 0 {
		errs = append(errs, fmt.Errorf("search.default_limit must be > 0, got %d", c.Search.DefaultLimit))
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		errs = append(errs, fmt.Errorf("search.max_limit (%d) must be >= search.default_limit (%d)", c.Search.MaxLimit, c.Search.DefaultLimit))
	}
	if c.Search.PoolSize < c.Search.MaxLimit {
		errs = append(errs, fmt.Errorf("search.pool_size (%d) must be >= search.max_limit (%d)", c.Search.PoolSize, c.Search.MaxLimit))
	}

	switch c.Auth.Type {
	case "none":
	case "jwt":
		if c.Auth.JWT.Secret == "" && c.Auth.JWT.SecretFile == "" {
			errs = append(errs, fmt.Errorf("auth.jwt.secret or auth.jwt.secret_file is required when auth.type is \"jwt\""))
		}
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\" or \"jwt\", got %q", c.Auth.Type))
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
