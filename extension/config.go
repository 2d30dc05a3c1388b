package extension

import "time"

// Config holds the Steward extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.steward" or "steward" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for steward routes (default: "/steward").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// GateCacheTTL is the time-to-live for cached HasRole gate results.
	// Zero disables the gate cache.
	GateCacheTTL time.Duration `json:"gate_cache_ttl" mapstructure:"gate_cache_ttl" yaml:"gate_cache_ttl"`

	// ProvisionTimeout bounds calls to the identity provisioner.
	ProvisionTimeout time.Duration `json:"provision_timeout" mapstructure:"provision_timeout" yaml:"provision_timeout"`

	// GroveDatabase is the name of a grove.DB registered in the DI container.
	// When set, the extension resolves this named database and auto-constructs
	// the appropriate store based on the driver type (pg/sqlite/mongo).
	// When empty and WithGroveDatabase was called, the default (unnamed) DB is used.
	GroveDatabase string `json:"grove_database" mapstructure:"grove_database" yaml:"grove_database"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ProvisionTimeout: 10 * time.Second,
	}
}
