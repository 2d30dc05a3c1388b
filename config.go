package steward

import "time"

// Config holds configuration for the Steward engine.
type Config struct {
	// ProvisionTimeout bounds every call to the provisioning collaborator.
	// Expiry surfaces as ErrServiceUnavailable. Defaults to 10s.
	ProvisionTimeout time.Duration `json:"provision_timeout,omitempty"`

	// GateCacheTTL is the time-to-live for cached HasRole gate results.
	// Zero means no caching. Full capability resolution is never cached.
	GateCacheTTL time.Duration `json:"gate_cache_ttl,omitempty"`

	// LifecycleRetries is how many times a suspend/reactivate transition is
	// re-read and re-guarded after losing an optimistic-version race.
	// Defaults to 3.
	LifecycleRetries int `json:"lifecycle_retries,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ProvisionTimeout: 10 * time.Second,
		LifecycleRetries: 3,
	}
}
