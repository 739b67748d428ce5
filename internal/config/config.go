// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer file and env overrides on top via Load.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DeviceID identifies this device in score events it originates. Empty
	// means a random id is generated at startup.
	DeviceID string `koanf:"device_id"`

	// PollIntervalSeconds sets the periodic sync cadence while a round is
	// active.
	PollIntervalSeconds int `koanf:"poll_interval_seconds"`

	// DiscoveryCooldownSeconds throttles foreground discovery sweeps.
	DiscoveryCooldownSeconds int `koanf:"discovery_cooldown_seconds"`

	// DefaultPar is assumed for holes missing from course data.
	DefaultPar int `koanf:"default_par"`

	// SnapshotQueueSize bounds the companion snapshot queue.
	SnapshotQueueSize int `koanf:"snapshot_queue_size"`

	// DedupeSize sets the size of the pull deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// RemoteZone selects the remote record zone queried by pulls.
	RemoteZone string `koanf:"remote_zone"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		Addr:                     ":9080",
		PollIntervalSeconds:      45,
		DiscoveryCooldownSeconds: 30,
		DefaultPar:               3,
		SnapshotQueueSize:        256,
		DedupeSize:               50_000,
	}
}
