package config

import "time"

// StorageBackend selects the durable key-value backend.
type StorageBackend string

const (
	// BackendBBolt stores chapter data in a bbolt file.
	BackendBBolt StorageBackend = "bbolt"
	// BackendSQLite stores chapter data in a SQLite database.
	BackendSQLite StorageBackend = "sqlite"
	// BackendMemory keeps chapter data in memory. Testing only.
	BackendMemory StorageBackend = "memory"
)

// IsValid reports whether b is a recognised storage backend.
func (b StorageBackend) IsValid() bool {
	switch b {
	case BackendBBolt, BackendSQLite, BackendMemory:
		return true
	}
	return false
}

// Config is the root configuration for the chapter engine.
type Config struct {
	Storage Storage `yaml:"storage"`
	Chapter Chapter `yaml:"chapter"`
	Party   Party   `yaml:"party"`
	Otel    Otel    `yaml:"otel"`
}

// Storage configures the durable key-value store.
type Storage struct {
	// Backend selects the store implementation.
	Backend StorageBackend `yaml:"backend" env:"IRONMARCH_STORAGE_BACKEND"`

	// Path is the database file location.
	Path string `yaml:"path" env:"IRONMARCH_STORAGE_PATH"`
}

// Chapter configures loss processing behavior.
type Chapter struct {
	// SlowLossThreshold is the processing time beyond which a
	// performance warning is emitted.
	SlowLossThreshold time.Duration `yaml:"slow_loss_threshold" env:"IRONMARCH_SLOW_LOSS_THRESHOLD"`

	// SkipPresentation disables collaborator-owned loss animation,
	// for headless or fast-forward processing.
	SkipPresentation bool `yaml:"skip_presentation" env:"IRONMARCH_SKIP_PRESENTATION"`
}

// Party configures composition validation bounds.
type Party struct {
	// MinSize is the smallest deployable party.
	MinSize int `yaml:"min_size" env:"IRONMARCH_PARTY_MIN_SIZE"`

	// MaxSize is the largest deployable party.
	MaxSize int `yaml:"max_size" env:"IRONMARCH_PARTY_MAX_SIZE"`

	// AllowEmpty permits an empty candidate party.
	AllowEmpty bool `yaml:"allow_empty" env:"IRONMARCH_PARTY_ALLOW_EMPTY"`
}

// Otel configures the optional trace exporter.
type Otel struct {
	// Endpoint is the OTLP trace endpoint URL. Empty disables tracing.
	Endpoint string `yaml:"endpoint" env:"IRONMARCH_OTEL_ENDPOINT"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Storage: Storage{Backend: BackendBBolt, Path: "ironmarch.db"},
		Chapter: Chapter{SlowLossThreshold: 200 * time.Millisecond},
		Party:   Party{MinSize: 1, MaxSize: 8},
	}
}
