package config

import "time"

// Config represents the complete hearth configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	State     StateConfig     `yaml:"state"`
	Activity  ActivityConfig  `yaml:"activity"`
	Recent    RecentConfig    `yaml:"recent"`
	Payment   PaymentConfig   `yaml:"payment"`
	Shortcuts ShortcutsConfig `yaml:"shortcuts"`
	API       APIConfig       `yaml:"api,omitempty"`

	// SourcePath is the file the config was loaded from, empty for defaults.
	SourcePath string `yaml:"-"`
	// Fingerprint is the BLAKE3 hash of the source file.
	Fingerprint string `yaml:"-"`
}

// ServiceConfig defines core settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// StateConfig defines where the key-value records live.
type StateConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// ActivityConfig tunes the activity feed.
type ActivityConfig struct {
	Capacity   int    `yaml:"capacity"`
	PersistKey string `yaml:"persist_key"`
	SeedDemo   bool   `yaml:"seed_demo"`
}

// RecentConfig tunes the recent items list.
type RecentConfig struct {
	Capacity     int           `yaml:"capacity"`
	PersistKey   string        `yaml:"persist_key"`
	ExcludeTypes []string      `yaml:"exclude_types,omitempty"`
	MaxAge       time.Duration `yaml:"max_age"`
}

// PaymentConfig tunes the payment profile and simulated gateway.
type PaymentConfig struct {
	PersistKey      string        `yaml:"persist_key"`
	SeedDemo        bool          `yaml:"seed_demo"`
	ProcessingDelay time.Duration `yaml:"processing_delay"`
	Currency        string        `yaml:"currency"`
}

// ShortcutsConfig tunes the chord dispatcher.
type ShortcutsConfig struct {
	LeaderKey     string        `yaml:"leader_key"`
	LeaderTimeout time.Duration `yaml:"leader_timeout"`
	SequenceKeys  []string      `yaml:"sequence_keys,omitempty"`
	AlwaysOn      []string      `yaml:"always_on,omitempty"`
	// Platform overrides the modifier glyph ("darwin" shows ⌘).
	Platform string `yaml:"platform,omitempty"`
}

// APIConfig defines the local HTTP API.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	APIKey  string `yaml:"api_key"`
}

// Defaults returns a configuration with default values.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "hearth",
			LogLevel:  "info",
			LogFormat: "json",
		},
		State: StateConfig{
			Path: "./data/hearth.db",
		},
		Activity: ActivityConfig{
			Capacity:   100,
			PersistKey: "research-tool-activities",
		},
		Recent: RecentConfig{
			Capacity:   10,
			PersistKey: "research-tool-recent-items",
			MaxAge:     30 * 24 * time.Hour,
		},
		Payment: PaymentConfig{
			PersistKey:      "payment_profile",
			ProcessingDelay: 2 * time.Second,
			Currency:        "EUR",
		},
		Shortcuts: ShortcutsConfig{
			LeaderKey:     "g",
			LeaderTimeout: time.Second,
			SequenceKeys:  []string{"d", "b", "r", "p", "s"},
			AlwaysOn:      []string{"mod+k"},
		},
		API: APIConfig{
			Enabled: false,
			Listen:  "127.0.0.1:8087",
		},
	}
}
