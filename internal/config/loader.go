package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// EnvConfigPath names the environment variable consulted by Discover.
const EnvConfigPath = "HEARTH_CONFIG"

// Load reads a YAML file on top of Defaults, expands ${VAR} references and
// validates the result.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(interpolateEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", absPath, err)
	}
	cfg.SourcePath = absPath
	cfg.Fingerprint = Fingerprint(data)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads configPath, or the discovered file when configPath is
// empty, or Defaults when nothing is found.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = Discover()
	}
	if configPath == "" {
		return Defaults(), nil
	}
	return Load(configPath)
}

// Discover returns the first config file found in $HEARTH_CONFIG,
// ~/.config/hearth/config.yaml, ./hearth.yaml. Empty when none exist.
func Discover() string {
	candidates := []string{os.Getenv(EnvConfigPath)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "hearth", "config.yaml"))
	}
	candidates = append(candidates, "hearth.yaml")
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// interpolateEnv replaces ${VAR} with environment variable values. Unset
// variables are left in place and rejected by validate where they matter.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

var recentTypes = []string{
	"brand-asset", "persona", "research-plan", "research-method",
	"strategy-tool", "product", "trend", "knowledge", "page",
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(cfg.Service.LogLevel)] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}
	if f := strings.ToLower(cfg.Service.LogFormat); f != "json" && f != "text" {
		return fmt.Errorf("service.log_format must be json or text (got %q)", cfg.Service.LogFormat)
	}

	if !cfg.State.InMemory && cfg.State.Path == "" {
		return fmt.Errorf("state.path is required unless state.in_memory is set")
	}

	if cfg.Activity.Capacity <= 0 {
		return fmt.Errorf("activity.capacity must be positive")
	}
	if cfg.Recent.Capacity <= 0 {
		return fmt.Errorf("recent.capacity must be positive")
	}
	if cfg.Recent.MaxAge <= 0 {
		return fmt.Errorf("recent.max_age must be positive")
	}
	for i, t := range cfg.Recent.ExcludeTypes {
		if !slices.Contains(recentTypes, t) {
			return fmt.Errorf("recent.exclude_types[%d]: unknown item type %q", i, t)
		}
	}

	keys := map[string]string{
		"activity.persist_key": cfg.Activity.PersistKey,
		"recent.persist_key":   cfg.Recent.PersistKey,
		"payment.persist_key":  cfg.Payment.PersistKey,
	}
	seen := make(map[string]string)
	for _, field := range []string{"activity.persist_key", "recent.persist_key", "payment.persist_key"} {
		k := keys[field]
		if k == "" {
			return fmt.Errorf("%s is required", field)
		}
		if other, dup := seen[k]; dup {
			return fmt.Errorf("%s duplicates %s (%q)", field, other, k)
		}
		seen[k] = field
	}

	if cfg.Payment.ProcessingDelay < 0 {
		return fmt.Errorf("payment.processing_delay must not be negative")
	}

	if len(cfg.Shortcuts.LeaderKey) != 1 {
		return fmt.Errorf("shortcuts.leader_key must be a single key (got %q)", cfg.Shortcuts.LeaderKey)
	}
	if cfg.Shortcuts.LeaderTimeout <= 0 {
		return fmt.Errorf("shortcuts.leader_timeout must be positive")
	}

	if cfg.API.Enabled {
		if cfg.API.Listen == "" {
			return fmt.Errorf("api.listen is required when api.enabled is true")
		}
		if m := envVarPattern.FindStringSubmatch(cfg.API.APIKey); m != nil {
			return fmt.Errorf("api.api_key: environment variable ${%s} is not set", m[1])
		}
		if cfg.API.APIKey == "" {
			return fmt.Errorf("api.api_key is required when api.enabled is true")
		}
	}
	return nil
}
