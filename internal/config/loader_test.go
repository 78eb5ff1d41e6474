package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
		checkFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "minimal config keeps defaults",
			yaml: `
service:
  name: test
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Service.Name != "test" {
					t.Error("service.name not parsed")
				}
				if cfg.Activity.Capacity != 100 {
					t.Errorf("activity.capacity = %d, want 100", cfg.Activity.Capacity)
				}
				if cfg.Recent.MaxAge != 30*24*time.Hour {
					t.Errorf("recent.max_age = %v", cfg.Recent.MaxAge)
				}
				if cfg.Shortcuts.LeaderTimeout != time.Second {
					t.Errorf("shortcuts.leader_timeout = %v", cfg.Shortcuts.LeaderTimeout)
				}
				if cfg.Fingerprint == "" || cfg.SourcePath == "" {
					t.Error("source metadata not set")
				}
			},
		},
		{
			name: "durations and lists",
			yaml: `
recent:
  capacity: 5
  max_age: 72h
  exclude_types: [page]
payment:
  processing_delay: 250ms
  seed_demo: true
shortcuts:
  leader_timeout: 800ms
  sequence_keys: [d, r]
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Recent.Capacity != 5 || cfg.Recent.MaxAge != 72*time.Hour {
					t.Errorf("recent not parsed: %+v", cfg.Recent)
				}
				if len(cfg.Recent.ExcludeTypes) != 1 || cfg.Recent.ExcludeTypes[0] != "page" {
					t.Errorf("exclude_types = %v", cfg.Recent.ExcludeTypes)
				}
				if cfg.Payment.ProcessingDelay != 250*time.Millisecond || !cfg.Payment.SeedDemo {
					t.Errorf("payment not parsed: %+v", cfg.Payment)
				}
				if cfg.Shortcuts.LeaderTimeout != 800*time.Millisecond {
					t.Errorf("leader_timeout = %v", cfg.Shortcuts.LeaderTimeout)
				}
				if strings.Join(cfg.Shortcuts.SequenceKeys, ",") != "d,r" {
					t.Errorf("sequence_keys = %v", cfg.Shortcuts.SequenceKeys)
				}
			},
		},
		{
			name: "env var interpolation",
			yaml: `
state:
  path: ${HEARTH_TEST_DB}
api:
  enabled: true
  api_key: ${HEARTH_TEST_KEY}
`,
			env: map[string]string{
				"HEARTH_TEST_DB":  "/tmp/hearth-test.db",
				"HEARTH_TEST_KEY": "secret123",
			},
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.State.Path != "/tmp/hearth-test.db" {
					t.Errorf("state.path = %q", cfg.State.Path)
				}
				if cfg.API.APIKey != "secret123" {
					t.Errorf("api.api_key = %q", cfg.API.APIKey)
				}
			},
		},
		{
			name: "unset api key env var",
			yaml: `
api:
  enabled: true
  api_key: ${HEARTH_TEST_MISSING_KEY}
`,
			wantErr: "HEARTH_TEST_MISSING_KEY",
		},
		{
			name: "invalid log level",
			yaml: `
service:
  log_level: verbose
`,
			wantErr: "service.log_level",
		},
		{
			name: "duplicate persist keys",
			yaml: `
recent:
  persist_key: research-tool-activities
`,
			wantErr: "duplicates",
		},
		{
			name: "unknown excluded type",
			yaml: `
recent:
  exclude_types: [spaceship]
`,
			wantErr: "spaceship",
		},
		{
			name: "multi-key leader",
			yaml: `
shortcuts:
  leader_key: gg
`,
			wantErr: "leader_key",
		},
		{
			name: "in-memory state needs no path",
			yaml: `
state:
  path: ""
  in_memory: true
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if !cfg.State.InMemory {
					t.Error("in_memory not parsed")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg, err := Load(path)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error %q does not mention %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if tt.checkFn != nil {
				tt.checkFn(t, cfg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadOrDefaultUsesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearth.yaml")
	if err := os.WriteFile(path, []byte("service:\n  name: from-env\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Service.Name != "from-env" {
		t.Errorf("service.name = %q", cfg.Service.Name)
	}
}

func TestDefaultsValidate(t *testing.T) {
	if err := validate(Defaults()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint([]byte("service:\n  name: a\n"))
	b := Fingerprint([]byte("service:\n  name: a\n"))
	c := Fingerprint([]byte("service:\n  name: b\n"))
	if a != b || a == c || len(a) != 64 {
		t.Fatalf("unexpected fingerprints %s %s %s", a, b, c)
	}
}
