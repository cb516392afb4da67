package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dl-alexandre/gdsync/internal/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DefaultOutputFormat != types.OutputFormatTable {
		t.Errorf("Expected default output format 'table', got '%s'", cfg.DefaultOutputFormat)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("Expected max retries 3, got %d", cfg.MaxRetries)
	}
	if cfg.PausePollInterval != 200 {
		t.Errorf("Expected pause poll 200ms, got %d", cfg.PausePollInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{"invalid output format", func(c *Config) { c.DefaultOutputFormat = "yaml" }, "invalid output format"},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, "max retries"},
		{"too many retries", func(c *Config) { c.MaxRetries = 11 }, "max retries"},
		{"tiny base delay", func(c *Config) { c.RetryBaseDelay = 50 }, "retry base delay"},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, "request timeout"},
		{"pause poll too small", func(c *Config) { c.PausePollInterval = 1 }, "pause poll interval"},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestConfigDurationGetters(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.GetRetryBaseDelay() != time.Second {
		t.Errorf("GetRetryBaseDelay() = %v", cfg.GetRetryBaseDelay())
	}
	if cfg.GetRequestTimeout() != time.Minute {
		t.Errorf("GetRequestTimeout() = %v", cfg.GetRequestTimeout())
	}
	if cfg.GetPausePollInterval() != 200*time.Millisecond {
		t.Errorf("GetPausePollInterval() = %v", cfg.GetPausePollInterval())
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	cfg := DefaultConfig()
	cfg.DefaultOutputFormat = types.OutputFormatJSON
	cfg.ProfilesDir = "/srv/profiles"
	cfg.MaxRetries = 5
	cfg.LogLevel = "verbose"
	cfg.ColorOutput = false
	cfg.OAuthClientID = "client-id"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", loaded, cfg)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(`{"maxRetries": 2, "logLevel": "quiet"}`), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GDSYNC_MAX_RETRIES", "7")
	t.Setenv("GDSYNC_OUTPUT_FORMAT", "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d, want 7 from env", cfg.MaxRetries)
	}
	if cfg.LogLevel != "quiet" {
		t.Errorf("LogLevel = %q, want quiet from file", cfg.LogLevel)
	}
	if cfg.DefaultOutputFormat != types.OutputFormatJSON {
		t.Errorf("DefaultOutputFormat = %q, want json from env", cfg.DefaultOutputFormat)
	}
}

func TestLoadFile_IgnoresEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(`{"maxRetries": 2}`), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GDSYNC_MAX_RETRIES", "7")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2 from file", cfg.MaxRetries)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(`{"maxRetries": 99}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSetAndGet(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Set("maxRetries", "4"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.MaxRetries != 4 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if err := cfg.Set("colorOutput", "false"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := cfg.Get("colorOutput"); got != "false" {
		t.Errorf("Get(colorOutput) = %q", got)
	}

	if err := cfg.Set("maxRetries", "40"); err == nil {
		t.Error("expected out-of-range value to be rejected")
	}
	if cfg.MaxRetries != 4 {
		t.Errorf("rejected Set must not change config, MaxRetries = %d", cfg.MaxRetries)
	}
	if err := cfg.Set("nope", "1"); err == nil {
		t.Error("expected unknown key error")
	}

	cfg.OAuthClientSecret = "s3cret"
	if got, _ := cfg.Get("oauthClientSecret"); got == "s3cret" {
		t.Error("secret must be masked")
	}
}

func TestGetConfigDir_EnvOverride(t *testing.T) {
	t.Setenv("GDSYNC_CONFIG_DIR", "/tmp/gdsync-test")
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/gdsync-test" {
		t.Errorf("GetConfigDir() = %q", dir)
	}

	cfg := DefaultConfig()
	profiles, _ := cfg.GetProfilesDir()
	if profiles != filepath.Join("/tmp/gdsync-test", "profiles") {
		t.Errorf("GetProfilesDir() = %q", profiles)
	}
}
