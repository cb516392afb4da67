package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	json "github.com/goccy/go-json"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the name of the config file
	ConfigFileName = "config.json"
	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "GDSYNC"
)

// Config holds application configuration
type Config struct {
	// DefaultOutputFormat is the default output format (json, table)
	DefaultOutputFormat types.OutputFormat `json:"defaultOutputFormat" mapstructure:"defaultOutputFormat"`

	// ProfilesDir is where sync profiles are stored. Empty means <config dir>/profiles.
	ProfilesDir string `json:"profilesDir" mapstructure:"profilesDir"`

	// MaxRetries is the maximum number of retries for API calls
	MaxRetries int `json:"maxRetries" mapstructure:"maxRetries"`

	// RetryBaseDelay is the base delay for exponential backoff in milliseconds
	RetryBaseDelay int `json:"retryBaseDelay" mapstructure:"retryBaseDelay"`

	// RequestTimeout is the default request timeout in seconds
	RequestTimeout int `json:"requestTimeout" mapstructure:"requestTimeout"`

	// LogLevel sets the logging verbosity (quiet, normal, verbose, debug)
	LogLevel string `json:"logLevel" mapstructure:"logLevel"`

	// LogFile receives JSON log lines when set
	LogFile string `json:"logFile" mapstructure:"logFile"`

	// ColorOutput enables color output on the console
	ColorOutput bool `json:"colorOutput" mapstructure:"colorOutput"`

	// PausePollInterval is how often a paused sync re-checks its state, in milliseconds
	PausePollInterval int `json:"pausePollInterval" mapstructure:"pausePollInterval"`

	OAuthClientID     string `json:"oauthClientId,omitempty" mapstructure:"oauthClientId"`
	OAuthClientSecret string `json:"oauthClientSecret,omitempty" mapstructure:"oauthClientSecret"`
}

// envKeys maps config keys to their environment variable suffix
var envKeys = map[string]string{
	"defaultOutputFormat": "OUTPUT_FORMAT",
	"profilesDir":         "PROFILES_DIR",
	"maxRetries":          "MAX_RETRIES",
	"retryBaseDelay":      "RETRY_BASE_DELAY",
	"requestTimeout":      "REQUEST_TIMEOUT",
	"logLevel":            "LOG_LEVEL",
	"logFile":             "LOG_FILE",
	"colorOutput":         "COLOR_OUTPUT",
	"pausePollInterval":   "PAUSE_POLL_INTERVAL",
	"oauthClientId":       "OAUTH_CLIENT_ID",
	"oauthClientSecret":   "OAUTH_CLIENT_SECRET",
}

var validLogLevels = []string{"quiet", "normal", "verbose", "debug"}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultOutputFormat: types.OutputFormatTable,
		MaxRetries:          utils.DefaultMaxRetries,
		RetryBaseDelay:      utils.DefaultRetryDelayMs,
		RequestTimeout:      60,
		LogLevel:            "normal",
		ColorOutput:         true,
		PausePollInterval:   utils.DefaultPausePollMs,
	}
}

// Keys returns the settable config keys in sorted order
func Keys() []string {
	keys := make([]string, 0, len(envKeys))
	for k := range envKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func newViper(defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault("defaultOutputFormat", string(defaults.DefaultOutputFormat))
	v.SetDefault("profilesDir", defaults.ProfilesDir)
	v.SetDefault("maxRetries", defaults.MaxRetries)
	v.SetDefault("retryBaseDelay", defaults.RetryBaseDelay)
	v.SetDefault("requestTimeout", defaults.RequestTimeout)
	v.SetDefault("logLevel", defaults.LogLevel)
	v.SetDefault("logFile", defaults.LogFile)
	v.SetDefault("colorOutput", defaults.ColorOutput)
	v.SetDefault("pausePollInterval", defaults.PausePollInterval)
	v.SetDefault("oauthClientId", defaults.OAuthClientID)
	v.SetDefault("oauthClientSecret", defaults.OAuthClientSecret)
	return v
}

// Load loads configuration with precedence: env vars > config file > defaults.
// An empty path means <config dir>/config.json. A missing file is not an error.
func Load(path string) (*Config, error) {
	return load(path, true)
}

// LoadFile loads defaults and the config file only, ignoring the
// environment. Use it when the result is written back to disk.
func LoadFile(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, withEnv bool) (*Config, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := newViper(DefaultConfig())
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	if withEnv {
		for key, env := range envKeys {
			if err := v.BindEnv(key, EnvPrefix+"_"+env); err != nil {
				return nil, fmt.Errorf("bind %s: %w", key, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Set assigns a single key from its string form and re-validates
func (c *Config) Set(key, value string) error {
	if _, ok := envKeys[key]; !ok {
		return fmt.Errorf("unknown config key: %s (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}

	v := newViper(c)
	v.Set(key, value)

	updated := &Config{}
	if err := v.Unmarshal(updated); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	*c = *updated
	return nil
}

// Get returns a key's current value rendered as a string
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "defaultOutputFormat":
		return string(c.DefaultOutputFormat), nil
	case "profilesDir":
		return c.ProfilesDir, nil
	case "maxRetries":
		return strconv.Itoa(c.MaxRetries), nil
	case "retryBaseDelay":
		return strconv.Itoa(c.RetryBaseDelay), nil
	case "requestTimeout":
		return strconv.Itoa(c.RequestTimeout), nil
	case "logLevel":
		return c.LogLevel, nil
	case "logFile":
		return c.LogFile, nil
	case "colorOutput":
		return strconv.FormatBool(c.ColorOutput), nil
	case "pausePollInterval":
		return strconv.Itoa(c.PausePollInterval), nil
	case "oauthClientId":
		return c.OAuthClientID, nil
	case "oauthClientSecret":
		if c.OAuthClientSecret == "" {
			return "", nil
		}
		return "********", nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

// Save saves the configuration to path, or the default location when empty
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DefaultOutputFormat != types.OutputFormatJSON &&
		c.DefaultOutputFormat != types.OutputFormatTable {
		return fmt.Errorf("invalid output format: %s (must be 'json' or 'table')", c.DefaultOutputFormat)
	}

	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("max retries must be between 0 and 10, got: %d", c.MaxRetries)
	}

	if c.RetryBaseDelay < 100 || c.RetryBaseDelay > 60000 {
		return fmt.Errorf("retry base delay must be between 100ms and 60000ms, got: %d", c.RetryBaseDelay)
	}

	if c.RequestTimeout < 1 || c.RequestTimeout > 3600 {
		return fmt.Errorf("request timeout must be between 1 and 3600 seconds, got: %d", c.RequestTimeout)
	}

	if c.PausePollInterval < 10 || c.PausePollInterval > 10000 {
		return fmt.Errorf("pause poll interval must be between 10ms and 10000ms, got: %d", c.PausePollInterval)
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	return nil
}

// GetRetryBaseDelay returns the retry base delay as a duration
func (c *Config) GetRetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelay) * time.Millisecond
}

// GetRequestTimeout returns the request timeout as a duration
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetPausePollInterval returns the pause poll interval as a duration
func (c *Config) GetPausePollInterval() time.Duration {
	return time.Duration(c.PausePollInterval) * time.Millisecond
}

// GetProfilesDir returns the configured profiles directory or the default one
func (c *Config) GetProfilesDir() (string, error) {
	if c.ProfilesDir != "" {
		return c.ProfilesDir, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "profiles"), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "gdsync"), nil
}
