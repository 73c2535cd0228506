package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Storage backends
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRemote = "remote"
)

// Config represents the application configuration
type Config struct {
	Profile  ProfileConfig  `json:"profile"`
	Fasting  FastingConfig  `json:"fasting"`
	Storage  StorageConfig  `json:"storage"`
	Gateway  GatewayConfig  `json:"gateway"`
	Protocol ProtocolConfig `json:"protocol"`
	Log      LogConfig      `json:"log"`
}

// ProfileConfig holds user-specific settings
type ProfileConfig struct {
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
}

// FastingConfig holds fasting defaults
type FastingConfig struct {
	DefaultTargetHours float64 `json:"default_target_hours"`
}

// StorageConfig selects where tracker state lives
type StorageConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"` // sqlite database, empty for ~/.longevity/data.db
}

// GatewayConfig holds the optional remote backend settings
type GatewayConfig struct {
	Enabled      bool   `json:"enabled"`
	BaseURL      string `json:"base_url"`
	Token        string `json:"token,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	TokenURL     string `json:"token_url,omitempty"`
	// TimeoutSeconds bounds state reads and queued event deliveries; zero
	// keeps the client default
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// ProtocolConfig holds protocol checklist settings
type ProtocolConfig struct {
	TemplatesFile string `json:"templates_file,omitempty"`
}

// LogConfig holds logging preferences
type LogConfig struct {
	Level string `json:"level"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Fasting: FastingConfig{
			DefaultTargetHours: 16,
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration from ~/.longevity/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.Fasting.DefaultTargetHours == 0 {
		cfg.Fasting.DefaultTargetHours = defaults.Fasting.DefaultTargetHours
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.longevity/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Profile.DateOfBirth = "1985-06-15"
	example.Gateway = GatewayConfig{
		BaseURL:  "https://tracker.example.com",
		ClientID: "YOUR_CLIENT_ID",
		TokenURL: "https://tracker.example.com/oauth/token",
	}

	return Save(&example)
}

// Validate checks the config for inconsistent values
func (c *Config) Validate() error {
	if c.Profile.DateOfBirth != "" {
		if _, err := time.Parse(time.DateOnly, c.Profile.DateOfBirth); err != nil {
			return fmt.Errorf("profile.date_of_birth must be YYYY-MM-DD, got %q", c.Profile.DateOfBirth)
		}
	}

	if t := c.Fasting.DefaultTargetHours; t < 0 || t > 168 || math.IsNaN(t) {
		return fmt.Errorf("fasting.default_target_hours must be between 0 and 168, got %v", t)
	}

	switch c.Storage.Backend {
	case "", BackendSQLite, BackendMemory:
	case BackendRemote:
		if c.Gateway.BaseURL == "" {
			return errors.New("gateway.base_url is required when storage.backend is \"remote\"")
		}
	default:
		return fmt.Errorf("storage.backend must be \"sqlite\", \"memory\" or \"remote\", got %q", c.Storage.Backend)
	}

	if c.Gateway.TimeoutSeconds < 0 {
		return fmt.Errorf("gateway.timeout_seconds must not be negative, got %d", c.Gateway.TimeoutSeconds)
	}
	if c.Gateway.Enabled && c.Gateway.BaseURL == "" {
		return errors.New("gateway.base_url is required when the gateway is enabled")
	}
	if c.UsesGateway() && c.Gateway.UsesClientCredentials() && (c.Gateway.ClientID == "YOUR_CLIENT_ID" || c.Gateway.TokenURL == "") {
		return errors.New("gateway.client_id and gateway.token_url are required for client credentials")
	}

	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}

	return nil
}

// UsesGateway reports whether the remote gateway is used for state or events
func (c *Config) UsesGateway() bool {
	return c.Gateway.Enabled || c.Storage.Backend == BackendRemote
}

// Timeout returns the configured request timeout, zero when unset
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// UsesClientCredentials reports whether a client credentials grant is configured
func (g GatewayConfig) UsesClientCredentials() bool {
	return g.Token == "" && g.ClientID != ""
}

// Age returns the age in years at now, and false when no birth date is set
func (p ProfileConfig) Age(now time.Time) (float64, bool) {
	dob, err := time.ParseInLocation(time.DateOnly, p.DateOfBirth, now.Location())
	if err != nil {
		return 0, false
	}
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0, false
	}
	return float64(years), true
}

// LogLevel returns the parsed level, defaulting to info
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || c.Log.Level == "" {
		return zerolog.InfoLevel
	}
	return level
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".longevity"), nil
}
