package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Fasting.DefaultTargetHours != 16 {
		t.Errorf("Fasting.DefaultTargetHours = %v, want 16", cfg.Fasting.DefaultTargetHours)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, BackendSQLite)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}

	// Gateway is off by default
	if cfg.UsesGateway() {
		t.Error("default config should not use the gateway")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errContains string
	}{
		{
			name:   "valid local config",
			config: Config{Profile: ProfileConfig{DateOfBirth: "1985-06-15"}, Storage: StorageConfig{Backend: BackendMemory}},
		},
		{
			name:        "bad date of birth",
			config:      Config{Profile: ProfileConfig{DateOfBirth: "15/06/1985"}},
			expectError: true,
			errContains: "date_of_birth",
		},
		{
			name:        "negative fasting target",
			config:      Config{Fasting: FastingConfig{DefaultTargetHours: -4}},
			expectError: true,
			errContains: "default_target_hours",
		},
		{
			name:        "unknown backend",
			config:      Config{Storage: StorageConfig{Backend: "postgres"}},
			expectError: true,
			errContains: "storage.backend",
		},
		{
			name:        "remote backend without url",
			config:      Config{Storage: StorageConfig{Backend: BackendRemote}},
			expectError: true,
			errContains: "base_url",
		},
		{
			name:        "negative gateway timeout",
			config:      Config{Gateway: GatewayConfig{TimeoutSeconds: -1}},
			expectError: true,
			errContains: "timeout_seconds",
		},
		{
			name:        "enabled gateway without url",
			config:      Config{Gateway: GatewayConfig{Enabled: true, Token: "t"}},
			expectError: true,
			errContains: "base_url",
		},
		{
			name: "placeholder client id",
			config: Config{Gateway: GatewayConfig{
				Enabled:  true,
				BaseURL:  "https://tracker.example.com",
				ClientID: "YOUR_CLIENT_ID",
				TokenURL: "https://tracker.example.com/oauth/token",
			}},
			expectError: true,
			errContains: "client_id",
		},
		{
			name: "static token gateway",
			config: Config{Gateway: GatewayConfig{
				Enabled: true,
				BaseURL: "https://tracker.example.com",
				Token:   "abc",
			}},
		},
		{
			name:        "bad log level",
			config:      Config{Log: LogConfig{Level: "loud"}},
			expectError: true,
			errContains: "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadAndSave(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if _, err := Load(); !errors.Is(err, ErrNoConfig) {
		t.Fatalf("Load() error = %v, want ErrNoConfig", err)
	}

	if err := CreateExample(); err != nil {
		t.Fatalf("CreateExample() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".longevity", "config.json")); err != nil {
		t.Fatalf("example config not written: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("example config should validate: %v", err)
	}
	if cfg.Profile.DateOfBirth != "1985-06-15" {
		t.Errorf("Profile.DateOfBirth = %q", cfg.Profile.DateOfBirth)
	}

	// Zero values come back as defaults
	cfg.Fasting.DefaultTargetHours = 0
	cfg.Log.Level = ""
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Fasting.DefaultTargetHours != 16 {
		t.Errorf("Fasting.DefaultTargetHours = %v, want 16", cfg.Fasting.DefaultTargetHours)
	}
	if cfg.LogLevel() != zerolog.InfoLevel {
		t.Errorf("LogLevel() = %v, want info", cfg.LogLevel())
	}

	// CreateExample never overwrites
	cfg.Profile.DateOfBirth = "1990-01-01"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := CreateExample(); err != nil {
		t.Fatalf("CreateExample() error = %v", err)
	}
	cfg, _ = Load()
	if cfg.Profile.DateOfBirth != "1990-01-01" {
		t.Errorf("CreateExample overwrote existing config")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".longevity")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("Load() error = %v, want parse error", err)
	}
}

func TestProfileAge(t *testing.T) {
	now := time.Date(2026, 6, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		dob    string
		want   float64
		wantOK bool
	}{
		{"1985-06-15", 40, true}, // birthday tomorrow
		{"1985-06-14", 41, true},
		{"", 0, false},
		{"2030-01-01", 0, false},
	}

	for _, tt := range tests {
		got, ok := ProfileConfig{DateOfBirth: tt.dob}.Age(now)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Age(%q) = %v, %v; want %v, %v", tt.dob, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGatewayTimeout(t *testing.T) {
	if got := (GatewayConfig{}).Timeout(); got != 0 {
		t.Errorf("unset timeout = %v, want 0", got)
	}
	if got := (GatewayConfig{TimeoutSeconds: 5}).Timeout(); got != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", got)
	}
}
