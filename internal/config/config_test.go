package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %s", cfg.LogLevel)
	}
	if cfg.Retry.GrabAttempts != 10 {
		t.Errorf("expected 10 grab attempts, got %d", cfg.Retry.GrabAttempts)
	}
	if cfg.Retry.GrabIntervalMs != 200 {
		t.Errorf("expected 200ms grab interval, got %d", cfg.Retry.GrabIntervalMs)
	}
	if cfg.Retry.StopGracePeriodS != 5 {
		t.Errorf("expected 5s stop grace period, got %v", cfg.Retry.StopGracePeriodS)
	}
	if cfg.SocketPath == "" {
		t.Error("expected a non-empty default socket path")
	}
	if cfg.ConfigDir == "" {
		t.Error("expected a non-empty default config dir")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level, got %s", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
socket_path = "/run/input-remapper/control.sock"
config_dir = "/etc/input-remapper"
symbol_table_path = "/etc/input-remapper/symbols.json"
log_level = "debug"
log_path = "/var/log/input-remapper.log"

[retry]
grab_attempts = 5
grab_interval_ms = 100
stop_grace_period_s = 2.5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SocketPath != "/run/input-remapper/control.sock" {
		t.Errorf("expected overridden socket path, got %s", cfg.SocketPath)
	}
	if cfg.ConfigDir != "/etc/input-remapper" {
		t.Errorf("expected overridden config dir, got %s", cfg.ConfigDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.LogLevel)
	}
	if cfg.Retry.GrabAttempts != 5 {
		t.Errorf("expected 5 grab attempts, got %d", cfg.Retry.GrabAttempts)
	}
	if cfg.Retry.StopGracePeriodS != 2.5 {
		t.Errorf("expected 2.5s grace period, got %v", cfg.Retry.StopGracePeriodS)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.LogLevel = "debug"
	cfg.Retry.GrabAttempts = 20

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}

	if loaded.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", loaded.LogLevel)
	}
	if loaded.Retry.GrabAttempts != 20 {
		t.Errorf("expected 20 grab attempts, got %d", loaded.Retry.GrabAttempts)
	}
	if loaded.Retry.GrabIntervalMs != 200 {
		t.Errorf("expected default grab interval preserved, got %d", loaded.Retry.GrabIntervalMs)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dir", "config.toml")

	cfg := Default()
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed to create nested dirs: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist at %s: %v", path, err)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
log_level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug, got %s", cfg.LogLevel)
	}
	// Non-overridden values should remain defaults
	if cfg.Retry.GrabAttempts != 10 {
		t.Errorf("expected default grab attempts 10, got %d", cfg.Retry.GrabAttempts)
	}
}
