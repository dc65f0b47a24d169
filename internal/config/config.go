// Package config implements SPEC_FULL.md §2.1's daemon-level
// operational configuration: TOML, loaded/saved the way palaver's own
// internal/config does it (a Default() constructor, Load that falls
// back to defaults when the file is absent, Save that writes
// atomically via a temp file + Sync + os.Rename).
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// RetryConfig tunes the injector's device-grab retry budget
// (spec.md §4.I / §5), operator-adjustable instead of compiled-in.
type RetryConfig struct {
	GrabAttempts     int     `toml:"grab_attempts"`
	GrabIntervalMs   int     `toml:"grab_interval_ms"`
	StopGracePeriodS float64 `toml:"stop_grace_period_s"`
}

// Config is the daemon's top-level configuration.
type Config struct {
	SocketPath      string      `toml:"socket_path"`
	ConfigDir       string      `toml:"config_dir"` // presets + autoload.json live here
	SymbolTablePath string      `toml:"symbol_table_path"`
	LogLevel        string      `toml:"log_level"` // "info" or "debug"
	LogPath         string      `toml:"log_path"`  // empty means stderr
	Retry           RetryConfig `toml:"retry"`
}

// Default returns a Config populated with all default values.
func Default() *Config {
	return &Config{
		SocketPath:      DefaultSocketPath(),
		ConfigDir:       DefaultConfigDir(),
		SymbolTablePath: filepath.Join(DefaultConfigDir(), "symbols.json"),
		LogLevel:        "info",
		LogPath:         "",
		Retry: RetryConfig{
			GrabAttempts:     10,
			GrabIntervalMs:   200,
			StopGracePeriodS: 5,
		},
	}
}

// DefaultPath returns the default config file path
// (~/.config/input-remapper/config.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "input-remapper", "config.toml")
}

// DefaultConfigDir returns the default directory presets and the
// autoload file live in (~/.config/input-remapper).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "input-remapper")
}

// DefaultSocketPath returns the default control socket path
// (~/.local/share/input-remapper/control.sock, the XDG runtime-ish
// convention palaver's DefaultDataDir follows for its own data dir).
func DefaultSocketPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "input-remapper", "control.sock")
}

// Save writes the config as TOML to the given path, creating parent
// directories if needed. The write is atomic: data is written to a
// temporary file and renamed into place so a crash mid-write cannot
// corrupt the existing config.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".inputremapperd-config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads the TOML config from path. If the file does not exist,
// it returns the default config without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	_, err = toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
