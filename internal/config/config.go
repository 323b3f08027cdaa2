// Package config handles process-wide settings via Viper, plus the
// hand-rolled textual DSL spec §6 defines for keybindings and output
// layout (see dsl.go). The two are deliberately separate: Viper covers
// the ambient settings any long-running daemon needs (log level, IPC
// socket path, default backend), the same role internal/config plays in
// the teacher; the bindsym/output/virtual_output grammar is a bespoke
// i3-style config language no structured-format library parses, so it
// is tokenized by hand (see the Layout type's doc in dsl.go for that
// justification).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings is the process-wide configuration, independent of the
// per-session bindsym/output file a user points at with --config.
type Settings struct {
	LogLevel          string `mapstructure:"log_level"`
	IPCSocketPath     string `mapstructure:"ipc_socket_path"`
	TestSocketPath    string `mapstructure:"test_socket_path"`
	DefaultBackend    string `mapstructure:"default_backend"`
	FocusFollowsMouse bool   `mapstructure:"focus_follows_mouse"`
}

// DefaultSettings mirrors the teacher's DefaultConfig pattern: sensible
// values used until Init reads a file, and the floor Unmarshal falls
// back on for any field the file doesn't set.
var DefaultSettings = Settings{
	LogLevel:          "info",
	IPCSocketPath:     defaultSocketPath("stilch.sock"),
	TestSocketPath:    defaultSocketPath("stilch-test.sock"),
	DefaultBackend:    "winit",
	FocusFollowsMouse: false,
}

var settings *Settings

// Init loads process settings from $XDG_CONFIG_HOME/stilch/stilch.toml
// (falling back to ~/.config/stilch), applying DefaultSettings first so
// a missing or partial file never leaves a field unset.
func Init() error {
	viper.SetConfigName("stilch")
	viper.SetConfigType("toml")

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "stilch"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "stilch"))
	}
	viper.AddConfigPath("/etc/stilch")

	viper.SetDefault("log_level", DefaultSettings.LogLevel)
	viper.SetDefault("ipc_socket_path", DefaultSettings.IPCSocketPath)
	viper.SetDefault("test_socket_path", DefaultSettings.TestSocketPath)
	viper.SetDefault("default_backend", DefaultSettings.DefaultBackend)
	viper.SetDefault("focus_follows_mouse", DefaultSettings.FocusFollowsMouse)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	settings = &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return nil
}

// Get returns the current process settings, DefaultSettings if Init
// hasn't run.
func Get() *Settings {
	if settings == nil {
		d := DefaultSettings
		return &d
	}
	return settings
}

func defaultSocketPath(name string) string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(os.TempDir(), name)
}
