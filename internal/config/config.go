package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/1broseidon/animg/internal/runtimepath"
	"github.com/1broseidon/animg/internal/sticker"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreSQLite = "sqlite"
	StoreDiskv  = "diskv"
)

const (
	DefaultMoveDebounceMS = 3000
	DefaultGithubURL      = "https://github.com/nopalherlangga/animg"
)

// StoreConfig selects the content store backend.
type StoreConfig struct {
	// Driver is "sqlite" (single file) or "diskv" (one file per sticker).
	Driver string `yaml:"driver"`
	// Path overrides the default location under the XDG data dir.
	Path string `yaml:"path,omitempty"`
}

// LogConfig configures daemon logging.
type LogConfig struct {
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// File appends logs to a file instead of stderr
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files"`
}

// Config is the effective daemon configuration.
type Config struct {
	FilesDir string      `yaml:"files_dir,omitempty"`
	Store    StoreConfig `yaml:"store"`

	// MoveDebounceMS delays position writes while a sticker is dragged.
	// 0 writes on every move.
	MoveDebounceMS int `yaml:"move_debounce_ms"`
	DefaultWidth   int `yaml:"default_width"`
	DefaultHeight  int `yaml:"default_height"`
	MaxScale       int `yaml:"max_scale"`

	WatchFiles               bool `yaml:"watch_files"`
	ReconcileIntervalSeconds int  `yaml:"reconcile_interval_seconds"`
	QuitWhenAllClosed        bool `yaml:"quit_when_all_closed"`
	AllDesktops              bool `yaml:"all_desktops"`

	Tray            bool   `yaml:"tray"`
	GithubURL       string `yaml:"github_url"`
	Picker          string `yaml:"picker"`
	SettingsCommand string `yaml:"settings_command,omitempty"`
	SettingsHotkey  string `yaml:"settings_hotkey,omitempty"`
	ToggleAllHotkey string `yaml:"toggle_all_hotkey,omitempty"`

	Display string    `yaml:"display,omitempty"`
	Log     LogConfig `yaml:"log"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: StoreSQLite,
		},
		MoveDebounceMS:    DefaultMoveDebounceMS,
		DefaultWidth:      sticker.DefaultWidth,
		DefaultHeight:     sticker.DefaultHeight,
		MaxScale:          sticker.MaxScale,
		WatchFiles:        true,
		QuitWhenAllClosed: runtime.GOOS != "darwin",
		Tray:              true,
		GithubURL:         DefaultGithubURL,
		Picker:            "auto",
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
	}
}

// MoveDebounce returns the position write delay.
func (c *Config) MoveDebounce() time.Duration {
	return time.Duration(c.MoveDebounceMS) * time.Millisecond
}

// ReconcileInterval returns the periodic reconciliation interval; zero
// disables it.
func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalSeconds) * time.Second
}

// ResolveFilesDir returns the image directory. dev selects ./files unless
// files_dir is set.
func (c *Config) ResolveFilesDir(dev bool) string {
	if dir := strings.TrimSpace(c.FilesDir); dir != "" {
		return expandHome(dir)
	}
	if dev {
		return runtimepath.DevFilesDir()
	}
	return runtimepath.FilesDir()
}

// ResolveStorePath returns the content store location.
func (c *Config) ResolveStorePath() string {
	if p := strings.TrimSpace(c.Store.Path); p != "" {
		return expandHome(p)
	}
	return runtimepath.StorePath(c.Store.Driver)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Save writes c to path.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreSQLite, StoreDiskv:
	default:
		return &ValidationError{Path: "store.driver", Err: fmt.Errorf("store.driver must be one of: sqlite, diskv")}
	}
	if c.MoveDebounceMS < 0 {
		return &ValidationError{Path: "move_debounce_ms", Err: fmt.Errorf("move_debounce_ms must be >= 0")}
	}
	if c.DefaultWidth <= 0 {
		return &ValidationError{Path: "default_width", Err: fmt.Errorf("default_width must be > 0")}
	}
	if c.DefaultHeight <= 0 {
		return &ValidationError{Path: "default_height", Err: fmt.Errorf("default_height must be > 0")}
	}
	if c.MaxScale < 100 {
		return &ValidationError{Path: "max_scale", Err: fmt.Errorf("max_scale must be >= 100")}
	}
	if c.ReconcileIntervalSeconds < 0 {
		return &ValidationError{Path: "reconcile_interval_seconds", Err: fmt.Errorf("reconcile_interval_seconds must be >= 0")}
	}
	switch c.Picker {
	case "auto", "zenity", "kdialog", "yad":
	default:
		return &ValidationError{Path: "picker", Err: fmt.Errorf("picker must be one of: auto, zenity, kdialog, yad")}
	}
	if c.GithubURL != "" {
		u, err := url.Parse(c.GithubURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &ValidationError{Path: "github_url", Err: fmt.Errorf("github_url must be an http(s) URL")}
		}
	}
	if cmd := strings.TrimSpace(c.SettingsCommand); cmd != "" {
		if _, err := splitCommand(cmd); err != nil {
			return &ValidationError{Path: "settings_command", Err: err}
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log.level", Err: fmt.Errorf("log.level must be one of: debug, info, warn, error")}
	}
	if c.Log.MaxSizeMB <= 0 {
		return &ValidationError{Path: "log.max_size_mb", Err: fmt.Errorf("log.max_size_mb must be > 0")}
	}
	if c.Log.MaxFiles <= 0 {
		return &ValidationError{Path: "log.max_files", Err: fmt.Errorf("log.max_files must be > 0")}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}
	return nil
}

func (c *Config) validationWarnings() []string {
	var warnings []string
	if c.SettingsHotkey != "" && c.SettingsHotkey == c.ToggleAllHotkey {
		warnings = append(warnings, fmt.Sprintf("settings_hotkey and toggle_all_hotkey are both %q; only the first binding fires", c.SettingsHotkey))
	}
	if cmd := strings.TrimSpace(c.SettingsCommand); cmd != "" && !strings.Contains(cmd, "{cmd}") {
		warnings = append(warnings, "settings_command has no {cmd} placeholder; the settings command is appended")
	}
	return warnings
}
