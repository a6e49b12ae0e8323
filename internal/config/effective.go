package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.FilesDir != nil {
		cfg.FilesDir = strings.TrimSpace(*raw.FilesDir)
	}
	if raw.Store != nil {
		if raw.Store.Driver != nil {
			cfg.Store.Driver = strings.ToLower(strings.TrimSpace(*raw.Store.Driver))
		}
		if raw.Store.Path != nil {
			cfg.Store.Path = strings.TrimSpace(*raw.Store.Path)
		}
	}
	cfg.MoveDebounceMS = derefInt(raw.MoveDebounceMS, cfg.MoveDebounceMS)
	cfg.DefaultWidth = derefInt(raw.DefaultWidth, cfg.DefaultWidth)
	cfg.DefaultHeight = derefInt(raw.DefaultHeight, cfg.DefaultHeight)
	cfg.MaxScale = derefInt(raw.MaxScale, cfg.MaxScale)
	cfg.WatchFiles = derefBool(raw.WatchFiles, cfg.WatchFiles)
	cfg.ReconcileIntervalSeconds = derefInt(raw.ReconcileIntervalSeconds, cfg.ReconcileIntervalSeconds)
	cfg.QuitWhenAllClosed = derefBool(raw.QuitWhenAllClosed, cfg.QuitWhenAllClosed)
	cfg.AllDesktops = derefBool(raw.AllDesktops, cfg.AllDesktops)
	cfg.Tray = derefBool(raw.Tray, cfg.Tray)
	if raw.GithubURL != nil {
		cfg.GithubURL = strings.TrimSpace(*raw.GithubURL)
	}
	if raw.Picker != nil {
		cfg.Picker = strings.ToLower(strings.TrimSpace(*raw.Picker))
		if cfg.Picker == "" {
			cfg.Picker = "auto"
		}
	}
	if raw.SettingsCommand != nil {
		cfg.SettingsCommand = strings.TrimSpace(*raw.SettingsCommand)
	}
	if raw.SettingsHotkey != nil {
		cfg.SettingsHotkey = strings.TrimSpace(*raw.SettingsHotkey)
	}
	if raw.ToggleAllHotkey != nil {
		cfg.ToggleAllHotkey = strings.TrimSpace(*raw.ToggleAllHotkey)
	}
	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if raw.Log != nil {
		if raw.Log.Level != nil {
			level := strings.ToLower(strings.TrimSpace(*raw.Log.Level))
			if level == "warning" {
				level = "warn"
			}
			cfg.Log.Level = level
		}
		if raw.Log.File != nil {
			cfg.Log.File = strings.TrimSpace(*raw.Log.File)
		}
		cfg.Log.MaxSizeMB = derefInt(raw.Log.MaxSizeMB, cfg.Log.MaxSizeMB)
		cfg.Log.MaxFiles = derefInt(raw.Log.MaxFiles, cfg.Log.MaxFiles)
	}

	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
