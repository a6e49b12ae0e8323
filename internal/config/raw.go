package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawStoreConfig struct {
	Driver *string `yaml:"driver"`
	Path   *string `yaml:"path"`
}

type RawLogConfig struct {
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

// RawConfig mirrors the YAML file. Nil fields were not set by any file.
type RawConfig struct {
	Include                  IncludeList     `yaml:"include"`
	FilesDir                 *string         `yaml:"files_dir"`
	Store                    *RawStoreConfig `yaml:"store"`
	MoveDebounceMS           *int            `yaml:"move_debounce_ms"`
	DefaultWidth             *int            `yaml:"default_width"`
	DefaultHeight            *int            `yaml:"default_height"`
	MaxScale                 *int            `yaml:"max_scale"`
	WatchFiles               *bool           `yaml:"watch_files"`
	ReconcileIntervalSeconds *int            `yaml:"reconcile_interval_seconds"`
	QuitWhenAllClosed        *bool           `yaml:"quit_when_all_closed"`
	AllDesktops              *bool           `yaml:"all_desktops"`
	Tray                     *bool           `yaml:"tray"`
	GithubURL                *string         `yaml:"github_url"`
	Picker                   *string         `yaml:"picker"`
	SettingsCommand          *string         `yaml:"settings_command"`
	SettingsHotkey           *string         `yaml:"settings_hotkey"`
	ToggleAllHotkey          *string         `yaml:"toggle_all_hotkey"`
	Display                  *string         `yaml:"display"`
	Log                      *RawLogConfig   `yaml:"log"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.FilesDir != nil {
		out.FilesDir = overlay.FilesDir
	}
	if overlay.Store != nil {
		if out.Store == nil {
			out.Store = &RawStoreConfig{}
		} else {
			cp := *out.Store
			out.Store = &cp
		}
		if overlay.Store.Driver != nil {
			out.Store.Driver = overlay.Store.Driver
		}
		if overlay.Store.Path != nil {
			out.Store.Path = overlay.Store.Path
		}
	}
	if overlay.MoveDebounceMS != nil {
		out.MoveDebounceMS = overlay.MoveDebounceMS
	}
	if overlay.DefaultWidth != nil {
		out.DefaultWidth = overlay.DefaultWidth
	}
	if overlay.DefaultHeight != nil {
		out.DefaultHeight = overlay.DefaultHeight
	}
	if overlay.MaxScale != nil {
		out.MaxScale = overlay.MaxScale
	}
	if overlay.WatchFiles != nil {
		out.WatchFiles = overlay.WatchFiles
	}
	if overlay.ReconcileIntervalSeconds != nil {
		out.ReconcileIntervalSeconds = overlay.ReconcileIntervalSeconds
	}
	if overlay.QuitWhenAllClosed != nil {
		out.QuitWhenAllClosed = overlay.QuitWhenAllClosed
	}
	if overlay.AllDesktops != nil {
		out.AllDesktops = overlay.AllDesktops
	}
	if overlay.Tray != nil {
		out.Tray = overlay.Tray
	}
	if overlay.GithubURL != nil {
		out.GithubURL = overlay.GithubURL
	}
	if overlay.Picker != nil {
		out.Picker = overlay.Picker
	}
	if overlay.SettingsCommand != nil {
		out.SettingsCommand = overlay.SettingsCommand
	}
	if overlay.SettingsHotkey != nil {
		out.SettingsHotkey = overlay.SettingsHotkey
	}
	if overlay.ToggleAllHotkey != nil {
		out.ToggleAllHotkey = overlay.ToggleAllHotkey
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.Log != nil {
		if out.Log == nil {
			out.Log = &RawLogConfig{}
		} else {
			cp := *out.Log
			out.Log = &cp
		}
		if overlay.Log.Level != nil {
			out.Log.Level = overlay.Log.Level
		}
		if overlay.Log.File != nil {
			out.Log.File = overlay.Log.File
		}
		if overlay.Log.MaxSizeMB != nil {
			out.Log.MaxSizeMB = overlay.Log.MaxSizeMB
		}
		if overlay.Log.MaxFiles != nil {
			out.Log.MaxFiles = overlay.Log.MaxFiles
		}
	}

	return out
}
