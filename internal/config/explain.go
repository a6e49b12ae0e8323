package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths are the top-level keys plus:
//
//	store.driver
//	store.path
//	log.level
//	log.file
//	log.max_size_mb
//	log.max_files
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if len(parts) == 2 {
		switch parts[0] {
		case "store":
			switch parts[1] {
			case "driver":
				return cfg.Store.Driver, nil
			case "path":
				return cfg.Store.Path, nil
			}
		case "log":
			switch parts[1] {
			case "level":
				return cfg.Log.Level, nil
			case "file":
				return cfg.Log.File, nil
			case "max_size_mb":
				return cfg.Log.MaxSizeMB, nil
			case "max_files":
				return cfg.Log.MaxFiles, nil
			}
		}
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	if len(parts) != 1 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	switch path {
	case "files_dir":
		return cfg.FilesDir, nil
	case "store":
		return cfg.Store, nil
	case "move_debounce_ms":
		return cfg.MoveDebounceMS, nil
	case "default_width":
		return cfg.DefaultWidth, nil
	case "default_height":
		return cfg.DefaultHeight, nil
	case "max_scale":
		return cfg.MaxScale, nil
	case "watch_files":
		return cfg.WatchFiles, nil
	case "reconcile_interval_seconds":
		return cfg.ReconcileIntervalSeconds, nil
	case "quit_when_all_closed":
		return cfg.QuitWhenAllClosed, nil
	case "all_desktops":
		return cfg.AllDesktops, nil
	case "tray":
		return cfg.Tray, nil
	case "github_url":
		return cfg.GithubURL, nil
	case "picker":
		return cfg.Picker, nil
	case "settings_command":
		return cfg.SettingsCommand, nil
	case "settings_hotkey":
		return cfg.SettingsHotkey, nil
	case "toggle_all_hotkey":
		return cfg.ToggleAllHotkey, nil
	case "display":
		return cfg.Display, nil
	case "log":
		return cfg.Log, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
