package config

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.MoveDebounce() != 3*time.Second {
		t.Fatalf("expected 3s debounce, got %v", cfg.MoveDebounce())
	}
	if cfg.ReconcileInterval() != 0 {
		t.Fatalf("expected periodic reconcile disabled, got %v", cfg.ReconcileInterval())
	}
	if cfg.Store.Driver != StoreSQLite || !cfg.Tray || !cfg.WatchFiles {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.MaxScale != 1000 || len(res.Files) != 0 {
		t.Fatalf("expected defaults, got %+v files=%v", res.Config, res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.DefaultWidth != 200 || res.Config.DefaultHeight != 200 {
		t.Fatalf("expected 200x200 default size, got %dx%d", res.Config.DefaultWidth, res.Config.DefaultHeight)
	}
}

func TestLoadFromPath_OverridesAndExplain(t *testing.T) {
	data := strings.Join([]string{
		"store:",
		"  driver: DISKV",
		"move_debounce_ms: 0",
		"quit_when_all_closed: false",
		"picker: kdialog",
		"log:",
		"  level: warning",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Store.Driver != StoreDiskv {
		t.Fatalf("expected diskv driver, got %q", cfg.Store.Driver)
	}
	if cfg.MoveDebounce() != 0 {
		t.Fatalf("expected immediate move writes, got %v", cfg.MoveDebounce())
	}
	if cfg.QuitWhenAllClosed {
		t.Fatalf("expected quit_when_all_closed false")
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("expected warning to normalise to warn, got %q", cfg.Log.Level)
	}

	val, src, err := Explain(res, "store.driver")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != StoreDiskv || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("explain store.driver = %#v from %#v", val, src)
	}

	val, src, err = Explain(res, "max_scale")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 1000 || src.Kind != SourceDefault {
		t.Fatalf("explain max_scale = %#v from %#v", val, src)
	}

	if _, _, err := Explain(res, "store.nope"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "tray: true\nmax_scale: 50\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "max_scale" || verr.Source.Line != 2 {
		t.Fatalf("unexpected validation error %#v", verr)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("expected line context, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"driver", func(c *Config) { c.Store.Driver = "bolt" }, "store.driver"},
		{"debounce", func(c *Config) { c.MoveDebounceMS = -1 }, "move_debounce_ms"},
		{"width", func(c *Config) { c.DefaultWidth = 0 }, "default_width"},
		{"height", func(c *Config) { c.DefaultHeight = -3 }, "default_height"},
		{"interval", func(c *Config) { c.ReconcileIntervalSeconds = -1 }, "reconcile_interval_seconds"},
		{"picker", func(c *Config) { c.Picker = "finder" }, "picker"},
		{"github url", func(c *Config) { c.GithubURL = "ftp://example.com" }, "github_url"},
		{"settings command", func(c *Config) { c.SettingsCommand = "kitty 'unterminated" }, "settings_command"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("expected validation error at %s, got %v", tt.path, err)
			}
		})
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, configD, "10-base.yaml", "default_width: 100\nmove_debounce_ms: 10\n")
	writeConfig(t, configD, "20-override.yaml", "default_width: 150\n")

	// Main file overrides includes.
	main := strings.Join([]string{
		"include:",
		"  - config.d",
		"default_width: 175",
		"",
	}, "\n")
	path := writeConfig(t, dir, "config.yaml", main)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.DefaultWidth != 175 {
		t.Fatalf("expected default_width to be 175, got %d", res.Config.DefaultWidth)
	}
	if res.Config.MoveDebounceMS != 10 {
		t.Fatalf("expected include value to survive, got %d", res.Config.MoveDebounceMS)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMergesNestedBlocks(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "store.yaml", "store:\n  driver: diskv\n  path: /tmp/animg-store\n")
	path := writeConfig(t, dir, "config.yaml", "include: store.yaml\nstore:\n  path: /srv/stickers\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Store.Driver != StoreDiskv || res.Config.Store.Path != "/srv/stickers" {
		t.Fatalf("unexpected store config %+v", res.Config.Store)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestResolvePaths(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ResolveFilesDir(true); got != "files" {
		t.Fatalf("dev files dir = %q, want files", got)
	}
	cfg.FilesDir = "/srv/images"
	if got := cfg.ResolveFilesDir(true); got != "/srv/images" {
		t.Fatalf("files_dir should win over dev, got %q", got)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg.Store.Path = "~/stickers.db"
	if got := cfg.ResolveStorePath(); got != filepath.Join(home, "stickers.db") {
		t.Fatalf("store path = %q", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.SettingsHotkey = "Mod4-Shift-s"
	cfg.AllDesktops = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.SettingsHotkey != "Mod4-Shift-s" || !res.Config.AllDesktops {
		t.Fatalf("saved values lost: %+v", res.Config)
	}
}

func stubTerminals(t *testing.T, installed ...string) {
	t.Helper()
	origLookPath := execLookPath
	origSysDetect := detectSystemTerminal
	t.Cleanup(func() {
		execLookPath = origLookPath
		detectSystemTerminal = origSysDetect
	})
	execLookPath = func(file string) (string, error) {
		for _, name := range installed {
			if name == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", exec.ErrNotFound
	}
	detectSystemTerminal = func() string { return "" }
}

func TestTerminalCommand_PriorityOrder(t *testing.T) {
	stubTerminals(t, "kitty", "konsole", "xterm")
	cmd := []string{"/usr/bin/animg", "settings"}

	cfg := DefaultConfig()
	cfg.SettingsCommand = "st -e {cmd}"
	got, err := cfg.TerminalCommand(cmd)
	if err != nil {
		t.Fatalf("terminal command: %v", err)
	}
	if strings.Join(got, " ") != "st -e /usr/bin/animg settings" {
		t.Fatalf("expected settings_command to win, got %q", got)
	}

	cfg.SettingsCommand = ""
	t.Setenv("TERMINAL", "/usr/bin/konsole")
	got, err = cfg.TerminalCommand(cmd)
	if err != nil {
		t.Fatalf("terminal command: %v", err)
	}
	if got[0] != "konsole" {
		t.Fatalf("expected $TERMINAL to win, got %q", got)
	}

	t.Setenv("TERMINAL", "")
	detectSystemTerminal = func() string { return "'xterm'" }
	got, err = cfg.TerminalCommand(cmd)
	if err != nil {
		t.Fatalf("terminal command: %v", err)
	}
	if got[0] != "xterm" {
		t.Fatalf("expected system terminal to win, got %q", got)
	}

	detectSystemTerminal = func() string { return "" }
	got, err = cfg.TerminalCommand(cmd)
	if err != nil {
		t.Fatalf("terminal command: %v", err)
	}
	if got[0] != "kitty" {
		t.Fatalf("expected fallback list to prefer kitty, got %q", got)
	}
}

func TestTerminalCommand_NoneFound(t *testing.T) {
	stubTerminals(t)
	t.Setenv("TERMINAL", "")
	if _, err := DefaultConfig().TerminalCommand([]string{"animg", "settings"}); err == nil {
		t.Fatalf("expected error when no terminal is installed")
	}
}

func TestExpandTemplate(t *testing.T) {
	cmd := []string{"/opt/my apps/animg", "settings"}
	tests := []struct {
		tmpl string
		want []string
	}{
		{"kitty {cmd}", []string{"kitty", "/opt/my apps/animg", "settings"}},
		{"xterm -e", []string{"xterm", "-e", "/opt/my apps/animg", "settings"}},
		{`sh -c "exec {cmd}"`, []string{"sh", "-c", "exec '/opt/my apps/animg' settings"}},
	}
	for _, tt := range tests {
		got, err := expandTemplate(tt.tmpl, cmd)
		if err != nil {
			t.Fatalf("expand %q: %v", tt.tmpl, err)
		}
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Fatalf("expand %q = %q, want %q", tt.tmpl, got, tt.want)
		}
	}
}

func TestLoadFromPath_IncludeGlob(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "b-tray.yaml", "tray: false\n")
	writeConfig(t, dir, "a-width.yaml", "default_width: 120\n")
	writeConfig(t, dir, "notes.txt", "not yaml")
	path := writeConfig(t, dir, "config.yaml", "include: \"*-*.yaml\"\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Tray || res.Config.DefaultWidth != 120 {
		t.Fatalf("glob includes not applied: %+v", res.Config)
	}
	if len(res.Files) != 3 || filepath.Base(res.Files[0]) != "a-width.yaml" {
		t.Fatalf("files = %v, want sorted includes then config.yaml", res.Files)
	}
}

func TestLoadFromPath_ValidationErrorPointsIntoInclude(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "scale.yaml", "\nmax_scale: 5\n")
	path := writeConfig(t, dir, "config.yaml", "include: scale.yaml\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if filepath.Base(verr.Source.File) != "scale.yaml" || verr.Source.Line != 2 {
		t.Fatalf("source = %+v, want scale.yaml line 2", verr.Source)
	}
}

func TestDefaultConfigPath_EnvOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(EnvConfigPath, want)
	got, err := DefaultConfigPath()
	if err != nil || got != want {
		t.Fatalf("DefaultConfigPath = %q, %v; want %q", got, err, want)
	}

	t.Setenv(EnvConfigPath, "")
	got, err = DefaultConfigPath()
	if err != nil || filepath.Base(got) != "config.yaml" {
		t.Fatalf("DefaultConfigPath without override = %q, %v", got, err)
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"kitty  -e {cmd}", []string{"kitty", "-e", "{cmd}"}, false},
		{`sh -c 'echo "hi" there'`, []string{"sh", "-c", `echo "hi" there`}, false},
		{`a "b c"d`, []string{"a", "b cd"}, false},
		{`a\ b`, []string{"a b"}, false},
		{`x 'open`, nil, true},
		{`x \`, nil, true},
	}
	for _, tt := range tests {
		got, err := splitCommand(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("splitCommand(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Fatalf("splitCommand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
