package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/animg/internal/config"
	"github.com/1broseidon/animg/internal/identity"
	"github.com/1broseidon/animg/internal/ipc"
	"github.com/1broseidon/animg/internal/sticker"
)

type fakeDaemon struct {
	files   []ipc.FileEntry
	configs map[string]sticker.Config

	toggled  map[string]bool
	rescaled map[string]int
	deleted  []string
	selected []string

	selectErr error
	listErr   error
}

func newFakeDaemon(names ...string) *fakeDaemon {
	d := &fakeDaemon{
		configs:  make(map[string]sticker.Config),
		toggled:  make(map[string]bool),
		rescaled: make(map[string]int),
	}
	for _, name := range names {
		id := identity.Hash(name)
		d.files = append(d.files, ipc.FileEntry{ID: id, Name: name})
		d.configs[id] = sticker.New(name).WithDimensions(100, 50)
	}
	return d
}

func (d *fakeDaemon) ListFiles() ([]ipc.FileEntry, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	return d.files, nil
}

func (d *fakeDaemon) LoadConfig(id string) (*ipc.ConfigData, error) {
	cfg, ok := d.configs[id]
	if !ok {
		return nil, errors.New("config not found")
	}
	return &ipc.ConfigData{ID: id, Config: cfg}, nil
}

func (d *fakeDaemon) Rescale(id string, scale int) error {
	d.rescaled[id] = scale
	return nil
}

func (d *fakeDaemon) ToggleActive(id string, active bool) error {
	d.toggled[id] = active
	return nil
}

func (d *fakeDaemon) SelectFile(path string) (*ipc.FileEntry, error) {
	d.selected = append(d.selected, path)
	if d.selectErr != nil {
		return nil, d.selectErr
	}
	name := filepath.Base(path)
	return &ipc.FileEntry{ID: identity.Hash(name), Name: name}, nil
}

func (d *fakeDaemon) DeleteFile(id string) error {
	d.deleted = append(d.deleted, id)
	return nil
}

func (d *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{FileCount: len(d.files), DaemonRunning: true, StoreDriver: "sqlite"}, nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadedTab returns a sized StickersTab populated from d.
func loadedTab(t *testing.T, d *fakeDaemon) StickersTab {
	t.Helper()
	st := NewStickersTab(d, 300)
	st, _ = st.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	st, _ = st.Update(loadStickers(d))
	if len(st.list.Items()) != len(d.files) {
		t.Fatalf("list has %d items, want %d", len(st.list.Items()), len(d.files))
	}
	return st
}

// run executes cmd and returns its message.
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

func TestLoadStickers(t *testing.T) {
	d := newFakeDaemon("a.png", "b.gif")
	d.files = append(d.files, ipc.FileEntry{ID: identity.Hash("c.png"), Name: "c.png"})

	msg := loadStickers(d).(stickersLoadedMsg)
	if msg.err != nil {
		t.Fatalf("err = %v", msg.err)
	}
	if len(msg.items) != 3 {
		t.Fatalf("items = %d", len(msg.items))
	}
	if msg.items[2].err == nil || msg.items[2].cfg.Name != "c.png" {
		t.Fatalf("missing config not reported: %+v", msg.items[2])
	}
	if got := msg.items[0].Description(); got != "100%  100x50" {
		t.Fatalf("Description = %q", got)
	}
	if !strings.HasPrefix(msg.items[0].Title(), "● ") {
		t.Fatalf("active sticker title = %q", msg.items[0].Title())
	}
}

func TestLoadStickers_DaemonDown(t *testing.T) {
	d := newFakeDaemon()
	d.listErr = errors.New("daemon not running")
	msg := loadStickers(d).(stickersLoadedMsg)
	if msg.err == nil {
		t.Fatal("expected error")
	}
}

func TestStickersTab_Toggle(t *testing.T) {
	d := newFakeDaemon("a.png")
	st := loadedTab(t, d)

	_, cmd := st.Update(key(" "))
	msg := run(t, cmd).(actionDoneMsg)
	if msg.err != nil {
		t.Fatalf("toggle: %v", msg.err)
	}
	if active, ok := d.toggled[identity.Hash("a.png")]; !ok || active {
		t.Fatalf("toggled = %v, want a.png hidden", d.toggled)
	}
}

func TestStickersTab_RescaleSteps(t *testing.T) {
	tests := []struct {
		name  string
		scale int
		key   string
		want  int
		calls bool
	}{
		{"up", 100, "+", 110, true},
		{"down", 100, "-", 90, true},
		{"clamped at max", 295, "+", 300, true},
		{"at max", 300, "+", 0, false},
		{"clamped at min", 5, "-", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDaemon("a.png")
			id := identity.Hash("a.png")
			cfg := d.configs[id]
			cfg.Scale = tt.scale
			d.configs[id] = cfg
			st := loadedTab(t, d)

			_, cmd := st.Update(key(tt.key))
			if !tt.calls {
				if cmd != nil {
					t.Fatalf("expected no command at the limit")
				}
				return
			}
			run(t, cmd)
			if got := d.rescaled[id]; got != tt.want {
				t.Fatalf("rescaled to %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStickersTab_ScaleFormSubmit(t *testing.T) {
	d := newFakeDaemon("a.png")
	st := loadedTab(t, d)

	st, _ = st.Update(key("s"))
	if !st.editing() || st.mode != modeScale {
		t.Fatal("scale form not opened")
	}
	st.values.scale = "250"
	st, cmd := st.submitForm()
	if st.editing() {
		t.Fatal("form still open after submit")
	}
	run(t, cmd)
	if got := d.rescaled[identity.Hash("a.png")]; got != 250 {
		t.Fatalf("rescaled to %d, want 250", got)
	}
}

func TestStickersTab_EscClosesForm(t *testing.T) {
	st := loadedTab(t, newFakeDaemon("a.png"))
	st, _ = st.Update(key("d"))
	if st.mode != modeDelete {
		t.Fatal("delete form not opened")
	}
	st, _ = st.Update(key("esc"))
	if st.editing() {
		t.Fatal("esc did not close the form")
	}
}

func TestStickersTab_DeleteRequiresConfirm(t *testing.T) {
	d := newFakeDaemon("a.png")
	st := loadedTab(t, d)

	st, _ = st.Update(key("d"))
	st, cmd := st.submitForm()
	if cmd != nil {
		t.Fatal("unconfirmed delete produced a command")
	}

	st, _ = st.Update(key("d"))
	st.values.confirm = true
	_, cmd = st.submitForm()
	run(t, cmd)
	if len(d.deleted) != 1 || d.deleted[0] != identity.Hash("a.png") {
		t.Fatalf("deleted = %v", d.deleted)
	}
}

func TestImportFile(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantText string
		wantErr  error
	}{
		{"imported", nil, "imported cat.png", nil},
		{"cancelled", ipc.ErrSelectCancelled, "import cancelled", nil},
		{"exists", ipc.ErrFileExists, "", ipc.ErrFileExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDaemon()
			d.selectErr = tt.err
			msg := importFile(d, "/tmp/cat.png").(actionDoneMsg)
			if msg.text != tt.wantText {
				t.Fatalf("text = %q, want %q", msg.text, tt.wantText)
			}
			if !errors.Is(msg.err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", msg.err, tt.wantErr)
			}
		})
	}
}

func TestStickersTab_ImportEmptyPathUsesDialog(t *testing.T) {
	d := newFakeDaemon()
	st := loadedTab(t, d)

	st, _ = st.Update(key("i"))
	st, cmd := st.submitForm()
	run(t, cmd)
	if len(d.selected) != 1 || d.selected[0] != "" {
		t.Fatalf("SelectFile calls = %q, want one empty path", d.selected)
	}
	if st.statusText == "" {
		t.Fatal("no waiting status while the dialog is open")
	}
}

func TestSettingsTab_ApplyForm(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewSettingsTab(cfg)
	s.startEditing()

	s.values.moveDebounce = "0"
	s.values.defaultWidth = "-5"
	s.values.maxScale = "500"
	s.values.picker = "kdialog"
	s.values.settingsHotkey = "  Mod4-s "
	s.values.allDesktops = true
	s.applyForm()

	if cfg.MoveDebounceMS != 0 {
		t.Fatalf("MoveDebounceMS = %d", cfg.MoveDebounceMS)
	}
	if cfg.DefaultWidth != config.DefaultConfig().DefaultWidth {
		t.Fatalf("invalid width applied: %d", cfg.DefaultWidth)
	}
	if cfg.MaxScale != 500 || cfg.Picker != "kdialog" || cfg.SettingsHotkey != "Mod4-s" || !cfg.AllDesktops {
		t.Fatalf("form not applied: %+v", cfg)
	}
}

func TestConfigChanges(t *testing.T) {
	orig := config.DefaultConfig()
	if changes := configChanges(orig, cloneConfig(orig)); changes != nil {
		t.Fatalf("identical configs produced changes: %v", changes)
	}

	changed := cloneConfig(orig)
	changed.MaxScale = 400
	changed.Log.Level = "debug"
	changed.SettingsHotkey = "Mod4-s"
	changes := configChanges(orig, changed)

	want := []configChange{
		{key: "log.level", from: "info", to: "debug"},
		{key: "max_scale", from: "1000", to: "400"},
		{key: "settings_hotkey", from: unsetValue, to: "Mod4-s"},
	}
	if len(changes) != len(want) {
		t.Fatalf("changes = %+v, want %+v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("change %d = %+v, want %+v", i, changes[i], want[i])
		}
	}
	if orig.MaxScale != 1000 {
		t.Fatalf("clone shares state with the original")
	}
}

func TestSaveOverlay_NoChanges(t *testing.T) {
	var s SaveOverlay
	cfg := config.DefaultConfig()
	s.Show(cfg, cloneConfig(cfg))
	if !s.Active() || s.SaveSucceeded() || s.err == nil {
		t.Fatalf("expected a no-changes notice, got phase=%v err=%v", s.phase, s.err)
	}
	s = s.Update(key("x"), cfg, "")
	if s.Active() {
		t.Fatal("notice not dismissed by a key press")
	}
}

func TestModel_SaveWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := newModel(Options{ConfigPath: path, Client: newFakeDaemon()})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(model)

	m.cfg.MaxScale = 400
	next, _ = m.Update(key("ctrl+s"))
	m = next.(model)
	if !m.saveOverlay.Active() {
		t.Fatal("save overlay not shown")
	}
	next, _ = m.Update(key("y"))
	m = next.(model)
	if !m.saveOverlay.SaveSucceeded() {
		t.Fatalf("save failed: %v", m.saveOverlay.err)
	}

	res, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if res.Config.MaxScale != 400 {
		t.Fatalf("saved max_scale = %d", res.Config.MaxScale)
	}
}

func TestModel_TabSwitching(t *testing.T) {
	m := newModel(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"), Client: newFakeDaemon()})
	next, _ := m.Update(key("2"))
	if next.(model).activeTab != TabSettings {
		t.Fatal("2 did not switch to settings")
	}
	next, _ = next.(model).Update(tea.KeyMsg{Type: tea.KeyTab})
	if next.(model).activeTab != TabStickers {
		t.Fatal("tab did not wrap to stickers")
	}
}

func TestModel_StatusBar(t *testing.T) {
	d := newFakeDaemon("a.png")
	m := newModel(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"), Client: d})
	msg := loadStatus(d)()
	next, _ := m.Update(msg)
	m = next.(model)
	if m.status == nil || m.status.FileCount != 1 {
		t.Fatalf("status = %+v", m.status)
	}
	if !strings.Contains(renderStatusBar(m.status, 80), "files:1") {
		t.Fatal("status bar missing file count")
	}
	if !strings.Contains(renderStatusBar(nil, 80), "not running") {
		t.Fatal("status bar missing offline notice")
	}
}
