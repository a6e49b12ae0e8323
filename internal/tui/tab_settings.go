package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/animg/internal/config"
)

// settingsForm holds huh-bound values as strings; they are converted on
// submit.
type settingsForm struct {
	moveDebounce      string
	defaultWidth      string
	defaultHeight     string
	maxScale          string
	picker            string
	settingsCommand   string
	settingsHotkey    string
	toggleAllHotkey   string
	quitWhenAllClosed bool
	allDesktops       bool
	tray              bool
	watchFiles        bool
}

// SettingsTab shows and edits the daemon configuration file.
type SettingsTab struct {
	cfg *config.Config

	width  int
	height int

	editing bool
	form    *huh.Form
	values  *settingsForm
}

// NewSettingsTab creates a SettingsTab from the loaded config.
func NewSettingsTab(cfg *config.Config) SettingsTab {
	return SettingsTab{cfg: cfg}
}

// Init implements tea.Model.
func (s SettingsTab) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (s SettingsTab) Update(msg tea.Msg) (SettingsTab, tea.Cmd) {
	if s.editing {
		return s.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			s.startEditing()
			return s, s.form.Init()
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}
	return s, nil
}

func (s SettingsTab) updateEditing(msg tea.Msg) (SettingsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			s.stopEditing()
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.applyForm()
		s.stopEditing()
		return s, nil
	case huh.StateAborted:
		s.stopEditing()
		return s, nil
	}
	return s, cmd
}

func (s *SettingsTab) stopEditing() {
	s.editing = false
	s.form = nil
	s.values = nil
}

func nonNegativeInt(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number >= 0")
	}
	return nil
}

func positiveInt(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a whole number > 0")
	}
	return nil
}

func (s *SettingsTab) startEditing() {
	cfg := s.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s.values = &settingsForm{
		moveDebounce:      strconv.Itoa(cfg.MoveDebounceMS),
		defaultWidth:      strconv.Itoa(cfg.DefaultWidth),
		defaultHeight:     strconv.Itoa(cfg.DefaultHeight),
		maxScale:          strconv.Itoa(cfg.MaxScale),
		picker:            displayOrDefault(cfg.Picker, "auto"),
		settingsCommand:   cfg.SettingsCommand,
		settingsHotkey:    cfg.SettingsHotkey,
		toggleAllHotkey:   cfg.ToggleAllHotkey,
		quitWhenAllClosed: cfg.QuitWhenAllClosed,
		allDesktops:       cfg.AllDesktops,
		tray:              cfg.Tray,
		watchFiles:        cfg.WatchFiles,
	}
	v := s.values

	pickerOpts := []huh.Option[string]{
		huh.NewOption("auto", "auto"),
		huh.NewOption("zenity", "zenity"),
		huh.NewOption("kdialog", "kdialog"),
		huh.NewOption("yad", "yad"),
	}

	w := s.width - 4
	if w < 40 {
		w = 40
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("move_debounce_ms").
				Title("Move Debounce (ms)").
				Description("Delay before a dragged sticker's position is saved; 0 saves every move").
				Validate(nonNegativeInt).
				Value(&v.moveDebounce),
			huh.NewInput().
				Key("default_width").
				Title("Default Width").
				Description("Used when an image's size cannot be read").
				Validate(positiveInt).
				Value(&v.defaultWidth),
			huh.NewInput().
				Key("default_height").
				Title("Default Height").
				Validate(positiveInt).
				Value(&v.defaultHeight),
			huh.NewInput().
				Key("max_scale").
				Title("Max Scale (%)").
				Validate(positiveInt).
				Value(&v.maxScale),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("picker").
				Title("File Dialog").
				Description("Program used to choose images to import").
				Options(pickerOpts...).
				Value(&v.picker),
			huh.NewInput().
				Key("settings_command").
				Title("Settings Command").
				Description("Terminal template for the tray's Settings item, e.g. kitty -e {cmd}").
				Value(&v.settingsCommand),
			huh.NewInput().
				Key("settings_hotkey").
				Title("Settings Hotkey").
				Description("X11 keybinding, e.g. Mod4-Shift-s").
				Value(&v.settingsHotkey),
			huh.NewInput().
				Key("toggle_all_hotkey").
				Title("Hide/Show All Hotkey").
				Value(&v.toggleAllHotkey),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("quit_when_all_closed").
				Title("Quit when the last sticker is closed").
				Value(&v.quitWhenAllClosed),
			huh.NewConfirm().
				Key("all_desktops").
				Title("Show stickers on every desktop").
				Value(&v.allDesktops),
			huh.NewConfirm().
				Key("tray").
				Title("Show tray icon").
				Value(&v.tray),
			huh.NewConfirm().
				Key("watch_files").
				Title("Watch the sticker folder for changes").
				Value(&v.watchFiles),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	s.editing = true
}

func (s *SettingsTab) applyForm() {
	if s.cfg == nil || s.values == nil {
		return
	}
	v := s.values

	if n, err := strconv.Atoi(strings.TrimSpace(v.moveDebounce)); err == nil && n >= 0 {
		s.cfg.MoveDebounceMS = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.defaultWidth)); err == nil && n > 0 {
		s.cfg.DefaultWidth = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.defaultHeight)); err == nil && n > 0 {
		s.cfg.DefaultHeight = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.maxScale)); err == nil && n > 0 {
		s.cfg.MaxScale = n
	}
	if v.picker != "" {
		s.cfg.Picker = v.picker
	}
	s.cfg.SettingsCommand = strings.TrimSpace(v.settingsCommand)
	s.cfg.SettingsHotkey = strings.TrimSpace(v.settingsHotkey)
	s.cfg.ToggleAllHotkey = strings.TrimSpace(v.toggleAllHotkey)
	s.cfg.QuitWhenAllClosed = v.quitWhenAllClosed
	s.cfg.AllDesktops = v.allDesktops
	s.cfg.Tray = v.tray
	s.cfg.WatchFiles = v.watchFiles
}

// View implements tea.Model.
func (s SettingsTab) View() string {
	if s.editing && s.form != nil {
		return s.viewEditing()
	}
	return s.viewDisplay()
}

func (s SettingsTab) viewDisplay() string {
	cfg := s.cfg
	if cfg == nil {
		return lipgloss.NewStyle().
			Width(s.width).
			Height(s.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(24).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	lines := []string{
		"",
		row("Sticker Folder", displayOrDefault(cfg.FilesDir, "(default)")),
		row("Store", cfg.Store.Driver+" "+displayOrDefault(cfg.Store.Path, "(default path)")),
		"",
		row("Move Debounce", fmt.Sprintf("%d ms", cfg.MoveDebounceMS)),
		row("Default Size", fmt.Sprintf("%dx%d", cfg.DefaultWidth, cfg.DefaultHeight)),
		row("Max Scale", fmt.Sprintf("%d%%", cfg.MaxScale)),
		row("Quit When All Closed", strconv.FormatBool(cfg.QuitWhenAllClosed)),
		row("All Desktops", strconv.FormatBool(cfg.AllDesktops)),
		row("Watch Folder", strconv.FormatBool(cfg.WatchFiles)),
		"",
		row("File Dialog", displayOrDefault(cfg.Picker, "auto")),
		row("Tray", strconv.FormatBool(cfg.Tray)),
		row("Settings Command", displayOrDefault(cfg.SettingsCommand, "(auto)")),
		row("Settings Hotkey", displayOrDefault(cfg.SettingsHotkey, "(none)")),
		row("Hide/Show Hotkey", displayOrDefault(cfg.ToggleAllHotkey, "(none)")),
		row("Log Level", cfg.Log.Level),
		"",
		dimStyle.Render("  Press 'e' to edit, ctrl-s to save. Restart the daemon to apply."),
	}

	return lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (s SettingsTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	return lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2).
		Render(header + "\n\n" + s.form.View())
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
