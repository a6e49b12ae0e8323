package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/animg/internal/config"
	"github.com/1broseidon/animg/internal/ipc"
)

// statusLoadedMsg carries the daemon status; status is nil when the daemon
// is not reachable.
type statusLoadedMsg struct {
	status *ipc.StatusData
}

type statusTickMsg struct{}

const statusInterval = 5 * time.Second

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	configErr  error
	client     Daemon

	activeTab Tab

	stickersTab StickersTab
	settingsTab SettingsTab

	cfg            *config.Config
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	status *ipc.StatusData

	width  int
	height int
}

func newModel(opts Options) model {
	m := model{
		configPath: opts.ConfigPath,
		client:     opts.Client,
		activeTab:  TabStickers,
	}
	if m.configPath == "" {
		if p, err := config.DefaultConfigPath(); err == nil {
			m.configPath = p
		}
	}

	res, err := config.LoadFromPath(m.configPath)
	if err != nil {
		m.configErr = err
		m.cfg = config.DefaultConfig()
	} else {
		m.cfg = res.Config
	}
	m.originalConfig = cloneConfig(m.cfg)

	m.stickersTab = NewStickersTab(m.client, m.cfg.MaxScale)
	m.settingsTab = NewSettingsTab(m.cfg)
	return m
}

func loadStatus(client Daemon) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus()
		if err != nil {
			return statusLoadedMsg{}
		}
		return statusLoadedMsg{status: status}
	}
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// capturing reports whether the active tab owns every key press.
func (m model) capturing() bool {
	switch m.activeTab {
	case TabStickers:
		return m.stickersTab.editing()
	case TabSettings:
		return m.settingsTab.editing
	}
	return false
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.stickersTab.Init(),
		loadStatus(m.client),
		tea.Tick(statusInterval, func(time.Time) tea.Msg { return statusTickMsg{} }),
	)
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusLoadedMsg:
		m.status = msg.status
		return m, nil
	case statusTickMsg:
		return m, tea.Batch(
			loadStatus(m.client),
			tea.Tick(statusInterval, func(time.Time) tea.Msg { return statusTickMsg{} }),
		)
	case stickersLoadedMsg, actionDoneMsg, clearStatusMsg:
		var cmd tea.Cmd
		m.stickersTab, cmd = m.stickersTab.Update(msg)
		if _, ok := msg.(actionDoneMsg); ok {
			cmd = tea.Batch(cmd, loadStatus(m.client))
		}
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.stickersTab, _ = m.stickersTab.Update(subMsg)
		m.settingsTab, _ = m.settingsTab.Update(subMsg)
		return m, nil
	}

	// The save overlay captures all input when active.
	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok {
			if km.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(km, m.cfg, m.configPath)
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.cfg)
			}
		}
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" && !m.stickersTab.editing() {
		m.saveOverlay.Show(m.originalConfig, m.cfg)
		return m, nil
	}

	if m.capturing() {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.delegate(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabStickers
			return m, nil
		case "2":
			m.activeTab = TabSettings
			return m, nil
		}
	}

	return m.delegate(msg)
}

func (m model) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case TabStickers:
		m.stickersTab, cmd = m.stickersTab.Update(msg)
	case TabSettings:
		m.settingsTab, cmd = m.settingsTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch {
	case m.saveOverlay.Active():
		content = m.saveOverlay.View(m.width, contentHeight)
	case m.activeTab == TabSettings && m.configErr != nil && !m.settingsTab.editing:
		content = lipgloss.NewStyle().
			Width(m.width).
			Foreground(lipgloss.Color("196")).
			Padding(1, 2).
			Render("Config error: "+m.configErr.Error()) + "\n" + m.settingsTab.View()
	case m.activeTab == TabSettings:
		content = m.settingsTab.View()
	default:
		content = m.stickersTab.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
