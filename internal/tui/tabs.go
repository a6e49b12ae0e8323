package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/animg/internal/ipc"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabStickers Tab = iota
	TabSettings
	tabCount
)

var tabNames = [tabCount]string{
	TabStickers: "Stickers",
	TabSettings: "Settings",
}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "?"
	}
	return tabNames[t]
}

var (
	barBackground = lipgloss.Color("235")
	dimText       = lipgloss.Color("241")

	tabBase     = lipgloss.NewStyle().Padding(0, 2)
	tabSelected = tabBase.Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))
	tabIdle = tabBase.
		Foreground(lipgloss.Color("250")).
		Background(lipgloss.Color("236"))

	statusOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	statusDown = lipgloss.NewStyle().Foreground(dimText).Render("●")
)

// renderTabBar draws one label per tab, numbered for the 1-2 jump keys.
func renderTabBar(active Tab, width int) string {
	sep := lipgloss.NewStyle().Background(barBackground).Render(" ")
	var row strings.Builder
	for t := Tab(0); t < tabCount; t++ {
		if t > 0 {
			row.WriteString(sep)
		}
		style := tabIdle
		if t == active {
			style = tabSelected
		}
		row.WriteString(style.Render(fmt.Sprintf("%d:%s", int(t)+1, t)))
	}
	return lipgloss.NewStyle().Width(width).MarginBottom(1).Render(row.String())
}

// renderStatusBar summarizes the daemon, or how to start it when it is down.
func renderStatusBar(status *ipc.StatusData, width int) string {
	text := statusDown + " daemon not running (start it with: animg daemon)"
	if status != nil {
		text = fmt.Sprintf("%s daemon connected  files:%d  open:%d  store:%s",
			statusOK, status.FileCount, status.OpenWindows, status.StoreDriver)
	}
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Background(barBackground).
		Foreground(lipgloss.Color("250")).
		Render(text)
}

const helpText = "tab/shift-tab: switch tabs  1-2: jump to tab  ctrl-s: save settings  q/ctrl-c: quit"

func renderHelpBar(width int) string {
	return lipgloss.NewStyle().Width(width).Padding(0, 1).Foreground(dimText).Render(helpText)
}
