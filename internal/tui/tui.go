// Package tui is the management view: a terminal UI that lists, imports,
// deletes, rescales and toggles stickers through the daemon.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/animg/internal/ipc"
)

// Daemon is the part of the bridge client the management view uses.
type Daemon interface {
	ListFiles() ([]ipc.FileEntry, error)
	LoadConfig(id string) (*ipc.ConfigData, error)
	Rescale(id string, scale int) error
	ToggleActive(id string, active bool) error
	SelectFile(path string) (*ipc.FileEntry, error)
	DeleteFile(id string) error
	GetStatus() (*ipc.StatusData, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Options configure the management view.
type Options struct {
	// ConfigPath is the config file edited by the Settings tab. Empty uses
	// the default location.
	ConfigPath string
	// Client talks to the daemon. Nil uses the default socket.
	Client Daemon
}

// Run starts the management view and blocks until the user quits.
func Run(opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("settings requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if opts.Client == nil {
		opts.Client = ipc.NewClient()
	}

	p := tea.NewProgram(newModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
