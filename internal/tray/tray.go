// Package tray shows the status icon and its menu.
package tray

import (
	"log/slog"
	"strings"

	"github.com/getlantern/systray"
	"github.com/pkg/browser"
)

// Options configure the tray menu.
type Options struct {
	Title     string
	Tooltip   string
	GithubURL string
	// OnSettings opens the management view.
	OnSettings func()
	// OnQuit runs when "Close App" is chosen, before the tray exits.
	OnQuit func()
	// OnReady runs once the menu is shown. Quit is safe to call from then on.
	OnReady func()
	// OpenURL replaces browser.OpenURL in tests.
	OpenURL func(url string) error
	Logger  *slog.Logger
}

type action int

const (
	actionSettings action = iota
	actionGithub
	actionQuit
)

// Tray owns the menu callbacks.
type Tray struct {
	opts   Options
	logger *slog.Logger
}

// New creates a tray. Call Run to show it.
func New(opts Options) *Tray {
	if opts.Title == "" {
		opts.Title = "animg"
	}
	if opts.Tooltip == "" {
		opts.Tooltip = "animg stickers"
	}
	if opts.OpenURL == nil {
		opts.OpenURL = browser.OpenURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{opts: opts, logger: logger}
}

// Run shows the icon and blocks until Quit is called. It must run on the
// main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {
		t.logger.Info("tray exited")
	})
}

// Quit removes the icon and makes Run return.
func Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetIcon(Icon())
	systray.SetTitle(t.opts.Title)
	systray.SetTooltip(t.opts.Tooltip)

	settings := systray.AddMenuItem("Settings", "Open the sticker settings")
	github := systray.AddMenuItem("GitHub", "Open the project page")
	systray.AddSeparator()
	closeApp := systray.AddMenuItem("Close App", "Close every sticker and quit")

	go func() {
		for {
			var a action
			select {
			case <-settings.ClickedCh:
				a = actionSettings
			case <-github.ClickedCh:
				a = actionGithub
			case <-closeApp.ClickedCh:
				a = actionQuit
			}
			if t.handle(a) {
				systray.Quit()
				return
			}
		}
	}()

	if t.opts.OnReady != nil {
		t.opts.OnReady()
	}
}

// handle runs a menu action and reports whether the tray should exit.
func (t *Tray) handle(a action) bool {
	switch a {
	case actionSettings:
		if t.opts.OnSettings != nil {
			t.opts.OnSettings()
		}
	case actionGithub:
		url := strings.TrimSpace(t.opts.GithubURL)
		if url == "" {
			return false
		}
		if err := t.opts.OpenURL(url); err != nil {
			t.logger.Warn("failed to open project page", "url", url, "error", err)
		}
	case actionQuit:
		if t.opts.OnQuit != nil {
			t.opts.OnQuit()
		}
		return true
	}
	return false
}
