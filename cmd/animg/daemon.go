package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/animg/internal/config"
	"github.com/1broseidon/animg/internal/daemon"
	"github.com/1broseidon/animg/internal/ipc"
	"github.com/1broseidon/animg/internal/logging"
	"github.com/1broseidon/animg/internal/picker"
	"github.com/1broseidon/animg/internal/platform"
	"github.com/1broseidon/animg/internal/tray"
)

func newDaemonCmd() *cobra.Command {
	var dev bool
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Start the sticker daemon (foreground)",
		Long: `Start the daemon: open a window for every active sticker, serve the
control socket and show the tray icon. Only one daemon runs per user;
a second instance exits with an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(dev)
		},
	}
	cmd.Flags().BoolVar(&dev, "dev", false, "Use ./files as the image library unless files_dir is set")
	return cmd
}

func runDaemon(dev bool) error {
	res, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg := res.Config

	logger, closer, err := logging.New(logging.Options{
		Level:     cfg.Log.Level,
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
		MaxFiles:  cfg.Log.MaxFiles,
	})
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "files", res.Files, "store", cfg.Store.Driver, "tray", cfg.Tray)

	backend, err := platform.OpenNative(cfg.Display, logger)
	if err != nil {
		return fmt.Errorf("connect to display: %w", err)
	}

	var dialog picker.Picker
	if p, err := picker.New(cfg.Picker); err != nil {
		logger.Warn("file dialog unavailable; importing requires a path", "error", err)
	} else {
		dialog = p
	}

	app, err := daemon.New(daemon.Options{
		Config:     cfg,
		Dev:        dev,
		Backend:    backend,
		Picker:     dialog,
		OnSettings: daemon.SettingsLauncher(cfg, logger),
		Logger:     logger,
	})
	if err != nil {
		backend.Disconnect()
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Tray {
		return daemonResult(app.Run(ctx))
	}
	return runWithTray(ctx, app, cfg, logger)
}

// runWithTray keeps the tray on the main thread and the daemon on a
// goroutine. Whichever finishes first stops the other.
func runWithTray(ctx context.Context, app *daemon.App, cfg *config.Config, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	started := make(chan struct{})
	t := tray.New(tray.Options{
		GithubURL:  cfg.GithubURL,
		OnSettings: daemon.SettingsLauncher(cfg, logger),
		OnQuit:     app.Quit,
		OnReady: func() {
			close(started)
			go func() {
				errCh <- app.Run(ctx)
				tray.Quit()
			}()
		},
		Logger: logger,
	})
	t.Run()

	select {
	case <-started:
	default:
		logger.Warn("tray exited before it was shown; running without it")
		return daemonResult(app.Run(ctx))
	}
	app.Quit()
	return daemonResult(<-errCh)
}

func daemonResult(err error) error {
	if errors.Is(err, ipc.ErrDaemonRunning) {
		return fmt.Errorf("%w (use 'animg status' to inspect it)", err)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
