package daemon

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/1broseidon/animg/internal/config"
)

// LaunchInTerminal starts args inside the configured terminal emulator and
// returns once the process has started.
func LaunchInTerminal(cfg *config.Config, args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	argv, err := cfg.TerminalCommand(args)
	if err != nil {
		return err
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", argv[0], err)
	}
	logger.Debug("terminal launched", "argv", argv, "pid", cmd.Process.Pid)
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Warn("terminal command failed", "argv", argv, "error", err)
		}
	}()
	return nil
}

// SettingsLauncher returns a callback that opens the management view in a
// terminal. Failures are logged.
func SettingsLauncher(cfg *config.Config, logger *slog.Logger) func() {
	if logger == nil {
		logger = slog.Default()
	}
	return func() {
		exe, err := os.Executable()
		if err != nil {
			logger.Error("settings: failed to find executable", "error", err)
			return
		}
		if err := LaunchInTerminal(cfg, []string{exe, "settings"}, logger); err != nil {
			logger.Error("settings: failed to open", "error", err)
		}
	}
}
