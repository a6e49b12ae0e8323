package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the per-user directories and the socket.
const AppName = "animg"

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/animg-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/%s-runtime-%d", AppName, uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, AppName+".sock"), nil
}

// DataDir returns $XDG_DATA_HOME/animg.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ConfigDir returns $XDG_CONFIG_HOME/animg.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// FilesDir returns the packaged image repository directory.
func FilesDir() string {
	return filepath.Join(DataDir(), "ImageSaved")
}

// DevFilesDir is the repository used with --dev, relative to the working
// directory.
func DevFilesDir() string {
	return "files"
}

// StorePath returns the default store location for driver. The sqlite store
// is a single file; diskv uses a directory.
func StorePath(driver string) string {
	if driver == "diskv" {
		return filepath.Join(DataDir(), "store")
	}
	return filepath.Join(DataDir(), "store.db")
}

// LogPath returns the default daemon log file.
func LogPath() string {
	return filepath.Join(xdg.StateHome, AppName, "animg.log")
}
