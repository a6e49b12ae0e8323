package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/animg/internal/ipc"
)

// daemonClient is the part of the bridge client the commands use.
type daemonClient interface {
	ListFiles() ([]ipc.FileEntry, error)
	LoadConfig(id string) (*ipc.ConfigData, error)
	Rescale(id string, scale int) error
	ToggleActive(id string, active bool) error
	SelectFile(path string) (*ipc.FileEntry, error)
	DeleteFile(id string) error
	GetStatus() (*ipc.StatusData, error)
}

// newClient is replaced in tests.
var newClient = func() daemonClient { return ipc.NewClient() }

type stickerJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Scale  int    `json:"scale"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	X      *int   `json:"x,omitempty"`
	Y      *int   `json:"y,omitempty"`
	Error  string `json:"error,omitempty"`
}

func collectStickers(client daemonClient) ([]stickerJSON, error) {
	files, err := client.ListFiles()
	if err != nil {
		return nil, err
	}
	out := make([]stickerJSON, 0, len(files))
	for _, f := range files {
		entry := stickerJSON{ID: f.ID, Name: f.Name}
		cfg, err := client.LoadConfig(f.ID)
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Active = cfg.Active
			entry.Scale = cfg.Scale
			entry.Width = cfg.Width
			entry.Height = cfg.Height
			entry.X = cfg.X
			entry.Y = cfg.Y
		}
		out = append(out, entry)
	}
	return out, nil
}

func formatPosition(x, y *int) string {
	if x == nil || y == nil {
		return "-"
	}
	return fmt.Sprintf("%d,%d", *x, *y)
}

func printStickers(w io.Writer, stickers []stickerJSON, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stickers)
	}
	if len(stickers) == 0 {
		fmt.Fprintln(w, "No stickers. Import one with 'animg import <path>'.")
		return nil
	}
	for _, s := range stickers {
		if s.Error != "" {
			fmt.Fprintf(w, "%-16s  %-24s  error: %s\n", s.ID, s.Name, s.Error)
			continue
		}
		state := "off"
		if s.Active {
			state = "on"
		}
		fmt.Fprintf(w, "%-16s  %-24s  %-3s  %4d%%  %dx%d  %s\n",
			s.ID, s.Name, state, s.Scale, s.Width, s.Height, formatPosition(s.X, s.Y))
	}
	return nil
}

func newListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stickers in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stickers, err := collectStickers(newClient())
			if err != nil {
				return err
			}
			return printStickers(cmd.OutOrStdout(), stickers, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the stored config of a sticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := newClient().LoadConfig(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [path]",
		Short: "Copy an image into the library and pin it",
		Long: `Copy an image into the library and pin it. Without a path the daemon
opens its native file dialog.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				abs, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				path = abs
			}
			return runImport(cmd.OutOrStdout(), newClient(), path)
		},
	}
}

func runImport(w io.Writer, client daemonClient, path string) error {
	entry, err := client.SelectFile(path)
	switch {
	case errors.Is(err, ipc.ErrSelectCancelled):
		fmt.Fprintln(w, "Import cancelled.")
		return nil
	case errors.Is(err, ipc.ErrFileExists):
		return fmt.Errorf("%s is already in the library", filepath.Base(path))
	case err != nil:
		return err
	}
	fmt.Fprintf(w, "Imported %s (%s)\n", entry.Name, entry.ID)
	return nil
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Close a sticker and remove it from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteFile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newScaleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scale <id> <percent>",
		Short: "Set a sticker's scale in percent of its natural size",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scale, err := parsePercent(args[1])
			if err != nil {
				return err
			}
			return newClient().Rescale(args[0], scale)
		},
	}
}

// parsePercent accepts "150" or "150%".
func parsePercent(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid scale %q: expected a positive percentage", s)
	}
	return v, nil
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "toggle <id> on|off",
		Short:     "Pin or unpin a sticker",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := parseOnOff(args[1])
			if err != nil {
				return err
			}
			return newClient().ToggleActive(args[0], active)
		},
	}
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid state %q: expected on or off", s)
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := newClient().GetStatus()
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func printStatus(w io.Writer, status *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running: %v\n", status.DaemonRunning)
	fmt.Fprintf(w, "files_dir:      %s\n", status.FilesDir)
	fmt.Fprintf(w, "store:          %s (%s)\n", status.StoreDriver, status.StorePath)
	fmt.Fprintf(w, "file_count:     %d\n", status.FileCount)
	fmt.Fprintf(w, "config_count:   %d\n", status.ConfigCount)
	fmt.Fprintf(w, "open_windows:   %d\n", status.OpenWindows)
	fmt.Fprintf(w, "uptime_seconds: %d\n", status.UptimeSeconds)
}
