package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/1broseidon/animg/internal/config"
	"github.com/1broseidon/animg/internal/ipc"
	"github.com/1broseidon/animg/internal/tui"
)

func init() {
	// The tray's native loop must own the main thread.
	runtime.LockOSThread()
}

// configPath is the --config flag shared by every command.
var configPath string

func loadConfig() (*config.LoadResult, error) {
	if configPath == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(configPath)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "animg",
		Short: "Pin images on the desktop as always-on-top stickers",
		Long: `animg keeps a library of images and shows the active ones as frameless,
always-on-top sticker windows. Run 'animg daemon' to start the sticker
windows and use the other commands to manage the library.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: $XDG_CONFIG_HOME/animg/config.yaml)")

	root.AddCommand(
		newDaemonCmd(),
		newSettingsCmd(),
		newListCmd(),
		newShowCmd(),
		newImportCmd(),
		newDeleteCmd(),
		newScaleCmd(),
		newToggleCmd(),
		newStatusCmd(),
		newConfigCmd(),
		newMCPCmd(),
	)
	return root
}

func newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Open the interactive sticker manager",
		Long: `Open the terminal UI to browse, import, delete, rescale and toggle
stickers, and to edit the daemon configuration.

Keybindings:
  space, enter, t  Toggle the selected sticker
  +/-              Scale by 10%
  s                Enter an exact scale
  i                Import a file
  d                Delete the selected sticker
  tab, 1/2         Switch tabs
  ctrl+s           Review and save configuration changes
  q, ctrl+c        Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(tui.Options{ConfigPath: configPath, Client: ipc.NewClient()})
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
