package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/animg/internal/ipc"
	"github.com/1broseidon/animg/internal/logging"
	"github.com/1broseidon/animg/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol integration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdio. Designed to be invoked by MCP clients.
Every tool forwards to the running daemon.

Example:
  claude mcp add animg -- animg mcp serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig()
			if err != nil {
				return err
			}
			cfg := res.Config

			// Stdout carries the protocol; logs go to stderr or the log file.
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

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := mcp.NewServer(ipc.NewClient(), cfg.MaxScale, logger)
			return server.Run(ctx)
		},
	})
	return cmd
}
