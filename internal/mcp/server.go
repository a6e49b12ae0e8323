package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/animg/internal/ipc"
)

const (
	ServerName    = "animg"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the daemon client the tools call. *ipc.Client
// satisfies it.
type Daemon interface {
	ListFiles() ([]ipc.FileEntry, error)
	LoadConfig(id string) (*ipc.ConfigData, error)
	Rescale(id string, scale int) error
	ToggleActive(id string, active bool) error
	SelectFile(path string) (*ipc.FileEntry, error)
	DeleteFile(id string) error
	GetStatus() (*ipc.StatusData, error)
}

// Server is the MCP server exposing sticker management tools.
type Server struct {
	mcpServer *mcpsdk.Server
	client    Daemon
	maxScale  int
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards every tool call to the daemon.
func NewServer(client Daemon, maxScale int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		client:   client,
		maxScale: maxScale,
		logger:   logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_stickers",
		Description: "List every image in the sticker library with its stored config (active flag, scale, size and position).",
	}, s.handleListStickers)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_sticker",
		Description: "Return the stored config of one sticker by id.",
	}, s.handleGetSticker)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "rescale_sticker",
		Description: "Set the scale of a sticker in percent of its natural size. An open window is resized immediately and the value is persisted.",
	}, s.handleRescaleSticker)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_sticker_active",
		Description: "Pin a sticker on screen (active=true) or close its window (active=false). The flag is persisted across restarts.",
	}, s.handleSetStickerActive)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "import_sticker",
		Description: "Copy an image file into the sticker library and pin it. Fails when a file with the same name already exists.",
	}, s.handleImportSticker)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "delete_sticker",
		Description: "Close a sticker's window and remove its file and stored config from the library.",
	}, s.handleDeleteSticker)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "daemon_status",
		Description: "Report whether the animg daemon is running, with file, config and open window counts.",
	}, s.handleDaemonStatus)
}
