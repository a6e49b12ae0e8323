package mcp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/animg/internal/ipc"
	"github.com/1broseidon/animg/internal/sticker"
)

func stickerFromConfig(entry ipc.FileEntry, cfg *ipc.ConfigData) StickerInfo {
	info := StickerInfo{ID: entry.ID, Name: entry.Name}
	if cfg == nil {
		return info
	}
	if info.Name == "" {
		info.Name = cfg.Name
	}
	info.Active = cfg.Active
	info.Scale = cfg.Scale
	info.Width = cfg.Width
	info.Height = cfg.Height
	info.X = cfg.X
	info.Y = cfg.Y
	return info
}

func requireID(id, tool string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%s: id is required", tool)
	}
	return id, nil
}

func (s *Server) handleListStickers(_ context.Context, _ *mcpsdk.CallToolRequest, args ListStickersInput) (*mcpsdk.CallToolResult, ListStickersOutput, error) {
	files, err := s.client.ListFiles()
	if err != nil {
		return nil, ListStickersOutput{}, fmt.Errorf("list_stickers: %w", err)
	}

	stickers := make([]StickerInfo, 0, len(files))
	for _, f := range files {
		cfg, err := s.client.LoadConfig(f.ID)
		info := stickerFromConfig(f, cfg)
		if err != nil {
			info.ConfigError = err.Error()
		}
		if args.ActiveOnly && !info.Active {
			continue
		}
		stickers = append(stickers, info)
	}
	s.logger.Debug("mcp list_stickers", "count", len(stickers), "active_only", args.ActiveOnly)

	return nil, ListStickersOutput{Stickers: stickers}, nil
}

func (s *Server) handleGetSticker(_ context.Context, _ *mcpsdk.CallToolRequest, args StickerIDInput) (*mcpsdk.CallToolResult, StickerOutput, error) {
	id, err := requireID(args.ID, "get_sticker")
	if err != nil {
		return nil, StickerOutput{}, err
	}
	cfg, err := s.client.LoadConfig(id)
	if err != nil {
		return nil, StickerOutput{}, fmt.Errorf("get_sticker %s: %w", id, err)
	}
	return nil, StickerOutput{Sticker: stickerFromConfig(ipc.FileEntry{ID: id}, cfg)}, nil
}

func (s *Server) handleRescaleSticker(_ context.Context, _ *mcpsdk.CallToolRequest, args RescaleStickerInput) (*mcpsdk.CallToolResult, StickerOutput, error) {
	id, err := requireID(args.ID, "rescale_sticker")
	if err != nil {
		return nil, StickerOutput{}, err
	}
	if err := sticker.ValidateScale(args.Scale, s.maxScale); err != nil {
		return nil, StickerOutput{}, fmt.Errorf("rescale_sticker: %w", err)
	}
	if err := s.client.Rescale(id, args.Scale); err != nil {
		return nil, StickerOutput{}, fmt.Errorf("rescale_sticker %s: %w", id, err)
	}
	s.logger.Info("mcp rescale_sticker", "id", id, "scale", args.Scale)

	cfg, err := s.client.LoadConfig(id)
	if err != nil {
		return nil, StickerOutput{}, fmt.Errorf("rescale_sticker %s: reload: %w", id, err)
	}
	return nil, StickerOutput{Sticker: stickerFromConfig(ipc.FileEntry{ID: id}, cfg)}, nil
}

func (s *Server) handleSetStickerActive(_ context.Context, _ *mcpsdk.CallToolRequest, args SetStickerActiveInput) (*mcpsdk.CallToolResult, StickerOutput, error) {
	id, err := requireID(args.ID, "set_sticker_active")
	if err != nil {
		return nil, StickerOutput{}, err
	}
	if err := s.client.ToggleActive(id, args.Active); err != nil {
		return nil, StickerOutput{}, fmt.Errorf("set_sticker_active %s: %w", id, err)
	}
	s.logger.Info("mcp set_sticker_active", "id", id, "active", args.Active)

	cfg, err := s.client.LoadConfig(id)
	if err != nil {
		return nil, StickerOutput{}, fmt.Errorf("set_sticker_active %s: reload: %w", id, err)
	}
	return nil, StickerOutput{Sticker: stickerFromConfig(ipc.FileEntry{ID: id}, cfg)}, nil
}

func (s *Server) handleImportSticker(_ context.Context, _ *mcpsdk.CallToolRequest, args ImportStickerInput) (*mcpsdk.CallToolResult, StickerOutput, error) {
	path := strings.TrimSpace(args.Path)
	if path == "" {
		return nil, StickerOutput{}, fmt.Errorf("import_sticker: path is required")
	}
	if !filepath.IsAbs(path) {
		return nil, StickerOutput{}, fmt.Errorf("import_sticker: path must be absolute, got %q", path)
	}

	entry, err := s.client.SelectFile(path)
	switch {
	case errors.Is(err, ipc.ErrFileExists):
		return nil, StickerOutput{}, fmt.Errorf("import_sticker: %s already exists in the library", filepath.Base(path))
	case err != nil:
		return nil, StickerOutput{}, fmt.Errorf("import_sticker: %w", err)
	}
	s.logger.Info("mcp import_sticker", "id", entry.ID, "name", entry.Name)

	cfg, err := s.client.LoadConfig(entry.ID)
	if err != nil {
		// The file is imported; report it without its config.
		return nil, StickerOutput{Sticker: StickerInfo{ID: entry.ID, Name: entry.Name, ConfigError: err.Error()}}, nil
	}
	return nil, StickerOutput{Sticker: stickerFromConfig(*entry, cfg)}, nil
}

func (s *Server) handleDeleteSticker(_ context.Context, _ *mcpsdk.CallToolRequest, args StickerIDInput) (*mcpsdk.CallToolResult, DeleteStickerOutput, error) {
	id, err := requireID(args.ID, "delete_sticker")
	if err != nil {
		return nil, DeleteStickerOutput{}, err
	}
	if err := s.client.DeleteFile(id); err != nil {
		return nil, DeleteStickerOutput{}, fmt.Errorf("delete_sticker %s: %w", id, err)
	}
	s.logger.Info("mcp delete_sticker", "id", id)
	return nil, DeleteStickerOutput{ID: id, Deleted: true}, nil
}

func (s *Server) handleDaemonStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: fmt.Sprintf("animg daemon is not reachable: %v", err)},
			},
		}, StatusOutput{Running: false}, nil
	}
	return nil, StatusOutput{
		Running:       status.DaemonRunning,
		FilesDir:      status.FilesDir,
		StoreDriver:   status.StoreDriver,
		FileCount:     status.FileCount,
		ConfigCount:   status.ConfigCount,
		OpenWindows:   status.OpenWindows,
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}
