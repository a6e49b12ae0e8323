package mcp

// StickerInfo describes one file in the repository and its stored config.
type StickerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Scale  int    `json:"scale"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	X      *int   `json:"x,omitempty"`
	Y      *int   `json:"y,omitempty"`
	// ConfigError is set when the file is listed but its config could not be read.
	ConfigError string `json:"config_error,omitempty"`
}

// ListStickersInput is the input for the list_stickers tool.
type ListStickersInput struct {
	ActiveOnly bool `json:"active_only,omitempty" jsonschema:"When true, only stickers that are currently pinned are returned"`
}

// ListStickersOutput is the output for the list_stickers tool.
type ListStickersOutput struct {
	Stickers []StickerInfo `json:"stickers"`
}

// StickerIDInput identifies a sticker by its id.
type StickerIDInput struct {
	ID string `json:"id" jsonschema:"required,Sticker id as returned by list_stickers"`
}

// RescaleStickerInput is the input for the rescale_sticker tool.
type RescaleStickerInput struct {
	ID    string `json:"id" jsonschema:"required,Sticker id as returned by list_stickers"`
	Scale int    `json:"scale" jsonschema:"required,New scale in percent of the natural image size (1 to max_scale)"`
}

// SetStickerActiveInput is the input for the set_sticker_active tool.
type SetStickerActiveInput struct {
	ID     string `json:"id" jsonschema:"required,Sticker id as returned by list_stickers"`
	Active bool   `json:"active" jsonschema:"required,True pins the sticker on screen; false closes its window"`
}

// ImportStickerInput is the input for the import_sticker tool.
type ImportStickerInput struct {
	Path string `json:"path" jsonschema:"required,Absolute path of the image file to copy into the sticker library"`
}

// StickerOutput wraps a single sticker.
type StickerOutput struct {
	Sticker StickerInfo `json:"sticker"`
}

// DeleteStickerOutput is the output for the delete_sticker tool.
type DeleteStickerOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// StatusOutput is the output for the daemon_status tool.
type StatusOutput struct {
	Running       bool   `json:"running"`
	FilesDir      string `json:"files_dir,omitempty"`
	StoreDriver   string `json:"store_driver,omitempty"`
	FileCount     int    `json:"file_count"`
	ConfigCount   int    `json:"config_count"`
	OpenWindows   int    `json:"open_windows"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// EmptyInput is used by tools that take no arguments.
type EmptyInput struct{}
