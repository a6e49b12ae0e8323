// Package controller serves the Messaging Bridge requests of the management
// and display views.
package controller

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/animg/internal/identity"
	"github.com/1broseidon/animg/internal/ipc"
	"github.com/1broseidon/animg/internal/picker"
	"github.com/1broseidon/animg/internal/repository"
	"github.com/1broseidon/animg/internal/sticker"
	"github.com/1broseidon/animg/internal/store"
)

// Executor runs fn on the event loop that owns the window manager.
type Executor interface {
	Do(ctx context.Context, fn func() error) error
}

// Windows is the window manager surface the controller drives.
type Windows interface {
	Ensure(name string) (string, error)
	Rescale(key string, scale int) error
	SetActive(key string, active bool) error
	Discard(key string)
	OpenCount() int
}

// Configs is the content store surface the controller reads and prunes.
type Configs interface {
	Get(key string) (sticker.Config, error)
	Delete(key string) error
	Keys(ctx context.Context) ([]string, error)
	Driver() string
}

// Options wires a Controller.
type Options struct {
	Loop      Executor
	Store     Configs
	StorePath string
	Files     *repository.Repository
	Windows   Windows
	// Picker opens the native dialog for select-file without a path. Nil
	// disables the dialog.
	Picker picker.Picker
	Logger *slog.Logger
}

// Controller implements ipc.Handler.
type Controller struct {
	loop      Executor
	store     Configs
	storePath string
	files     *repository.Repository
	windows   Windows
	picker    picker.Picker
	logger    *slog.Logger
	started   time.Time
}

var _ ipc.Handler = (*Controller)(nil)

// New creates a controller.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		loop:      opts.Loop,
		store:     opts.Store,
		storePath: opts.StorePath,
		files:     opts.Files,
		windows:   opts.Windows,
		picker:    opts.Picker,
		logger:    logger,
		started:   time.Now(),
	}
}

// ListFiles returns every visible repository file with its key.
func (c *Controller) ListFiles(ctx context.Context) ([]ipc.FileEntry, error) {
	names, err := c.files.List()
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	entries := make([]ipc.FileEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, ipc.FileEntry{ID: identity.Hash(name), Name: name})
	}
	return entries, nil
}

// LoadConfig returns the stored config for id.
func (c *Controller) LoadConfig(ctx context.Context, id string) (ipc.ConfigData, error) {
	var cfg sticker.Config
	err := c.loop.Do(ctx, func() error {
		var err error
		cfg, err = c.store.Get(id)
		return err
	})
	if err != nil {
		return ipc.ConfigData{}, fmt.Errorf("load config %s: %w", id, err)
	}
	return ipc.ConfigData{ID: id, Config: cfg}, nil
}

// RequestImage returns the image for id as a base64 data URI.
func (c *Controller) RequestImage(ctx context.Context, id string) (ipc.ImageData, error) {
	var name string
	err := c.loop.Do(ctx, func() error {
		cfg, err := c.store.Get(id)
		if err != nil {
			return err
		}
		name = cfg.Name
		return nil
	})
	if err != nil {
		return ipc.ImageData{}, fmt.Errorf("resolve image %s: %w", id, err)
	}

	data, err := c.files.Read(name)
	if err != nil {
		return ipc.ImageData{}, fmt.Errorf("read image %s: %w", name, err)
	}
	mime := identity.MimeType(name)
	return ipc.ImageData{
		Type:     "base64",
		Data:     "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
		MimeType: mime,
	}, nil
}

// DecodeImage extracts the raw bytes from an ImageData data URI.
func DecodeImage(img ipc.ImageData) ([]byte, error) {
	data := img.Data
	if _, payload, ok := strings.Cut(data, ";base64,"); ok {
		data = payload
	}
	out, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}
	return out, nil
}

// SelectFile imports path, or a file chosen in the native dialog when path
// is empty.
func (c *Controller) SelectFile(ctx context.Context, path string) (ipc.FileEntry, error) {
	if path == "" {
		if c.picker == nil {
			return ipc.FileEntry{}, errors.New("no file dialog available")
		}
		chosen, err := c.picker.Pick(ctx, "Select an image", identity.ImageExtensions())
		if errors.Is(err, picker.ErrCancelled) {
			return ipc.FileEntry{}, ipc.ErrSelectCancelled
		}
		if err != nil {
			return ipc.FileEntry{}, err
		}
		path = chosen
	}
	return c.ImportFile(ctx, path)
}

// ImportFile copies path into the repository and shows it.
func (c *Controller) ImportFile(ctx context.Context, path string) (ipc.FileEntry, error) {
	name, err := c.files.Import(path)
	if errors.Is(err, repository.ErrExists) {
		return ipc.FileEntry{}, ipc.ErrFileExists
	}
	if err != nil {
		return ipc.FileEntry{}, err
	}
	c.logger.Info("file imported", "name", name, "source", path)

	var key string
	err = c.loop.Do(ctx, func() error {
		var err error
		key, err = c.windows.Ensure(name)
		return err
	})
	if err != nil {
		return ipc.FileEntry{}, fmt.Errorf("register %s: %w", name, err)
	}
	return ipc.FileEntry{ID: key, Name: name}, nil
}

// DeleteFile removes the file and config for id. An unknown id is a no-op.
func (c *Controller) DeleteFile(ctx context.Context, id string) error {
	return c.loop.Do(ctx, func() error {
		cfg, err := c.store.Get(id)
		if errors.Is(err, store.ErrNotFound) {
			c.windows.Discard(id)
			return nil
		}
		if err != nil {
			return err
		}
		if err := c.files.Remove(cfg.Name); err != nil {
			return err
		}
		if err := c.store.Delete(id); err != nil {
			return fmt.Errorf("delete config %s: %w", id, err)
		}
		c.windows.Discard(id)
		c.logger.Info("file deleted", "name", cfg.Name)
		return nil
	})
}

// Rescale changes the scale of id.
func (c *Controller) Rescale(ctx context.Context, id string, scale int) error {
	return c.loop.Do(ctx, func() error {
		return c.windows.Rescale(id, scale)
	})
}

// ToggleActive shows or hides the window for id.
func (c *Controller) ToggleActive(ctx context.Context, id string, active bool) error {
	return c.loop.Do(ctx, func() error {
		return c.windows.SetActive(id, active)
	})
}

// Status reports daemon state.
func (c *Controller) Status(ctx context.Context) (ipc.StatusData, error) {
	names, err := c.files.List()
	if err != nil {
		return ipc.StatusData{}, fmt.Errorf("list files: %w", err)
	}
	keys, err := c.store.Keys(ctx)
	if err != nil {
		return ipc.StatusData{}, fmt.Errorf("list configs: %w", err)
	}

	var open int
	if err := c.loop.Do(ctx, func() error {
		open = c.windows.OpenCount()
		return nil
	}); err != nil {
		return ipc.StatusData{}, err
	}

	return ipc.StatusData{
		FilesDir:      c.files.Dir(),
		StoreDriver:   c.store.Driver(),
		StorePath:     c.storePath,
		FileCount:     len(names),
		ConfigCount:   len(keys),
		OpenWindows:   open,
		UptimeSeconds: int64(time.Since(c.started).Seconds()),
		DaemonRunning: true,
	}, nil
}
