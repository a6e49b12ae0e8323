//go:build linux

package platform

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"sync"

	"github.com/1broseidon/animg/internal/probe"
	"github.com/1broseidon/animg/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn        *x11.Connection
	logger      *slog.Logger
	allDesktops bool

	mu     sync.RWMutex
	source ImageSource
}

var _ Native = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, logger *slog.Logger) *LinuxBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinuxBackend{conn: conn, logger: logger}
}

// NewLinuxBackendFromDisplay opens a new X11 connection to display ($DISPLAY
// when empty).
func NewLinuxBackendFromDisplay(display string, logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn, logger), nil
}

// OpenNative connects to display ($DISPLAY when empty).
func OpenNative(display string, logger *slog.Logger) (Native, error) {
	b, err := NewLinuxBackendFromDisplay(display, logger)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// SetImageSource sets where display views fetch their image bytes.
func (b *LinuxBackend) SetImageSource(src ImageSource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.source = src
}

// SetAllDesktops makes new windows appear on every virtual desktop.
func (b *LinuxBackend) SetAllDesktops(on bool) {
	b.allDesktops = on
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops EventLoop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
		})
	}
	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}

// OpenWindow creates a sticker window. Its image is fetched asynchronously
// from the configured ImageSource.
func (b *LinuxBackend) OpenWindow(spec WindowSpec, events WindowEvents) (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	source := b.source
	b.mu.RUnlock()

	var load x11.ImageLoader
	if source != nil {
		key := spec.Key
		load = func(ctx context.Context) (image.Image, error) {
			data, err := source(ctx, key)
			if err != nil {
				return nil, err
			}
			return probe.Decode(data)
		}
	}

	s, err := conn.NewSticker(x11.StickerOptions{
		Title:       spec.Title,
		X:           spec.X,
		Y:           spec.Y,
		Width:       spec.Width,
		Height:      spec.Height,
		Placed:      spec.Placed,
		AllDesktops: b.allDesktops,
	}, x11.StickerEvents{
		Moved:  events.Moved,
		Closed: events.Closed,
	}, load, b.logger.With("sticker", spec.Title))
	if err != nil {
		return nil, err
	}
	return &linuxWindow{s: s}, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

type linuxWindow struct {
	s *x11.Sticker
}

func (w *linuxWindow) Resize(width, height int) error {
	return w.s.Resize(width, height)
}

func (w *linuxWindow) SetVisible(visible bool) error {
	return w.s.SetVisible(visible)
}

func (w *linuxWindow) Close() error {
	return w.s.Close()
}
