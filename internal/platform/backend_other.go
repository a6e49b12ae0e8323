//go:build !linux

package platform

import (
	"errors"
	"log/slog"
)

// ErrUnsupported is returned on platforms without a display backend.
var ErrUnsupported = errors.New("sticker windows are only supported on Linux/X11")

// OpenNative reports ErrUnsupported.
func OpenNative(display string, logger *slog.Logger) (Native, error) {
	return nil, ErrUnsupported
}
