// Package identity maps image file names to the opaque ids used as store keys
// and window correlation ids.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// Size is the length of an id in hex characters.
const Size = sha256.Size * 2

// Hash returns the hex-encoded SHA-256 digest of name.
func Hash(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])
}

// Valid reports whether id has the shape produced by Hash.
func Valid(id string) bool {
	if len(id) != Size {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".jfif": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".avif": "image/avif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// DefaultMimeType is returned for unknown extensions.
const DefaultMimeType = "image/png"

// MimeType returns the mime type for path based on its extension.
func MimeType(path string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return DefaultMimeType
}

// ImageExtensions lists the extensions offered by the open-file dialog.
func ImageExtensions() []string {
	return []string{"jpg", "jpeg", "jfif", "png", "gif", "avif", "svg", "webp", "bmp"}
}
