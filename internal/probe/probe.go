// Package probe reads image dimensions without decoding pixel data.
package probe

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnknownFormat is returned when no decoder recognises the file.
var ErrUnknownFormat = errors.New("probe: unknown image format")

// Dimensions are base pixel dimensions.
type Dimensions struct {
	Width  int
	Height int
}

// File returns the pixel dimensions of the image at path.
func File(path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return svgSize(f)
	case ".ico":
		return icoSize(f)
	}
	return Reader(f)
}

// Reader probes a raster image stream with the registered decoders.
func Reader(r io.Reader) (Dimensions, error) {
	br := bufio.NewReader(r)
	cfg, _, err := image.DecodeConfig(br)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Dimensions{}, ErrUnknownFormat
		}
		return Dimensions{}, fmt.Errorf("probe: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Dimensions{}, fmt.Errorf("probe: invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// icoSize reads the first directory entry of an ICO file. A stored size of 0
// means 256.
func icoSize(r io.Reader) (Dimensions, error) {
	var hdr [6 + 16]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Dimensions{}, fmt.Errorf("probe: ico header: %w", err)
	}
	if binary.LittleEndian.Uint16(hdr[0:2]) != 0 || binary.LittleEndian.Uint16(hdr[2:4]) != 1 {
		return Dimensions{}, ErrUnknownFormat
	}
	if binary.LittleEndian.Uint16(hdr[4:6]) == 0 {
		return Dimensions{}, errors.New("probe: ico has no images")
	}
	w, h := int(hdr[6]), int(hdr[7])
	if w == 0 {
		w = 256
	}
	if h == 0 {
		h = 256
	}
	return Dimensions{Width: w, Height: h}, nil
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// Bytes probes an in-memory image.
func Bytes(data []byte) (Dimensions, error) {
	if looksLikeSVG(data) {
		return svgSize(bytes.NewReader(data))
	}
	return Reader(bytes.NewReader(data))
}
