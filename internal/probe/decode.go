package probe

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// maxSVGSide bounds the raster size of an SVG so a huge viewBox cannot
// exhaust memory.
const maxSVGSide = 4096

// Decode decodes an encoded image for display. SVG documents are rasterised
// at their natural size.
func Decode(data []byte) (image.Image, error) {
	if looksLikeSVG(data) {
		return rasterizeSVG(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if err == image.ErrFormat {
			return nil, ErrUnknownFormat
		}
		return nil, fmt.Errorf("probe: decode: %w", err)
	}
	return img, nil
}

func rasterizeSVG(data []byte) (image.Image, error) {
	dims, err := Bytes(data)
	if err != nil {
		return nil, err
	}
	w, h := dims.Width, dims.Height
	if side := max(w, h); side > maxSVGSide {
		f := float64(maxSVGSide) / float64(side)
		w = max(1, int(math.Round(float64(w)*f)))
		h = max(1, int(math.Round(float64(h)*f)))
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("probe: svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}
