package x11

import (
	"image"
	"image/color"

	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/image/draw"
)

// alphaThreshold decides which pixels belong to the window shape.
const alphaThreshold = 128

// placeholderColor fills a sticker whose image could not be loaded.
var placeholderColor = color.RGBA{R: 0x5f, G: 0x63, B: 0x68, A: 0xff}

// frame is a sticker image scaled to its window size.
type frame struct {
	// flat is the image composited over an opaque background, ready for a
	// 24-bit visual.
	flat *image.RGBA
	// shape holds the opaque regions; nil when every pixel is opaque.
	shape []xproto.Rectangle
}

// renderFrame scales src to w×h. A nil src yields a placeholder.
func renderFrame(src image.Image, w, h int) frame {
	bounds := image.Rect(0, 0, w, h)
	scaled := image.NewRGBA(bounds)
	if src == nil {
		draw.Draw(scaled, bounds, image.NewUniform(placeholderColor), image.Point{}, draw.Src)
	} else {
		draw.CatmullRom.Scale(scaled, bounds, src, src.Bounds(), draw.Src, nil)
	}

	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, scaled, image.Point{}, draw.Over)

	return frame{flat: flat, shape: shapeRects(scaled)}
}

// shapeRects returns the opaque pixels of img as row runs, merging rows with
// identical runs into taller bands. It returns nil when img is fully opaque.
func shapeRects(img *image.RGBA) []xproto.Rectangle {
	b := img.Bounds()
	var (
		rects    []xproto.Rectangle
		band     []xproto.Rectangle // rectangles of the band being extended
		prevRuns [][2]int
		partial  bool
	)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		runs := rowRuns(img, y)
		if len(runs) != 1 || runs[0][0] != b.Min.X || runs[0][1] != b.Max.X {
			partial = true
		}

		if sameRuns(runs, prevRuns) && len(band) > 0 {
			for i := range band {
				band[i].Height++
			}
			continue
		}

		rects = append(rects, band...)
		band = band[:0:0]
		for _, r := range runs {
			band = append(band, xproto.Rectangle{
				X:      int16(r[0]),
				Y:      int16(y),
				Width:  uint16(r[1] - r[0]),
				Height: 1,
			})
		}
		prevRuns = runs
	}
	rects = append(rects, band...)

	if !partial {
		return nil
	}
	if rects == nil {
		// Fully partialnt: keep an empty, non-nil shape.
		rects = []xproto.Rectangle{}
	}
	return rects
}

// rowRuns returns [start,end) spans of opaque pixels on row y.
func rowRuns(img *image.RGBA, y int) [][2]int {
	b := img.Bounds()
	var runs [][2]int
	start := -1
	for x := b.Min.X; x < b.Max.X; x++ {
		opaque := img.RGBAAt(x, y).A >= alphaThreshold
		switch {
		case opaque && start < 0:
			start = x
		case !opaque && start >= 0:
			runs = append(runs, [2]int{start, x})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, [2]int{start, b.Max.X})
	}
	return runs
}

func sameRuns(a, b [][2]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
