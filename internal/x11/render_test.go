package x11

import (
	"image"
	"image/color"
	"testing"
)

func TestRenderFrame_ScalesToWindowSize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 300; x++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}

	fr := renderFrame(src, 150, 100)
	if got := fr.flat.Bounds(); got.Dx() != 150 || got.Dy() != 100 {
		t.Fatalf("frame bounds = %v, want 150x100", got)
	}
	if fr.shape != nil {
		t.Fatalf("opaque image should not need a shape, got %d rects", len(fr.shape))
	}
}

func TestRenderFrame_PlaceholderWhenNoImage(t *testing.T) {
	fr := renderFrame(nil, 10, 10)
	if got := fr.flat.RGBAAt(5, 5); got != placeholderColor {
		t.Fatalf("placeholder pixel = %v, want %v", got, placeholderColor)
	}
	if fr.shape != nil {
		t.Fatal("placeholder should be fully opaque")
	}
}

func TestShapeRects_MergesIdenticalRows(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	// Rows 0-1: opaque at x=[1,3) and [4,6). Row 2: transparent. Row 3: x=[0,6).
	for y := 0; y < 2; y++ {
		for _, x := range []int{1, 2, 4, 5} {
			img.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}
	for x := 0; x < 6; x++ {
		img.SetRGBA(x, 3, color.RGBA{A: 255})
	}

	rects := shapeRects(img)
	if len(rects) != 3 {
		t.Fatalf("got %d rects, want 3: %+v", len(rects), rects)
	}
	want := []struct{ x, y, w, h int }{
		{1, 0, 2, 2},
		{4, 0, 2, 2},
		{0, 3, 6, 1},
	}
	for i, w := range want {
		r := rects[i]
		if int(r.X) != w.x || int(r.Y) != w.y || int(r.Width) != w.w || int(r.Height) != w.h {
			t.Fatalf("rect[%d] = %+v, want %+v", i, r, w)
		}
	}
}

func TestShapeRects_FullyTransparent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	rects := shapeRects(img)
	if rects == nil || len(rects) != 0 {
		t.Fatalf("fully transparent image should yield an empty shape, got %v", rects)
	}
}

func TestShapeRects_AlphaThreshold(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{A: alphaThreshold - 1})
	img.SetRGBA(1, 0, color.RGBA{A: alphaThreshold})

	rects := shapeRects(img)
	if len(rects) != 1 || rects[0].X != 1 || rects[0].Width != 1 {
		t.Fatalf("rects = %+v, want one rect at x=1", rects)
	}
}

func TestCenterIn(t *testing.T) {
	x, y := centerIn(Monitor{X: 100, Y: 50, Width: 1000, Height: 800}, 200, 100)
	if x != 500 || y != 400 {
		t.Fatalf("centerIn = %d,%d, want 500,400", x, y)
	}
}
