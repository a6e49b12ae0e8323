package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const iconSize = 32

var (
	iconPaper  = color.RGBA{R: 0xfa, G: 0xf7, B: 0xf0, A: 0xff}
	iconBorder = color.RGBA{R: 0x3b, G: 0x3f, B: 0x5c, A: 0xff}
	iconSun    = color.RGBA{R: 0xf2, G: 0xb1, B: 0x34, A: 0xff}
	iconHill   = color.RGBA{R: 0x4c, G: 0x9a, B: 0x6a, A: 0xff}
)

// Icon renders the tray icon: a framed picture with a sun and a hill.
func Icon() []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	for y := 2; y < iconSize-2; y++ {
		for x := 2; x < iconSize-2; x++ {
			c := iconPaper
			switch {
			case x < 4 || x >= iconSize-4 || y < 4 || y >= iconSize-4:
				c = iconBorder
			case inCircle(x, y, 21, 11, 4):
				c = iconSun
			case y > 27-(x-4)/2 || y > 17+(x-16)*(x-16)/24:
				c = iconHill
			}
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func inCircle(x, y, cx, cy, r int) bool {
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}
