// Package sticker defines the persisted per-image configuration.
package sticker

import "fmt"

const (
	DefaultScale  = 100
	DefaultWidth  = 200
	DefaultHeight = 200
	MaxScale      = 1000
)

// Config is the stored document for one imported image.
type Config struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Scale  int    `json:"scale"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	X      *int   `json:"x,omitempty"`
	Y      *int   `json:"y,omitempty"`
}

// New returns the config created on first discovery of name.
func New(name string) Config {
	return Config{
		Name:   name,
		Active: true,
		Scale:  DefaultScale,
	}
}

// HasDimensions reports whether base dimensions have been captured.
func (c Config) HasDimensions() bool {
	return c.Width > 0 && c.Height > 0
}

// Size returns the live window size for the current scale.
func (c Config) Size() (width, height int) {
	scale := c.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	width = c.Width * scale / 100
	height = c.Height * scale / 100
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// Position returns the last stored window position, if any.
func (c Config) Position() (x, y int, ok bool) {
	if c.X == nil || c.Y == nil {
		return 0, 0, false
	}
	return *c.X, *c.Y, true
}

// WithPosition returns a copy of c positioned at x, y.
func (c Config) WithPosition(x, y int) Config {
	c.X = &x
	c.Y = &y
	return c
}

// WithDimensions returns a copy of c with base dimensions set.
func (c Config) WithDimensions(width, height int) Config {
	c.Width = width
	c.Height = height
	return c
}

// ValidateScale checks that scale is a usable percentage up to max.
func ValidateScale(scale, max int) error {
	if max <= 0 {
		max = MaxScale
	}
	if scale <= 0 || scale > max {
		return fmt.Errorf("scale must be between 1 and %d, got %d", max, scale)
	}
	return nil
}
