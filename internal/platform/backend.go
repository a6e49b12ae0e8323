package platform

import "context"

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// WindowSpec describes a sticker window to open.
type WindowSpec struct {
	// Key identifies the sticker; display views request their image with it.
	Key    string
	Title  string
	Width  int
	Height int
	// X and Y are used only when Placed is set; otherwise the backend picks a
	// default position.
	X      int
	Y      int
	Placed bool
}

// WindowEvents are callbacks a backend invokes from its own goroutine.
type WindowEvents struct {
	// Moved reports a new top-left position.
	Moved func(x, y int)
	// Closed reports a close initiated by the user or the window manager. It
	// is not called for Window.Close.
	Closed func()
}

// ImageSource supplies the encoded image bytes a display view shows.
type ImageSource func(ctx context.Context, key string) ([]byte, error)

// Window is a live display window.
type Window interface {
	Resize(width, height int) error
	SetVisible(visible bool) error
	// Close destroys the window without invoking WindowEvents.Closed.
	Close() error
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	OpenWindow(spec WindowSpec, events WindowEvents) (Window, error)
}

// OnScreen reports whether r overlaps any display. An empty display list is
// treated as unknown and accepts r.
func OnScreen(displays []Display, r Rect) bool {
	if len(displays) == 0 {
		return true
	}
	for _, d := range displays {
		if d.Bounds.Intersects(r) {
			return true
		}
	}
	return false
}

// Native is a Backend bound to a live display connection.
type Native interface {
	Backend
	SetImageSource(src ImageSource)
	SetAllDesktops(on bool)
	// EventLoop dispatches display events until Quit is called.
	EventLoop()
	Quit()
	Disconnect()
}
