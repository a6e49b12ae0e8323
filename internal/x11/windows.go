package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
)

// rootPosition returns the top-left corner of win in root coordinates. Under a
// reparenting window manager ConfigureNotify coordinates are relative to the
// frame, so the server is asked to translate.
func (c *Connection) rootPosition(win xproto.Window) (int, int, error) {
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(translate.DstX), int(translate.DstY), nil
}

// setSizeHints pins the window size so the window manager does not offer a
// resize handle, and marks the position as user-chosen when placed is set.
func (c *Connection) setSizeHints(win xproto.Window, x, y, w, h int, placed bool) error {
	hints := &icccm.NormalHints{
		Flags:     icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize | icccm.SizeHintPSize,
		Width:     uint(w),
		Height:    uint(h),
		MinWidth:  uint(w),
		MinHeight: uint(h),
		MaxWidth:  uint(w),
		MaxHeight: uint(h),
	}
	if placed {
		hints.Flags |= icccm.SizeHintUSPosition | icccm.SizeHintPPosition
		hints.X = x
		hints.Y = y
	}
	return icccm.WmNormalHintsSet(c.XUtil, win, hints)
}

// undecorate asks the window manager not to draw a frame.
func (c *Connection) undecorate(win xproto.Window) error {
	return motif.WmHintsSet(c.XUtil, win, &motif.Hints{
		Flags:      motif.HintDecorations,
		Decoration: motif.DecorationNone,
	})
}
