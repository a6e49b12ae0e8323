package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// allDesktops is the _NET_WM_DESKTOP value for windows shown on every desktop.
const allDesktops = 0xFFFFFFFF

// stickToAllDesktops pins an unmapped window to every virtual desktop. The
// window manager reads the property when the window is first mapped.
func (c *Connection) stickToAllDesktops(win xproto.Window) error {
	return ewmh.WmDesktopSet(c.XUtil, win, allDesktops)
}
