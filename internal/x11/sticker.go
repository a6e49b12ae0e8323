package x11

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// maxShapeRects bounds one SHAPE request so it stays under the core request
// size limit.
const maxShapeRects = 8000

// StickerOptions describes a sticker window.
type StickerOptions struct {
	Title       string
	X, Y        int
	Width       int
	Height      int
	Placed      bool
	AllDesktops bool
}

// StickerEvents are invoked from the X event goroutine.
type StickerEvents struct {
	Moved  func(x, y int)
	Closed func()
}

// ImageLoader produces the image a sticker displays.
type ImageLoader func(ctx context.Context) (image.Image, error)

// Sticker is a frameless, always-on-top window showing one image.
type Sticker struct {
	conn   *Connection
	win    *xwindow.Window
	events StickerEvents
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	src     image.Image
	width   int
	height  int
	lastX   int
	lastY   int
	ximg    *xgraphics.Image
	closed  bool
	visible bool
	shaped  bool
}

// NewSticker creates and maps a sticker window, then loads its image in the
// background.
func (c *Connection) NewSticker(opts StickerOptions, events StickerEvents, load ImageLoader, logger *slog.Logger) (*Sticker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Width < 1 || opts.Height < 1 {
		return nil, fmt.Errorf("invalid sticker size %dx%d", opts.Width, opts.Height)
	}

	x, y := opts.X, opts.Y
	if !opts.Placed {
		if area, err := c.PlacementArea(); err == nil {
			x, y = centerIn(area, opts.Width, opts.Height)
		}
	}

	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}
	err = win.CreateChecked(c.Root, x, y, opts.Width, opts.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		0x000000,
		xproto.EventMaskExposure|xproto.EventMaskStructureNotify|
			xproto.EventMaskKeyPress|xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Sticker{
		conn:    c,
		win:     win,
		events:  events,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		width:   opts.Width,
		height:  opts.Height,
		lastX:   x,
		lastY:   y,
		visible: true,
		shaped:  shape.Init(c.XUtil.Conn()) == nil,
	}

	if err := s.decorate(opts, x, y); err != nil {
		logger.Debug("sticker window hints incomplete", "error", err)
	}
	s.bind()

	win.Map()
	s.paint()

	go s.load(load)
	return s, nil
}

func (s *Sticker) decorate(opts StickerOptions, x, y int) error {
	xu := s.conn.XUtil
	id := s.win.Id

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(s.conn.undecorate(id))
	keep(s.conn.setSizeHints(id, x, y, opts.Width, opts.Height, opts.Placed))
	keep(ewmh.WmNameSet(xu, id, opts.Title))
	keep(icccm.WmNameSet(xu, id, opts.Title))
	keep(icccm.WmClassSet(xu, id, &icccm.WmClass{Instance: "animg", Class: "Animg"}))
	keep(ewmh.WmWindowTypeSet(xu, id, []string{"_NET_WM_WINDOW_TYPE_UTILITY"}))
	keep(ewmh.WmStateSet(xu, id, []string{
		"_NET_WM_STATE_ABOVE",
		"_NET_WM_STATE_SKIP_TASKBAR",
		"_NET_WM_STATE_SKIP_PAGER",
	}))
	if opts.AllDesktops {
		keep(s.conn.stickToAllDesktops(id))
	}
	return firstErr
}

func (s *Sticker) bind() {
	xu := s.conn.XUtil
	id := s.win.Id

	s.win.WMGracefulClose(func(*xwindow.Window) {
		s.userClose()
	})

	if err := keybind.KeyPressFun(func(*xgbutil.XUtil, xevent.KeyPressEvent) {
		s.userClose()
	}).Connect(xu, id, "Escape", false); err != nil {
		s.logger.Debug("escape binding failed", "error", err)
	}

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			s.repaint()
		}
	}).Connect(xu, id)

	xevent.ConfigureNotifyFun(func(*xgbutil.XUtil, xevent.ConfigureNotifyEvent) {
		s.reportPosition()
	}).Connect(xu, id)

	var offX, offY int
	mousebind.Drag(xu, id, id, "1", true,
		func(_ *xgbutil.XUtil, rootX, rootY, eventX, eventY int) (bool, xproto.Cursor) {
			offX, offY = eventX, eventY
			return true, 0
		},
		func(_ *xgbutil.XUtil, rootX, rootY, _, _ int) {
			s.win.Move(rootX-offX, rootY-offY)
		},
		func(*xgbutil.XUtil, int, int, int, int) {
			s.reportPosition()
		})
}

func (s *Sticker) load(load ImageLoader) {
	if load == nil {
		return
	}
	img, err := load(s.ctx)
	if err != nil {
		if s.ctx.Err() == nil {
			s.logger.Warn("sticker image unavailable", "error", err)
		}
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.src = img
	s.mu.Unlock()
	s.paint()
}

// paint renders the current image at the current size.
func (s *Sticker) paint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	fr := renderFrame(s.src, s.width, s.height)
	if s.ximg != nil {
		s.ximg.Destroy()
	}
	s.ximg = xgraphics.NewConvert(s.conn.XUtil, fr.flat)
	if err := s.ximg.XSurfaceSet(s.win.Id); err != nil {
		s.logger.Warn("sticker surface failed", "error", err)
		return
	}
	s.ximg.XDraw()
	s.ximg.XPaint(s.win.Id)
	s.applyShape(fr.shape)
}

func (s *Sticker) repaint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.ximg == nil {
		return
	}
	s.ximg.XPaint(s.win.Id)
}

// applyShape cuts transparent pixels out of the window. Callers hold s.mu.
func (s *Sticker) applyShape(rects []xproto.Rectangle) {
	if !s.shaped {
		return
	}
	conn := s.conn.XUtil.Conn()
	if rects == nil {
		shape.Mask(conn, shape.SoSet, shape.SkBounding, s.win.Id, 0, 0, xproto.PixmapNone)
		return
	}
	shape.Rectangles(conn, shape.SoSet, shape.SkBounding, xproto.ClipOrderingUnsorted, s.win.Id, 0, 0, nil)
	for len(rects) > 0 {
		n := min(len(rects), maxShapeRects)
		shape.Rectangles(conn, shape.SoUnion, shape.SkBounding, xproto.ClipOrderingUnsorted, s.win.Id, 0, 0, rects[:n])
		rects = rects[n:]
	}
}

func (s *Sticker) reportPosition() {
	x, y, err := s.conn.rootPosition(s.win.Id)
	if err != nil {
		return
	}
	s.mu.Lock()
	if s.closed || (x == s.lastX && y == s.lastY) {
		s.mu.Unlock()
		return
	}
	s.lastX, s.lastY = x, y
	moved := s.events.Moved
	s.mu.Unlock()

	if moved != nil {
		moved(x, y)
	}
}

// userClose handles Escape and window manager close requests.
func (s *Sticker) userClose() {
	if !s.destroy() {
		return
	}
	if s.events.Closed != nil {
		s.events.Closed()
	}
}

// destroy tears the window down once; it reports whether this call did so.
func (s *Sticker) destroy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	s.cancel()
	if s.ximg != nil {
		s.ximg.Destroy()
		s.ximg = nil
	}
	s.win.Destroy()
	return true
}

// Close destroys the window without invoking the Closed callback.
func (s *Sticker) Close() error {
	s.destroy()
	return nil
}

// Resize changes the window size and re-renders the image.
func (s *Sticker) Resize(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("invalid sticker size %dx%d", width, height)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("sticker window is closed")
	}
	s.width, s.height = width, height
	x, y := s.lastX, s.lastY
	s.mu.Unlock()

	if err := s.conn.setSizeHints(s.win.Id, x, y, width, height, true); err != nil {
		s.logger.Debug("size hints update failed", "error", err)
	}
	s.win.Resize(width, height)
	s.paint()
	return nil
}

// SetVisible maps or unmaps the window without closing it.
func (s *Sticker) SetVisible(visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.visible == visible {
		return nil
	}
	s.visible = visible
	if visible {
		s.win.Map()
		if err := ewmh.WmStateReq(s.conn.XUtil, s.win.Id, ewmh.StateAdd, "_NET_WM_STATE_ABOVE"); err != nil {
			s.logger.Debug("above state request failed", "error", err)
		}
	} else {
		s.win.Unmap()
	}
	return nil
}
