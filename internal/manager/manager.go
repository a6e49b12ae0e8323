// Package manager owns the set of open sticker windows and keeps it in step
// with the content store.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/1broseidon/animg/internal/identity"
	"github.com/1broseidon/animg/internal/platform"
	"github.com/1broseidon/animg/internal/probe"
	"github.com/1broseidon/animg/internal/sticker"
	"github.com/1broseidon/animg/internal/store"
)

// ErrNotFound is returned when an operation names a key without a stored
// config.
var ErrNotFound = errors.New("sticker not found")

// Store is the subset of the content store the manager needs.
type Store interface {
	Get(key string) (sticker.Config, error)
	Set(key string, cfg sticker.Config) error
	Update(key string, fn func(*sticker.Config)) (sticker.Config, error)
}

// Files resolves repository file names to paths on disk.
type Files interface {
	Path(name string) (string, error)
}

// Poster schedules work onto the event loop that owns the manager.
type Poster interface {
	Post(fn func()) bool
}

// Timer is the part of *time.Timer the debounce logic uses.
type Timer interface {
	Stop() bool
}

// Options tune a Manager. Zero values fall back to defaults.
type Options struct {
	// MoveDebounce delays position writes until moves go quiet. Zero writes
	// every move immediately.
	MoveDebounce  time.Duration
	DefaultWidth  int
	DefaultHeight int
	MaxScale      int
	Probe         probe.Func
	Logger        *slog.Logger
	// OnEmpty runs when a user close leaves no open windows.
	OnEmpty func()
	// AfterFunc replaces time.AfterFunc in tests.
	AfterFunc func(d time.Duration, f func()) Timer
}

type window struct {
	key   string
	name  string
	win   platform.Window
	timer Timer

	pendingX, pendingY int
	pending            bool
}

// Manager tracks the Open Window Set. Every method must be called from the
// event loop that backs the Poster; none of them are safe for concurrent use.
type Manager struct {
	ctx     context.Context
	store   Store
	files   Files
	backend platform.Backend
	loop    Poster
	opts    Options
	logger  *slog.Logger

	windows map[string]*window
	probes  map[string]*probe.Future
	hidden  bool
}

// New creates a manager. ctx bounds in-flight probes.
func New(ctx context.Context, st Store, files Files, backend platform.Backend, loop Poster, opts Options) *Manager {
	if opts.DefaultWidth <= 0 {
		opts.DefaultWidth = sticker.DefaultWidth
	}
	if opts.DefaultHeight <= 0 {
		opts.DefaultHeight = sticker.DefaultHeight
	}
	if opts.MaxScale <= 0 {
		opts.MaxScale = sticker.MaxScale
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		ctx:     ctx,
		store:   st,
		files:   files,
		backend: backend,
		loop:    loop,
		opts:    opts,
		logger:  logger,
		windows: make(map[string]*window),
		probes:  make(map[string]*probe.Future),
	}
}

// Ensure makes sure name has a stored config and, when it is active, an open
// window. It returns the key for name.
func (m *Manager) Ensure(name string) (string, error) {
	key := identity.Hash(name)

	cfg, err := m.store.Get(key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		cfg = sticker.New(name)
		if err := m.store.Set(key, cfg); err != nil {
			return key, fmt.Errorf("create config for %s: %w", name, err)
		}
		m.logger.Info("sticker registered", "name", name, "key", key)
	case err != nil:
		return key, fmt.Errorf("load config for %s: %w", name, err)
	}

	if !cfg.HasDimensions() {
		m.startProbe(key, name)
		return key, nil
	}
	if cfg.Active {
		if err := m.spawn(key, cfg); err != nil {
			return key, err
		}
	}
	return key, nil
}

func (m *Manager) startProbe(key, name string) {
	if _, ok := m.probes[key]; ok {
		return
	}
	path, err := m.files.Path(name)
	if err != nil {
		m.logger.Warn("cannot probe sticker", "name", name, "error", err)
		return
	}

	fut := probe.Start(m.ctx, path, m.opts.Probe)
	m.probes[key] = fut
	m.logger.Debug("probe started", "name", name, "key", key)

	go func() {
		dims, err := fut.Wait()
		m.loop.Post(func() { m.applyProbe(key, fut, dims, err) })
	}()
}

func (m *Manager) applyProbe(key string, fut *probe.Future, dims probe.Dimensions, err error) {
	if m.probes[key] != fut {
		return
	}
	delete(m.probes, key)
	if fut.Cancelled() {
		return
	}
	if err != nil {
		m.logger.Warn("probe failed, using default size",
			"path", fut.Path(),
			"width", m.opts.DefaultWidth,
			"height", m.opts.DefaultHeight,
			"error", err)
		dims = probe.Dimensions{Width: m.opts.DefaultWidth, Height: m.opts.DefaultHeight}
	}

	cfg, err := m.store.Get(key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.logger.Error("load config after probe", "key", key, "error", err)
		}
		return
	}
	if !cfg.HasDimensions() {
		cfg = cfg.WithDimensions(dims.Width, dims.Height)
		if err := m.store.Set(key, cfg); err != nil {
			m.logger.Error("persist dimensions", "key", key, "error", err)
			return
		}
	}
	if cfg.Active {
		if err := m.spawn(key, cfg); err != nil {
			m.logger.Error("open sticker window", "name", cfg.Name, "error", err)
		}
	}
}

func (m *Manager) spawn(key string, cfg sticker.Config) error {
	if _, ok := m.windows[key]; ok {
		return nil
	}

	width, height := cfg.Size()
	spec := platform.WindowSpec{
		Key:    key,
		Title:  cfg.Name,
		Width:  width,
		Height: height,
	}
	if x, y, ok := cfg.Position(); ok {
		displays, err := m.backend.Displays()
		if err != nil {
			m.logger.Debug("display query failed", "error", err)
		}
		if platform.OnScreen(displays, platform.Rect{X: x, Y: y, Width: width, Height: height}) {
			spec.X, spec.Y, spec.Placed = x, y, true
		} else {
			m.logger.Info("stored position is off screen, using default placement",
				"name", cfg.Name, "x", x, "y", y)
		}
	}

	w := &window{key: key, name: cfg.Name}
	events := platform.WindowEvents{
		Moved: func(x, y int) {
			m.loop.Post(func() { m.handleMove(w, x, y) })
		},
		Closed: func() {
			m.loop.Post(func() { m.handleClose(w) })
		},
	}
	win, err := m.backend.OpenWindow(spec, events)
	if err != nil {
		return fmt.Errorf("open window for %s: %w", cfg.Name, err)
	}
	w.win = win
	m.windows[key] = w
	if m.hidden {
		if err := win.SetVisible(false); err != nil {
			m.logger.Debug("hide new window", "name", cfg.Name, "error", err)
		}
	}
	m.logger.Info("sticker shown", "name", cfg.Name, "width", width, "height", height)
	return nil
}

func (m *Manager) handleMove(w *window, x, y int) {
	if m.windows[w.key] != w {
		return
	}
	if m.opts.MoveDebounce <= 0 {
		m.persistPosition(w.key, x, y)
		return
	}

	w.pendingX, w.pendingY, w.pending = x, y, true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = m.opts.AfterFunc(m.opts.MoveDebounce, func() {
		m.loop.Post(func() { m.flushMove(w) })
	})
}

func (m *Manager) flushMove(w *window) {
	if !w.pending {
		return
	}
	w.pending = false
	m.persistPosition(w.key, w.pendingX, w.pendingY)
}

func (m *Manager) persistPosition(key string, x, y int) {
	_, err := m.store.Update(key, func(cfg *sticker.Config) {
		*cfg = cfg.WithPosition(x, y)
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		m.logger.Error("persist position", "key", key, "error", err)
	}
}

// takePending stops the debounce timer and returns the unwritten position.
func (w *window) takePending() (x, y int, ok bool) {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if !w.pending {
		return 0, 0, false
	}
	w.pending = false
	return w.pendingX, w.pendingY, true
}

func (m *Manager) handleClose(w *window) {
	if m.windows[w.key] != w {
		return
	}
	delete(m.windows, w.key)

	x, y, moved := w.takePending()
	_, err := m.store.Update(w.key, func(cfg *sticker.Config) {
		if moved {
			*cfg = cfg.WithPosition(x, y)
		}
		cfg.Active = false
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		m.logger.Error("persist closed sticker", "name", w.name, "error", err)
	}
	m.logger.Info("sticker closed", "name", w.name)

	if len(m.windows) == 0 && m.opts.OnEmpty != nil {
		m.opts.OnEmpty()
	}
}

// Rescale stores scale for key and resizes its window when one is open.
func (m *Manager) Rescale(key string, scale int) error {
	if err := sticker.ValidateScale(scale, m.opts.MaxScale); err != nil {
		return err
	}
	cfg, err := m.store.Update(key, func(cfg *sticker.Config) { cfg.Scale = scale })
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("persist scale: %w", err)
	}

	w, ok := m.windows[key]
	if !ok || !cfg.HasDimensions() {
		return nil
	}
	width, height := cfg.Size()
	if err := w.win.Resize(width, height); err != nil {
		return fmt.Errorf("resize %s: %w", cfg.Name, err)
	}
	return nil
}

// SetActive stores active for key and opens or closes its window to match.
func (m *Manager) SetActive(key string, active bool) error {
	cfg, err := m.load(key)
	if err != nil {
		return err
	}

	w, open := m.windows[key]
	if !active && open {
		if x, y, ok := w.takePending(); ok {
			cfg = cfg.WithPosition(x, y)
		}
	}
	cfg.Active = active
	if err := m.store.Set(key, cfg); err != nil {
		return fmt.Errorf("persist active: %w", err)
	}

	switch {
	case active && !open:
		if !cfg.HasDimensions() {
			m.startProbe(key, cfg.Name)
			return nil
		}
		return m.spawn(key, cfg)
	case !active && open:
		m.closeWindow(w)
	}
	return nil
}

// Discard forgets key: any probe is cancelled and any window closed without
// writing to the store.
func (m *Manager) Discard(key string) {
	if fut, ok := m.probes[key]; ok {
		fut.Cancel()
		delete(m.probes, key)
	}
	if w, ok := m.windows[key]; ok {
		w.takePending()
		m.closeWindow(w)
	}
}

// Shutdown writes pending positions and closes every window. Active flags
// are left untouched so the same stickers reappear on the next start.
func (m *Manager) Shutdown() {
	for key, fut := range m.probes {
		fut.Cancel()
		delete(m.probes, key)
	}
	for _, key := range m.OpenKeys() {
		w := m.windows[key]
		if x, y, ok := w.takePending(); ok {
			m.persistPosition(key, x, y)
		}
		m.closeWindow(w)
	}
}

func (m *Manager) closeWindow(w *window) {
	delete(m.windows, w.key)
	if err := w.win.Close(); err != nil {
		m.logger.Debug("close window", "name", w.name, "error", err)
	}
}

// SetAllVisible hides or shows every open window without changing any
// stored state.
func (m *Manager) SetAllVisible(visible bool) {
	m.hidden = !visible
	for _, w := range m.windows {
		if err := w.win.SetVisible(visible); err != nil {
			m.logger.Debug("set visibility", "name", w.name, "error", err)
		}
	}
}

// ToggleVisible flips the visibility of every open window.
func (m *Manager) ToggleVisible() {
	m.SetAllVisible(m.hidden)
}

// IsOpen reports whether key has a live window.
func (m *Manager) IsOpen(key string) bool {
	_, ok := m.windows[key]
	return ok
}

// OpenCount returns the number of live windows.
func (m *Manager) OpenCount() int {
	return len(m.windows)
}

// OpenKeys returns the keys of live windows in sorted order.
func (m *Manager) OpenKeys() []string {
	keys := make([]string, 0, len(m.windows))
	for key := range m.windows {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Probing reports whether a probe is in flight for key.
func (m *Manager) Probing(key string) bool {
	_, ok := m.probes[key]
	return ok
}

func (m *Manager) load(key string) (sticker.Config, error) {
	cfg, err := m.store.Get(key)
	if errors.Is(err, store.ErrNotFound) {
		return sticker.Config{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return sticker.Config{}, fmt.Errorf("load config %s: %w", key, err)
	}
	return cfg, nil
}
