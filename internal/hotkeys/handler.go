package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/1broseidon/animg/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// ErrUnsupported is returned when the backend does not expose X11 internals.
var ErrUnsupported = errors.New("global hotkeys are not supported by this backend")

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Binding pairs a key sequence with the action it triggers.
type Binding struct {
	Name     string
	Sequence string
	Action   func()
}

// Handler manages global keyboard shortcuts.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend platform.Backend, logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok {
		return nil, ErrUnsupported
	}
	if logger == nil {
		logger = slog.Default()
	}
	xu := accessor.XUtil()
	if xu == nil {
		return nil, ErrUnsupported
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   accessor.RootWindow(),
		logger: logger,
	}, nil
}

// RegisterAll registers every binding with a non-empty sequence. A failing
// binding is logged and skipped; the joined errors are returned.
func (h *Handler) RegisterAll(bindings []Binding) error {
	var errs []error
	for _, b := range bindings {
		seq := strings.TrimSpace(b.Sequence)
		if seq == "" || b.Action == nil {
			continue
		}
		if err := h.RegisterFunc(seq, b.Action); err != nil {
			h.logger.Warn("hotkey registration failed", "name", b.Name, "sequence", seq, "error", err)
			errs = append(errs, fmt.Errorf("%s hotkey %q: %w", b.Name, seq, err))
			continue
		}
		h.logger.Info("hotkey registered", "name", b.Name, "sequence", seq)
	}
	return errors.Join(errs...)
}

// RegisterFunc registers an arbitrary hotkey callback. The callback runs on
// the X event goroutine.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// configureIgnoreMods lets bindings fire regardless of the lock keys: every
// combination of CapsLock, NumLock and ScrollLock is ignored.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	locks := []uint16{uint16(xproto.ModMaskLock)}
	for _, sym := range []string{"Num_Lock", "Scroll_Lock"} {
		if m := lockMask(xu, sym); m != 0 && !slices.Contains(locks, m) {
			locks = append(locks, m)
		}
	}
	xevent.IgnoreMods = lockCombinations(locks)
}

// lockCombinations returns every OR of a subset of masks, including 0.
func lockCombinations(masks []uint16) []uint16 {
	combos := []uint16{0}
	for _, m := range masks {
		for _, c := range combos {
			combos = append(combos, c|m)
		}
	}
	return combos
}

func lockMask(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, code := range keybind.StrToKeycodes(xu, keysym) {
		if m := keybind.ModGet(xu, code); m != 0 {
			return m
		}
	}
	return 0
}
