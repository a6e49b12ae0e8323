package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/animg/internal/config"
	"github.com/1broseidon/animg/internal/controller"
	"github.com/1broseidon/animg/internal/hotkeys"
	"github.com/1broseidon/animg/internal/ipc"
	"github.com/1broseidon/animg/internal/manager"
	"github.com/1broseidon/animg/internal/picker"
	"github.com/1broseidon/animg/internal/platform"
	"github.com/1broseidon/animg/internal/repository"
	"github.com/1broseidon/animg/internal/store"
	"golang.org/x/sync/errgroup"
)

// ErrDisplayClosed is returned by Run when the display event loop stops
// without a shutdown request, e.g. after the X connection is lost.
var ErrDisplayClosed = errors.New("display event loop ended unexpectedly")

// Options wires an App.
type Options struct {
	Config *config.Config
	// Dev selects the ./files repository when files_dir is unset.
	Dev     bool
	Backend platform.Native
	// Picker opens the native dialog for select-file. Nil disables it.
	Picker picker.Picker
	// SocketPath overrides the runtime socket location.
	SocketPath string
	// OnSettings opens the management view. Nil disables the settings hotkey.
	OnSettings func()
	Logger     *slog.Logger
}

// App is the daemon: it owns the store, the repository, the event loop and
// every window. Its context is the owning context all components share.
type App struct {
	cfg        *config.Config
	backend    platform.Native
	picker     picker.Picker
	socketPath string
	onSettings func()
	logger     *slog.Logger

	store     *store.Store
	storePath string
	files     *repository.Repository
	loop      *Loop

	manager    *manager.Manager
	controller *controller.Controller
	router     *ipc.Router

	mu     sync.Mutex
	cancel context.CancelFunc
	quit   bool
}

// New opens the store and the repository. Call Close when Run returns.
func New(opts Options) (*App, error) {
	if opts.Backend == nil {
		return nil, errors.New("daemon: no display backend")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	files, err := repository.Open(cfg.ResolveFilesDir(opts.Dev))
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	storePath := cfg.ResolveStorePath()
	st, err := store.Open(cfg.Store.Driver, storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	logger.Info("daemon configured",
		"files", files.Dir(),
		"store_driver", st.Driver(),
		"store_path", storePath,
	)

	return &App{
		cfg:        cfg,
		backend:    opts.Backend,
		picker:     opts.Picker,
		socketPath: opts.SocketPath,
		onSettings: opts.OnSettings,
		logger:     logger,
		store:      st,
		storePath:  storePath,
		files:      files,
		loop:       NewLoop(logger),
	}, nil
}

// Quit asks a running App to shut down. Safe from any goroutine.
func (a *App) Quit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.quit = true
	if a.cancel != nil {
		a.cancel()
	}
}

// Run serves until ctx is cancelled, Quit is called or the display
// connection ends, the last reported as ErrDisplayClosed. Open windows are
// closed, not deactivated, on the way out.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.mu.Lock()
	a.cancel = cancel
	quit := a.quit
	a.mu.Unlock()
	if quit {
		return nil
	}

	// The loop outlives ctx so shutdown work can still run on it.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	go a.loop.Run(loopCtx)
	defer func() {
		stopLoop()
		<-a.loop.Done()
	}()

	a.manager = manager.New(ctx, a.store, a.files, a.backend, a.loop, manager.Options{
		MoveDebounce:  a.cfg.MoveDebounce(),
		DefaultWidth:  a.cfg.DefaultWidth,
		DefaultHeight: a.cfg.DefaultHeight,
		MaxScale:      a.cfg.MaxScale,
		Logger:        a.logger.With("component", "manager"),
		OnEmpty:       a.onEmpty,
	})
	a.controller = controller.New(controller.Options{
		Loop:      a.loop,
		Store:     a.store,
		StorePath: a.storePath,
		Files:     a.files,
		Windows:   a.manager,
		Picker:    a.picker,
		Logger:    a.logger.With("component", "controller"),
	})
	a.router = ipc.NewRouter(a.controller, a.cfg.MaxScale, a.logger.With("component", "ipc"))

	a.backend.SetAllDesktops(a.cfg.AllDesktops)
	a.backend.SetImageSource(a.viewImage)

	server, err := ipc.NewServer(a.socketPath, a.router, a.logger.With("component", "ipc"))
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	reconciler := NewReconciler(ReconcilerConfig{
		Interval:     a.cfg.ReconcileInterval(),
		PruneOrphans: true,
		Logger:       a.logger.With("component", "reconciler"),
	}, a.files, a.manager, a.store, a.loop)

	if err := a.loop.Do(ctx, func() error {
		reconciler.ReconcileNow(ctx)
		return nil
	}); err != nil {
		return fmt.Errorf("startup reconciliation: %w", err)
	}

	var events <-chan repository.Event
	if a.cfg.WatchFiles {
		ch, err := a.files.Watch(ctx, a.logger.With("component", "watcher"))
		if err != nil {
			a.logger.Warn("repository watch unavailable", "error", err)
		} else {
			events = ch
		}
	}

	a.registerHotkeys()

	a.logger.Info("animg daemon started", "socket", server.SocketPath(), "open", a.openCount(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reconciler.Run(gctx, events)
		return nil
	})
	g.Go(func() error {
		a.backend.EventLoop()
		a.logger.Info("display event loop ended")
		if ctx.Err() == nil {
			return ErrDisplayClosed
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.backend.Quit()
		return nil
	})
	err = g.Wait()

	a.logger.Info("shutting down animg daemon")
	if shutdownErr := a.loop.Do(context.Background(), func() error {
		a.manager.Shutdown()
		return nil
	}); shutdownErr != nil && !errors.Is(shutdownErr, ErrLoopStopped) {
		a.logger.Warn("window shutdown failed", "error", shutdownErr)
	}
	return err
}

// Close releases the store and the display connection.
func (a *App) Close() error {
	a.backend.Disconnect()
	return a.store.Close()
}

// Router exposes the bridge router for in-process views.
func (a *App) Router() *ipc.Router {
	return a.router
}

// ToggleVisible hides or shows every sticker window.
func (a *App) ToggleVisible() {
	a.loop.Post(func() {
		if a.manager != nil {
			a.manager.ToggleVisible()
		}
	})
}

// onEmpty runs on the loop after the last window was closed by the user.
func (a *App) onEmpty() {
	if !a.cfg.QuitWhenAllClosed {
		return
	}
	a.logger.Info("all sticker windows closed, quitting")
	a.Quit()
}

// viewImage answers a display view's image request through the same bridge
// path the management view uses.
func (a *App) viewImage(ctx context.Context, key string) ([]byte, error) {
	req, err := ipc.NewRequest(ipc.ChannelRequestImage, nil)
	if err != nil {
		return nil, err
	}
	resp := a.router.Dispatch(ipc.WithView(ctx, key), req)
	if resp.Status != ipc.StatusOK {
		return nil, &ipc.ResponseError{Channel: resp.Channel, Message: resp.Error}
	}
	var img ipc.ImageData
	if err := resp.DecodeData(&img); err != nil {
		return nil, err
	}
	return controller.DecodeImage(img)
}

func (a *App) openCount(ctx context.Context) int {
	var n int
	_ = a.loop.Do(ctx, func() error {
		n = a.manager.OpenCount()
		return nil
	})
	return n
}

func (a *App) registerHotkeys() {
	var bindings []hotkeys.Binding
	if a.onSettings != nil {
		bindings = append(bindings, hotkeys.Binding{
			Name:     "settings",
			Sequence: a.cfg.SettingsHotkey,
			Action:   a.onSettings,
		})
	}
	bindings = append(bindings, hotkeys.Binding{
		Name:     "toggle_all",
		Sequence: a.cfg.ToggleAllHotkey,
		Action:   a.ToggleVisible,
	})

	configured := false
	for _, b := range bindings {
		if b.Sequence != "" {
			configured = true
		}
	}
	if !configured {
		return
	}

	handler, err := hotkeys.NewHandler(a.backend, a.logger.With("component", "hotkeys"))
	if err != nil {
		a.logger.Warn("global hotkeys unavailable", "error", err)
		return
	}
	if err := handler.RegisterAll(bindings); err != nil {
		a.logger.Warn("some hotkeys were not registered", "error", err)
	}
}
