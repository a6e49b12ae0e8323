package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/animg/internal/identity"
	"github.com/1broseidon/animg/internal/repository"
)

// Catalog lists the images present in the repository.
type Catalog interface {
	List() ([]string, error)
}

// Registry is the window manager surface reconciliation drives.
type Registry interface {
	Ensure(name string) (string, error)
	Discard(key string)
}

// ConfigIndex lists and prunes stored configs.
type ConfigIndex interface {
	Keys(ctx context.Context) ([]string, error)
	Delete(key string) error
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	// Interval enables periodic passes when > 0.
	Interval time.Duration
	// Debounce groups bursts of repository events into one pass.
	Debounce time.Duration
	// PruneOrphans deletes configs whose file is gone.
	PruneOrphans bool
	Logger       *slog.Logger
}

// Reconciler brings the stored configs and open windows in line with the
// files in the repository.
type Reconciler struct {
	interval     time.Duration
	debounce     time.Duration
	pruneOrphans bool
	files        Catalog
	registry     Registry
	configs      ConfigIndex
	loop         *Loop
	logger       *slog.Logger
}

// NewReconciler creates a reconciler whose passes run on loop.
func NewReconciler(cfg ReconcilerConfig, files Catalog, registry Registry, configs ConfigIndex, loop *Loop) *Reconciler {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		interval:     cfg.Interval,
		debounce:     debounce,
		pruneOrphans: cfg.PruneOrphans,
		files:        files,
		registry:     registry,
		configs:      configs,
		loop:         loop,
		logger:       logger,
	}
}

// Run schedules passes for repository events and the optional interval.
// Blocks until ctx is cancelled. events may be nil.
func (r *Reconciler) Run(ctx context.Context, events <-chan repository.Event) {
	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var (
		timer   *time.Timer
		settled <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	r.logger.Info("reconciler started", "interval", r.interval, "watching", events != nil)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			r.logger.Debug("repository changed", "name", ev.Name, "op", ev.Op)
			if timer == nil {
				timer = time.NewTimer(r.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(r.debounce)
			}
			settled = timer.C
		case <-settled:
			settled = nil
			r.schedule(ctx)
		case <-tick:
			r.schedule(ctx)
		}
	}
}

func (r *Reconciler) schedule(ctx context.Context) {
	r.loop.Post(func() { r.reconcile(ctx) })
}

// ReconcileNow runs a pass immediately. It must be called on the loop.
func (r *Reconciler) ReconcileNow(ctx context.Context) {
	r.reconcile(ctx)
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	names, err := r.files.List()
	if err != nil {
		r.logger.Error("reconciler: failed to list files", "error", err)
		return
	}

	present := make(map[string]bool, len(names))
	for _, name := range names {
		key, err := r.registry.Ensure(name)
		present[key] = true
		if err != nil {
			r.logger.Warn("reconciler: failed to register file", "name", name, "error", err)
		}
	}

	if !r.pruneOrphans {
		return
	}
	keys, err := r.configs.Keys(ctx)
	if err != nil {
		r.logger.Warn("reconciler: failed to list configs", "error", err)
		return
	}
	for _, key := range keys {
		if present[key] || !identity.Valid(key) {
			continue
		}
		r.registry.Discard(key)
		if err := r.configs.Delete(key); err != nil {
			r.logger.Warn("reconciler: failed to delete orphaned config", "key", key, "error", err)
			continue
		}
		r.logger.Info("reconciler: orphaned config pruned", "key", key)
	}
}
