package repository

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change reported by Watch.
type Op int

const (
	OpAdded Op = iota
	OpRemoved
	OpChanged
)

func (o Op) String() string {
	switch o {
	case OpAdded:
		return "added"
	case OpRemoved:
		return "removed"
	default:
		return "changed"
	}
}

// Event describes a change to one repository entry.
type Event struct {
	Name string
	Op   Op
}

// Watch streams repository changes until ctx is cancelled. Hidden files are
// ignored. Events are dropped when the consumer falls behind; consumers are
// expected to re-list rather than apply events incrementally.
func (r *Repository) Watch(ctx context.Context, logger *slog.Logger) (<-chan Event, error) {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("repository: create watcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("repository: watch %s: %w", r.dir, err)
	}

	events := make(chan Event, 64)
	go func() {
		defer close(events)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("repository watcher error", "error", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				name := filepath.Base(evt.Name)
				if Hidden(name) {
					continue
				}
				ev, ok := translate(name, evt.Op)
				if !ok {
					continue
				}
				select {
				case events <- ev:
				default:
				}
			}
		}
	}()

	return events, nil
}

func translate(name string, op fsnotify.Op) (Event, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Event{Name: name, Op: OpAdded}, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return Event{Name: name, Op: OpRemoved}, true
	case op.Has(fsnotify.Write):
		return Event{Name: name, Op: OpChanged}, true
	default:
		return Event{}, false
	}
}
