package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrLoopStopped is returned by Do after the loop has exited.
var ErrLoopStopped = errors.New("event loop stopped")

// Loop runs queued tasks one at a time on a single goroutine. Every piece of
// daemon state that is not otherwise synchronised (the open window set, probe
// bookkeeping, debounce timers) is touched only from inside Loop tasks.
//
// Post never blocks, so it is safe from X11 callbacks, timers and from tasks
// already running on the loop. Do waits for the task and must not be called
// from the loop goroutine.
type Loop struct {
	logger *slog.Logger

	mu      sync.Mutex
	queue   []func()
	stopped bool
	wake    chan struct{}
	done    chan struct{}
}

// NewLoop creates a loop. Call Run to start processing.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Post queues fn. It reports false when the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and returns its error.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("task panic: %v", r)
				panic(r)
			}
		}()
		result <- fn()
	}
	if !l.Post(task) {
		return ErrLoopStopped
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// The task may have run just before the loop exited.
		select {
		case err := <-result:
			return err
		default:
			return ErrLoopStopped
		}
	}
}

// Run processes tasks until ctx is cancelled. Tasks still queued at that
// point are run before Run returns so shutdown work posted by callers is not
// lost.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.stopped = true
			rest := l.queue
			l.queue = nil
			l.mu.Unlock()
			for _, fn := range rest {
				l.run(fn)
			}
			return
		case <-l.wake:
			for {
				fn, ok := l.next()
				if !ok {
					break
				}
				l.run(fn)
			}
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) run(fn func()) {
	// A failing task must not take the daemon down.
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("event loop task panic recovered", "error", fmt.Sprint(err))
		}
	}()
	fn()
}
