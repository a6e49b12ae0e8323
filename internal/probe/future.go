package probe

import (
	"context"
	"sync"
)

// Func probes one file.
type Func func(path string) (Dimensions, error)

// Future is an in-flight probe that can be cancelled. A cancelled future
// still completes, but Cancelled reports true and callers drop the result.
type Future struct {
	path   string
	ctx    context.Context
	cancel context.CancelFunc

	done chan struct{}
	once sync.Once
	dims Dimensions
	err  error
}

// Start runs fn for path on its own goroutine.
func Start(ctx context.Context, path string, fn Func) *Future {
	if fn == nil {
		fn = File
	}
	cctx, cancel := context.WithCancel(ctx)
	f := &Future{
		path:   path,
		ctx:    cctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		dims, err := fn(path)
		f.finish(dims, err)
	}()
	go func() {
		<-cctx.Done()
		f.finish(Dimensions{}, cctx.Err())
	}()
	return f
}

func (f *Future) finish(dims Dimensions, err error) {
	f.once.Do(func() {
		f.dims, f.err = dims, err
		close(f.done)
		f.cancel()
	})
}

// Path returns the probed file.
func (f *Future) Path() string {
	return f.path
}

// Done is closed once a result (or cancellation) is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Cancel abandons the probe.
func (f *Future) Cancel() {
	f.finish(Dimensions{}, context.Canceled)
}

// Cancelled reports whether the future ended because it was cancelled.
func (f *Future) Cancelled() bool {
	select {
	case <-f.done:
		return f.err == context.Canceled
	default:
		return false
	}
}

// Wait blocks until the future completes.
func (f *Future) Wait() (Dimensions, error) {
	<-f.done
	return f.dims, f.err
}
