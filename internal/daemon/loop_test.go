package daemon

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l, cancel
}

func TestLoop_RunsTasksInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 0; i < 50; i++ {
		i := i
		l.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("Do: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 50 {
		t.Fatalf("ran %d tasks, want 50", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %d ran at position %d", v, i)
		}
	}
}

func TestLoop_DoReturnsError(t *testing.T) {
	l, _ := startLoop(t)
	want := errors.New("boom")
	if err := l.Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("Do error = %v, want %v", err, want)
	}
}

func TestLoop_PostFromInsideTask(t *testing.T) {
	l, _ := startLoop(t)
	done := make(chan struct{})
	l.Post(func() {
		l.Post(func() { close(done) })
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("nested Post never ran")
	}
}

func TestLoop_RecoversPanics(t *testing.T) {
	l, _ := startLoop(t)
	l.Post(func() { panic("task failure") })
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("loop did not survive panic: %v", err)
	}
}

func TestLoop_DoRecoversPanic(t *testing.T) {
	l, _ := startLoop(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := l.Do(ctx, func() error { panic("handler bug") })
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do error = %v, want the task panic", err)
	}
	if !strings.Contains(err.Error(), "handler bug") {
		t.Fatalf("Do error = %v, want it to carry the panic value", err)
	}
	if err := l.Do(ctx, func() error { return nil }); err != nil {
		t.Fatalf("loop did not survive panic: %v", err)
	}
}

func TestLoop_StoppedRejectsWork(t *testing.T) {
	l := NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	cancel()
	<-l.Done()

	if l.Post(func() {}) {
		t.Fatal("Post after stop should report false")
	}
	if err := l.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrLoopStopped) {
		t.Fatalf("Do after stop error = %v, want ErrLoopStopped", err)
	}
}

func TestLoop_DoHonoursContext(t *testing.T) {
	l, _ := startLoop(t)
	block := make(chan struct{})
	defer close(block)
	l.Post(func() { <-block })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Do(ctx, func() error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do error = %v, want deadline exceeded", err)
	}
}
