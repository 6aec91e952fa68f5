package bridge_test

import (
	"errors"
	"testing"
	"time"

	"github.com/utkarsh5026/weft/bridge"
	"github.com/utkarsh5026/weft/loop"
	"github.com/utkarsh5026/weft/pool"
)

// newBridge starts a loop and a small pool and ties them together,
// tearing both down when the test ends.
func newBridge(t *testing.T) *bridge.Bridge {
	t.Helper()

	l := loop.New()
	ready := make(chan struct{})
	l.Submit(func() { close(ready) })
	go func() { _ = l.Run() }()
	<-ready
	t.Cleanup(func() {
		l.Stop()
		<-l.Done()
	})

	p, err := pool.New(1, 2)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("failed to start pool: %v", err)
	}
	t.Cleanup(func() { _ = p.Stop(time.Second) })

	return bridge.New(l, p)
}

func TestDefer_DeliversValue(t *testing.T) {
	b := newBridge(t)

	fut := bridge.Defer(b, func() (int, error) {
		time.Sleep(10 * time.Millisecond) // pretend to block
		return 42, nil
	})

	v, err := fut.GetWithTimeout(time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Errorf("expected 42, got %d", v)
	}
}

func TestDefer_DeliversError(t *testing.T) {
	b := newBridge(t)
	want := errors.New("resolution failed")

	fut := bridge.Defer(b, func() (string, error) {
		return "", want
	})

	_, err := fut.GetWithTimeout(time.Second)
	if !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
}

func TestDefer_ObserverRunsOnLoopGoroutine(t *testing.T) {
	b := newBridge(t)

	onLoop := make(chan bool, 1)
	fut := bridge.Defer(b, func() (int, error) { return 1, nil })
	fut.Observe(func(int, error) {
		onLoop <- b.Loop().IsLoopGoroutine()
	})

	select {
	case ok := <-onLoop:
		if !ok {
			t.Error("observer ran off the loop goroutine")
		}
	case <-time.After(time.Second):
		t.Fatal("observer never ran")
	}
}

func TestDefer_PanicBecomesPanicError(t *testing.T) {
	b := newBridge(t)

	fut := bridge.Defer(b, func() (int, error) {
		panic("worker blew up")
	})

	_, err := fut.GetWithTimeout(time.Second)
	var pe bridge.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PanicError, got %v", err)
	}
	if pe.Value != "worker blew up" {
		t.Errorf("expected panic value to round-trip, got %v", pe.Value)
	}
}

func TestDefer_StoppedPoolFailsFuture(t *testing.T) {
	b := newBridge(t)
	if err := b.Pool().Stop(time.Second); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	fut := bridge.Defer(b, func() (int, error) { return 1, nil })

	_, err := fut.GetWithTimeout(time.Second)
	if !errors.Is(err, pool.ErrPoolStopped) {
		t.Errorf("expected ErrPoolStopped, got %v", err)
	}
}

func TestBlockingCall_RoundTrip(t *testing.T) {
	b := newBridge(t)

	v, err := bridge.BlockingCall(b, func() (string, error) {
		if !b.Loop().IsLoopGoroutine() {
			t.Error("task ran off the loop goroutine")
		}
		return "state", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "state" {
		t.Errorf("expected %q, got %q", "state", v)
	}
}

func TestBlockingCall_PropagatesError(t *testing.T) {
	b := newBridge(t)
	want := errors.New("no such entry")

	_, err := bridge.BlockingCall(b, func() (int, error) {
		return 0, want
	})
	if !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
}

func TestBlockingCall_PanicBecomesPanicError(t *testing.T) {
	b := newBridge(t)

	_, err := bridge.BlockingCall(b, func() (int, error) {
		panic("loop callback blew up")
	})
	var pe bridge.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PanicError, got %v", err)
	}
}

func TestBlockingCall_FromLoopGoroutine(t *testing.T) {
	b := newBridge(t)

	got := make(chan error, 1)
	b.Loop().Submit(func() {
		_, err := bridge.BlockingCall(b, func() (int, error) {
			return 0, nil
		})
		got <- err
	})

	select {
	case err := <-got:
		if !errors.Is(err, bridge.ErrWrongThread) {
			t.Errorf("expected ErrWrongThread, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("loop callback never ran")
	}
}

func TestBlockingCall_LoopStopsBeforeTask(t *testing.T) {
	b := newBridge(t)

	// Occupy the loop so the blocking call's task stays queued, stop
	// the loop, then let the loop goroutine notice the stop.
	blocked := make(chan struct{})
	release := make(chan struct{})
	b.Loop().Submit(func() {
		close(blocked)
		<-release
	})
	<-blocked

	got := make(chan error, 1)
	go func() {
		_, err := bridge.BlockingCall(b, func() (int, error) {
			return 0, nil
		})
		got <- err
	}()

	time.Sleep(10 * time.Millisecond)
	b.Loop().Stop()
	close(release)

	select {
	case err := <-got:
		if !errors.Is(err, bridge.ErrLoopUnavailable) {
			t.Errorf("expected ErrLoopUnavailable, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocking call never returned")
	}
}

func TestBlockingCallFuture_WaitsForSettlement(t *testing.T) {
	b := newBridge(t)

	v, err := bridge.BlockingCallFuture(b, func() *bridge.Future[int] {
		// Kick off a second pool hop from the loop and hand back its
		// future; the caller blocks until that settles.
		return bridge.Defer(b, func() (int, error) {
			time.Sleep(10 * time.Millisecond)
			return 99, nil
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 99 {
		t.Errorf("expected 99, got %d", v)
	}
}

func TestBlockingCallFuture_NilFuture(t *testing.T) {
	b := newBridge(t)

	_, err := bridge.BlockingCallFuture(b, func() *bridge.Future[int] {
		return nil
	})
	if !errors.Is(err, bridge.ErrNilFuture) {
		t.Errorf("expected ErrNilFuture, got %v", err)
	}
}

func TestBlockingCallFuture_FromLoopGoroutine(t *testing.T) {
	b := newBridge(t)

	got := make(chan error, 1)
	b.Loop().Submit(func() {
		_, err := bridge.BlockingCallFuture(b, func() *bridge.Future[int] {
			return bridge.NewFuture[int]()
		})
		got <- err
	})

	select {
	case err := <-got:
		if !errors.Is(err, bridge.ErrWrongThread) {
			t.Errorf("expected ErrWrongThread, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("loop callback never ran")
	}
}
