package loop_test

import (
	"sync"
	"testing"
	"time"

	"github.com/utkarsh5026/weft/loop"
)

// startLoop runs l on its own goroutine and waits until it is
// executing callbacks.
func startLoop(t *testing.T, l *loop.Loop) {
	t.Helper()

	ready := make(chan struct{})
	l.Submit(func() { close(ready) })
	go func() { _ = l.Run() }()

	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatal("loop did not start")
	}
}

func TestLoop_SubmitRunsInOrder(t *testing.T) {
	l := loop.New()
	startLoop(t, l)
	defer l.Stop()

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	for i := 0; i < 10; i++ {
		i := i
		l.Submit(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			if i == 9 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callbacks did not run")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		if v != i {
			t.Errorf("position %d: expected %d, got %d", i, i, v)
		}
	}
}

func TestLoop_SubmitFromAnyGoroutine(t *testing.T) {
	l := loop.New()
	startLoop(t, l)
	defer l.Stop()

	const n = 50
	var wg sync.WaitGroup
	ran := make(chan struct{}, n)

	for range_i := 0; range_i < n; range_i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Submit(func() { ran <- struct{}{} })
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatalf("only %d of %d callbacks ran", i, n)
		}
	}
}

func TestLoop_IsLoopGoroutine(t *testing.T) {
	l := loop.New()
	startLoop(t, l)
	defer l.Stop()

	if l.IsLoopGoroutine() {
		t.Error("test goroutine misidentified as the loop goroutine")
	}

	res := make(chan bool, 1)
	l.Submit(func() { res <- l.IsLoopGoroutine() })

	select {
	case onLoop := <-res:
		if !onLoop {
			t.Error("loop goroutine not identified from inside a callback")
		}
	case <-time.After(time.Second):
		t.Fatal("callback did not run")
	}
}

func TestLoop_PanickingCallbackDoesNotKillLoop(t *testing.T) {
	l := loop.New()
	startLoop(t, l)
	defer l.Stop()

	l.Submit(func() { panic("boom") })

	ran := make(chan struct{})
	l.Submit(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("loop stopped executing after a panicking callback")
	}
}

func TestLoop_SubmitAfterStopIsDropped(t *testing.T) {
	l := loop.New()
	startLoop(t, l)

	l.Stop()
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	ran := make(chan struct{}, 1)
	l.Submit(func() { ran <- struct{}{} })

	select {
	case <-ran:
		t.Fatal("callback ran after loop stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoop_StopFromCallback(t *testing.T) {
	l := loop.New()
	startLoop(t, l)

	l.Submit(func() { l.Stop() })

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop from its own callback")
	}
}

func TestLoop_RunTwice(t *testing.T) {
	l := loop.New()
	startLoop(t, l)
	defer l.Stop()

	if err := l.Run(); err != loop.ErrAlreadyRunning {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestLoop_ResubmittingCallbackDoesNotStarveOthers(t *testing.T) {
	l := loop.New()
	startLoop(t, l)
	defer l.Stop()

	// A callback that always resubmits itself lands in the next
	// iteration's snapshot, so a callback submitted after it must get
	// its turn.
	stop := make(chan struct{})
	var resubmit func()
	resubmit = func() {
		select {
		case <-stop:
		default:
			l.Submit(resubmit)
		}
	}
	l.Submit(resubmit)

	ran := make(chan struct{})
	l.Submit(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("later callback starved by a resubmitting one")
	}
	close(stop)
}
