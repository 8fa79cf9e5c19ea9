package timeutil

import (
	"sync"
	"testing"
	"time"
)

func TestManualScheduler_AdvanceDeliversElapsed(t *testing.T) {
	sched := NewManualScheduler()

	var got []time.Duration
	sched.Every(16*time.Millisecond, func(dt time.Duration) {
		got = append(got, dt)
	})

	sched.Advance(16 * time.Millisecond)
	sched.Advance(33 * time.Millisecond)

	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
	if got[0] != 16*time.Millisecond || got[1] != 33*time.Millisecond {
		t.Errorf("elapsed times = %v", got)
	}
}

func TestManualScheduler_CancelStopsDelivery(t *testing.T) {
	sched := NewManualScheduler()

	count := 0
	task := sched.Every(time.Millisecond, func(dt time.Duration) {
		count++
	})

	sched.Advance(time.Millisecond)
	task.Cancel()
	sched.Advance(time.Millisecond)

	if count != 1 {
		t.Errorf("expected 1 delivery after cancel, got %d", count)
	}
	if sched.ActiveTasks() != 0 {
		t.Errorf("expected 0 active tasks, got %d", sched.ActiveTasks())
	}
}

func TestManualScheduler_SelfCancelInsideCallback(t *testing.T) {
	sched := NewManualScheduler()

	count := 0
	var task Task
	task = sched.Every(time.Millisecond, func(dt time.Duration) {
		count++
		task.Cancel()
	})

	sched.AdvanceN(3, time.Millisecond)
	if count != 1 {
		t.Errorf("self-cancelling task ran %d times, want 1", count)
	}
}

func TestManualScheduler_CompactsCancelledTasks(t *testing.T) {
	sched := NewManualScheduler()

	// Repeated schedule/cancel cycles, as one driver session per replay
	// produces, must not accumulate dead entries.
	for i := 0; i < 100; i++ {
		task := sched.Every(time.Millisecond, func(dt time.Duration) {})
		task.Cancel()
		sched.Advance(time.Millisecond)
	}

	sched.mu.Lock()
	held := len(sched.tasks)
	sched.mu.Unlock()
	if held != 0 {
		t.Errorf("scheduler holds %d cancelled tasks, want 0", held)
	}
}

func TestTickerScheduler_DeliversAndCancels(t *testing.T) {
	sched := NewTickerScheduler(RealClock{})

	var mu sync.Mutex
	fired := 0
	task := sched.Every(5*time.Millisecond, func(dt time.Duration) {
		mu.Lock()
		fired++
		mu.Unlock()
		if dt <= 0 {
			t.Errorf("non-positive elapsed time %v", dt)
		}
	})

	time.Sleep(40 * time.Millisecond)
	task.Cancel()

	mu.Lock()
	after := fired
	mu.Unlock()
	if after == 0 {
		t.Fatal("ticker task never fired")
	}

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	final := fired
	mu.Unlock()
	// One in-flight tick may land just after Cancel; no more than that.
	if final > after+1 {
		t.Errorf("task kept firing after cancel: %d -> %d", after, final)
	}

	task.Cancel() // double cancel must not panic
}
