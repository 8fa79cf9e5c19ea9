package timeutil

import (
	"sync"
	"time"
)

// Task is a handle to a repeating scheduled callback.
type Task interface {
	// Cancel stops the task. Safe to call more than once; after Cancel
	// returns no further callbacks fire.
	Cancel()
}

// TickScheduler delivers a cancellable repeating callback carrying the time
// elapsed since the previous delivery. It replaces the one-shot
// change-notification primitive the interaction driver would otherwise have
// to re-arm on every tick.
type TickScheduler interface {
	// Every invokes fn roughly every interval, passing the measured elapsed
	// time since the last invocation (or since scheduling, for the first).
	Every(interval time.Duration, fn func(dt time.Duration)) Task
}

// TickerScheduler implements TickScheduler on a Clock-backed ticker. Each
// task runs on its own goroutine; callers that require single-context
// delivery (the interaction driver does) must confine callbacks themselves
// or use a ManualScheduler.
type TickerScheduler struct {
	clock Clock
}

// NewTickerScheduler returns a scheduler driven by clock. A nil clock uses
// the real clock.
func NewTickerScheduler(clock Clock) *TickerScheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &TickerScheduler{clock: clock}
}

// Every starts a ticker task. Elapsed time is measured with the scheduler's
// clock between deliveries, so late ticks report a proportionally larger dt.
func (s *TickerScheduler) Every(interval time.Duration, fn func(dt time.Duration)) Task {
	ticker := s.clock.NewTicker(interval)
	done := make(chan struct{})
	task := &tickerTask{ticker: ticker, done: done}

	go func() {
		last := s.clock.Now()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C():
				fn(now.Sub(last))
				last = now
			}
		}
	}()

	return task
}

type tickerTask struct {
	ticker Ticker
	once   sync.Once
	done   chan struct{}
}

func (t *tickerTask) Cancel() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}

// ManualScheduler is a deterministic TickScheduler for tests and offline
// replay: nothing fires until Advance is called, and callbacks run
// synchronously on the caller's goroutine in scheduling order.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

// NewManualScheduler creates an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every registers fn; it only runs via Advance.
func (s *ManualScheduler) Every(interval time.Duration, fn func(dt time.Duration)) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{sched: s, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance delivers one tick of elapsed time d to every active task.
// Callbacks may cancel their own task or schedule new ones. Cancelled tasks
// are compacted out afterwards so repeated schedule/cancel cycles do not
// grow the task list.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	tasks := make([]*manualTask, len(s.tasks))
	copy(tasks, s.tasks)
	s.mu.Unlock()

	for _, t := range tasks {
		if !t.cancelled() {
			t.fn(d)
		}
	}

	s.mu.Lock()
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled() {
			live = append(live, t)
		}
	}
	s.tasks = live
	s.mu.Unlock()
}

// AdvanceN delivers n ticks of elapsed time d each.
func (s *ManualScheduler) AdvanceN(n int, d time.Duration) {
	for i := 0; i < n; i++ {
		s.Advance(d)
	}
}

// ActiveTasks reports how many scheduled tasks have not been cancelled.
func (s *ManualScheduler) ActiveTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled() {
			n++
		}
	}
	return n
}

type manualTask struct {
	sched *ManualScheduler
	fn    func(dt time.Duration)

	mu   sync.Mutex
	done bool
}

func (t *manualTask) Cancel() {
	t.mu.Lock()
	t.done = true
	t.mu.Unlock()
}

func (t *manualTask) cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
