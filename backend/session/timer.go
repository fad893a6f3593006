package session

import (
	"sync"
	"time"
)

// CountdownTimer is the single logical ticker for one active attempt. It
// counts down from a duration, emitting the remaining time once per tick
// interval, and signals expiry exactly once when the value reaches zero.
// Pause stops emission without resetting the remaining value; Resume restarts
// from it. Calling Start while a loop is running cancels the previous loop
// first so two emitters never race on the same attempt.
type CountdownTimer struct {
	// TickInterval defaults to one second. Tests shorten it.
	TickInterval time.Duration

	onTick   func(remaining time.Duration)
	onExpire func()

	mu        sync.Mutex
	remaining time.Duration
	running   bool
	stop      chan struct{}
}

func NewCountdownTimer(onTick func(time.Duration), onExpire func()) *CountdownTimer {
	return &CountdownTimer{
		TickInterval: time.Second,
		onTick:       onTick,
		onExpire:     onExpire,
	}
}

// Start begins (or restarts) the countdown from d.
func (t *CountdownTimer) Start(d time.Duration) {
	t.mu.Lock()
	if t.stop != nil {
		close(t.stop)
	}
	t.remaining = d
	t.running = true
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go t.loop(stop)
}

// Pause halts emission, keeping the remaining value.
func (t *CountdownTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	close(t.stop)
	t.stop = nil
}

// Resume restarts emission from the last emitted remaining value.
func (t *CountdownTimer) Resume() {
	t.mu.Lock()
	if t.running || t.remaining <= 0 {
		t.mu.Unlock()
		return
	}
	t.running = true
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go t.loop(stop)
}

// Stop cancels the countdown entirely. No expiry signal is emitted.
func (t *CountdownTimer) Stop() {
	t.Pause()
}

func (t *CountdownTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *CountdownTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *CountdownTimer) loop(stop chan struct{}) {
	ticker := time.NewTicker(t.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if !t.running || t.stop != stop {
				t.mu.Unlock()
				return
			}
			t.remaining -= t.TickInterval
			remaining := t.remaining
			if remaining <= 0 {
				t.remaining = 0
				t.running = false
				t.stop = nil
				t.mu.Unlock()
				if t.onTick != nil {
					t.onTick(0)
				}
				if t.onExpire != nil {
					t.onExpire()
				}
				return
			}
			t.mu.Unlock()
			if t.onTick != nil {
				t.onTick(remaining)
			}
		}
	}
}
