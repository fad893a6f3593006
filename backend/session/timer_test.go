package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownTimerExpires(t *testing.T) {
	var mu sync.Mutex
	var ticks []time.Duration
	expired := make(chan struct{})

	timer := NewCountdownTimer(func(remaining time.Duration) {
		mu.Lock()
		ticks = append(ticks, remaining)
		mu.Unlock()
	}, func() {
		close(expired)
	})
	timer.TickInterval = 10 * time.Millisecond

	timer.Start(50 * time.Millisecond)

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not expire")
	}

	assert.Equal(t, time.Duration(0), timer.Remaining())
	assert.False(t, timer.Running())

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, ticks)
	assert.Equal(t, time.Duration(0), ticks[len(ticks)-1], "final tick reports zero")
	for i := 1; i < len(ticks); i++ {
		assert.Less(t, ticks[i], ticks[i-1], "remaining must strictly decrease")
	}
}

func TestCountdownTimerPauseKeepsRemaining(t *testing.T) {
	timer := NewCountdownTimer(nil, nil)
	timer.TickInterval = 10 * time.Millisecond

	timer.Start(time.Second)
	time.Sleep(50 * time.Millisecond)
	timer.Pause()

	remaining := timer.Remaining()
	assert.False(t, timer.Running())
	assert.Greater(t, remaining, time.Duration(0))
	assert.Less(t, remaining, time.Second)

	// Paused: value must hold still
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, remaining, timer.Remaining())

	timer.Resume()
	assert.True(t, timer.Running())
	time.Sleep(50 * time.Millisecond)
	timer.Stop()
	assert.Less(t, timer.Remaining(), remaining)
}

func TestCountdownTimerStopSuppressesExpiry(t *testing.T) {
	expired := make(chan struct{})
	timer := NewCountdownTimer(nil, func() { close(expired) })
	timer.TickInterval = 10 * time.Millisecond

	timer.Start(50 * time.Millisecond)
	timer.Stop()

	select {
	case <-expired:
		t.Fatal("expiry fired after Stop")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestCountdownTimerRestartCancelsPreviousLoop(t *testing.T) {
	expired := make(chan struct{}, 2)
	timer := NewCountdownTimer(nil, func() { expired <- struct{}{} })
	timer.TickInterval = 10 * time.Millisecond

	timer.Start(time.Hour)
	timer.Start(40 * time.Millisecond)

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("restarted timer did not expire")
	}

	// The first loop must not fire a second expiry
	select {
	case <-expired:
		t.Fatal("stale loop emitted an expiry")
	case <-time.After(100 * time.Millisecond):
	}
}
