package tests

import (
	"sync"
	"time"
)

// ManualTimer is a backoff timer recording the requested spacing. When
// firing, every started wait elapses immediately, otherwise waits never
// elapse.
type ManualTimer struct {
	sync.Mutex

	ch        chan time.Time
	startedCh chan struct{}
	fire      bool
	starts    []time.Duration
}

// NewManualTimer creates a new manual timer.
func NewManualTimer(fire bool) *ManualTimer {
	return &ManualTimer{
		ch:        make(chan time.Time, 1),
		startedCh: make(chan struct{}, 64),
		fire:      fire,
	}
}

// Start implements backoff.Timer.
func (t *ManualTimer) Start(d time.Duration) {
	t.Lock()
	t.starts = append(t.starts, d)
	t.Unlock()

	select {
	case t.startedCh <- struct{}{}:
	default:
	}
	if t.fire {
		t.ch <- time.Now()
	}
}

// Stop implements backoff.Timer.
func (t *ManualTimer) Stop() {}

// C implements backoff.Timer.
func (t *ManualTimer) C() <-chan time.Time {
	return t.ch
}

// Started is signalled every time a wait is started.
func (t *ManualTimer) Started() <-chan struct{} {
	return t.startedCh
}

// Starts returns the requested waits.
func (t *ManualTimer) Starts() []time.Duration {
	t.Lock()
	defer t.Unlock()
	return append([]time.Duration{}, t.starts...)
}
