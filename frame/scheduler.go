// Package frame provides a cooperative frame scheduler. Everything runs on
// the caller's goroutine: the owner calls Step once per rendered frame and
// the scheduler fires the callbacks and interval tickers that are due.
package frame

import "time"

// Scheduler owns one-shot frame callbacks and repeating tickers. It never
// spawns goroutines; all work happens inside Step.
type Scheduler struct {
	now       func() time.Time
	callbacks []*Callback
	tickers   []*Ticker
}

// NewScheduler creates a scheduler. A nil clock defaults to time.Now; tests
// inject a fake clock to step animations deterministically.
func NewScheduler(now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{now: now}
}

// Now reports the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// Callback is a handle to a pending frame callback.
type Callback struct {
	fn        func(now time.Time)
	cancelled bool
}

// Cancel drops the callback. Safe to call more than once, and safe to call
// after the callback already ran.
func (c *Callback) Cancel() {
	if c == nil {
		return
	}
	c.cancelled = true
	c.fn = nil
}

// Request registers fn to run on the next Step. A callback runs at most
// once; loops re-request themselves from inside fn.
func (s *Scheduler) Request(fn func(now time.Time)) *Callback {
	cb := &Callback{fn: fn}
	s.callbacks = append(s.callbacks, cb)
	return cb
}

// Ticker is a handle to a repeating interval.
type Ticker struct {
	interval time.Duration
	next     time.Time
	fn       func()
	stopped  bool
}

// Stop ends the ticker. Idempotent.
func (t *Ticker) Stop() {
	if t == nil {
		return
	}
	t.stopped = true
	t.fn = nil
}

// Every fires fn each time interval d elapses, evaluated during Step.
func (s *Scheduler) Every(d time.Duration, fn func()) *Ticker {
	t := &Ticker{interval: d, next: s.now().Add(d), fn: fn}
	s.tickers = append(s.tickers, t)
	return t
}

// Step runs the frame: every callback registered before this Step fires
// once, then due tickers fire. Callbacks requested or cancelled while Step
// runs take effect immediately within the same frame ordering rules as
// requestAnimationFrame.
func (s *Scheduler) Step() {
	now := s.now()

	pending := s.callbacks
	s.callbacks = nil
	for _, cb := range pending {
		if cb.cancelled || cb.fn == nil {
			continue
		}
		fn := cb.fn
		cb.fn = nil
		fn(now)
	}

	snapshot := s.tickers
	s.tickers = nil
	var live []*Ticker
	for _, t := range snapshot {
		if t.stopped {
			continue
		}
		if !now.Before(t.next) {
			t.next = now.Add(t.interval)
			t.fn()
		}
		if !t.stopped {
			live = append(live, t)
		}
	}
	// Tickers registered from inside a ticker or callback land in s.tickers
	// during the loop above; keep them.
	s.tickers = append(live, s.tickers...)
}
