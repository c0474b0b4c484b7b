package anim

import (
	"math"
	"testing"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/stagefront/arena/frame"
)

type clock struct {
	t time.Time
}

func newClock() *clock { return &clock{t: time.Unix(5000, 0)} }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func step(s *frame.Scheduler, c *clock, d time.Duration) {
	c.advance(d)
	s.Step()
}

func TestAnimateToSeatCompletesExactly(t *testing.T) {
	c := newClock()
	s := frame.NewScheduler(c.now)

	var updates []State
	doneCalls := 0
	AnimateToSeat(s, cp.Vector{}, cp.Vector{X: 100}, func(st State) {
		updates = append(updates, st)
	}, func() { doneCalls++ }, DefaultConfig())

	// Walk phase at ~60fps.
	for elapsed := time.Duration(0); elapsed < 1200*time.Millisecond; elapsed += 16 * time.Millisecond {
		step(s, c, 16*time.Millisecond)
	}
	// Land exactly on the walk boundary, then run out the settle.
	step(s, c, 8*time.Millisecond) // 1208ms total: progress clamped to 1
	arrival := updates[len(updates)-1]
	if arrival.Progress != 1 {
		t.Fatalf("expected walk progress 1 at arrival, got %v", arrival.Progress)
	}
	if arrival.Position.X != 100 || arrival.Position.Y != 0 || arrival.Tilt != 0 {
		t.Fatalf("arrival pose = %+v, want x=100 y=0 tilt=0", arrival)
	}
	if doneCalls != 0 {
		t.Fatalf("onDone fired before settle completed")
	}

	for i := 0; i < 30; i++ {
		step(s, c, 16*time.Millisecond)
	}

	if doneCalls != 1 {
		t.Fatalf("onDone fired %d times, want exactly 1", doneCalls)
	}
	final := updates[len(updates)-1]
	want := State{Position: cp.Vector{X: 100}, Tilt: 0, Scale: 1, Progress: 1}
	if final != want {
		t.Fatalf("final state = %+v, want %+v", final, want)
	}
}

func TestAnimateToSeatWobbleFadesOut(t *testing.T) {
	c := newClock()
	s := frame.NewScheduler(c.now)

	cfg := DefaultConfig()
	var midTilt, lateTilt float64
	AnimateToSeat(s, cp.Vector{}, cp.Vector{X: 100}, func(st State) {
		if st.Progress > 0.2 && st.Progress < 0.5 && math.Abs(st.Tilt) > math.Abs(midTilt) {
			midTilt = st.Tilt
		}
		if st.Progress >= 1 {
			lateTilt = st.Tilt
		}
	}, func() {}, cfg)

	for i := 0; i < 120; i++ {
		step(s, c, 16*time.Millisecond)
	}

	if midTilt == 0 {
		t.Fatal("expected some wobble during the walk")
	}
	if lateTilt != 0 {
		t.Fatalf("tilt at arrival = %v, want 0", lateTilt)
	}
}

func TestAnimateToSeatCancelMidWalk(t *testing.T) {
	c := newClock()
	s := frame.NewScheduler(c.now)

	updates := 0
	done := 0
	cancel := AnimateToSeat(s, cp.Vector{}, cp.Vector{X: 100}, func(State) { updates++ }, func() { done++ }, DefaultConfig())

	step(s, c, 16*time.Millisecond)
	step(s, c, 16*time.Millisecond)
	seen := updates

	cancel()
	cancel() // double-cancel must be a safe no-op

	for i := 0; i < 200; i++ {
		step(s, c, 16*time.Millisecond)
	}

	if updates != seen {
		t.Fatalf("onUpdate called after cancel: %d -> %d", seen, updates)
	}
	if done != 0 {
		t.Fatalf("onDone called after cancel")
	}
}

func TestAnimateToSeatSettleScaleBounces(t *testing.T) {
	c := newClock()
	s := frame.NewScheduler(c.now)

	sawOvershoot := false
	AnimateToSeat(s, cp.Vector{}, cp.Vector{X: 50}, func(st State) {
		if st.Progress >= 1 && st.Scale > 1 {
			sawOvershoot = true
			if st.Scale > 1.15+1e-9 {
				t.Fatalf("settle scale %v exceeds 1+BounceSettleAmount", st.Scale)
			}
		}
	}, func() {}, DefaultConfig())

	for i := 0; i < 120; i++ {
		step(s, c, 16*time.Millisecond)
	}

	if !sawOvershoot {
		t.Fatal("expected scale overshoot during settle")
	}
}

func TestPartialConfigKeepsDefaultTuning(t *testing.T) {
	c := newClock()
	s := frame.NewScheduler(c.now)

	// Only the duration is tuned; wobble and settle must still happen.
	cfg := Config{Duration: 600 * time.Millisecond}
	sawWobble := false
	sawSettle := false
	done := 0
	AnimateToSeat(s, cp.Vector{}, cp.Vector{X: 100}, func(st State) {
		if st.Progress < 1 && st.Tilt != 0 {
			sawWobble = true
		}
		if st.Progress >= 1 && st.Scale > 1 {
			sawSettle = true
		}
	}, func() { done++ }, cfg)

	for i := 0; i < 80; i++ {
		step(s, c, 16*time.Millisecond)
	}

	if !sawWobble {
		t.Fatal("partial config should keep the default wobble")
	}
	if !sawSettle {
		t.Fatal("partial config should keep the default settle bounce")
	}
	if done != 1 {
		t.Fatalf("onDone fired %d times, want 1", done)
	}
}

func TestAnimatePopIn(t *testing.T) {
	c := newClock()
	s := frame.NewScheduler(c.now)

	pos := cp.Vector{X: 30, Y: 40}
	var states []State
	done := 0
	AnimatePopIn(s, pos, func(st State) { states = append(states, st) }, func() { done++ }, 0)

	for i := 0; i < 40; i++ {
		step(s, c, 16*time.Millisecond)
	}

	if done != 1 {
		t.Fatalf("onDone fired %d times, want 1", done)
	}
	for _, st := range states {
		if st.Position != pos {
			t.Fatalf("pop-in moved the avatar: %+v", st.Position)
		}
		if st.Tilt != 0 {
			t.Fatalf("pop-in tilted the avatar: %v", st.Tilt)
		}
	}
	final := states[len(states)-1]
	if final.Scale != 1 || final.Progress != 1 {
		t.Fatalf("final pop-in state = %+v", final)
	}
}

func TestAnimateWalkOut(t *testing.T) {
	cases := []struct {
		name string
		dir  ExitDirection
		want cp.Vector
	}{
		{"left", ExitLeft, cp.Vector{X: -100}},
		{"right", ExitRight, cp.Vector{X: 300}},
		{"back", ExitBack, cp.Vector{X: 100, Y: -200}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClock()
			s := frame.NewScheduler(c.now)

			from := cp.Vector{X: 100}
			var last State
			done := 0
			AnimateWalkOut(s, from, tc.dir, func(st State) { last = st }, func() { done++ }, 0)

			for i := 0; i < 80; i++ {
				step(s, c, 16*time.Millisecond)
			}

			if done != 1 {
				t.Fatalf("onDone fired %d times, want 1", done)
			}
			if last.Position != tc.want {
				t.Fatalf("exit position = %+v, want %+v", last.Position, tc.want)
			}
			if math.Abs(last.Scale-0.7) > 1e-9 {
				t.Fatalf("exit scale = %v, want 0.7", last.Scale)
			}
		})
	}
}
