// Package anim animates avatars between spawn points and seats: a wobbling
// walk-in, a bounce pop-in for rejoining users, and a walk-out toward an
// exit. Animations are stepped by a frame.Scheduler and report poses through
// callbacks; every animation returns a cancel func that stops delivery
// immediately.
package anim

import (
	"math"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/stagefront/arena/common"
	"github.com/stagefront/arena/frame"
)

// State is the transient pose of an avatar in transit. It exists only while
// an animation runs; the final walk-in state is always exactly
// {Position: to, Tilt: 0, Scale: 1, Progress: 1}.
type State struct {
	Position cp.Vector
	Tilt     float64 // degrees
	Scale    float64
	Progress float64 // 0..1 over the primary phase
}

// Config shapes the walk-in.
type Config struct {
	Duration             time.Duration
	WobbleAmount         float64 // peak tilt in degrees
	WobbleSpeed          float64 // oscillations per second
	BounceSettleAmount   float64 // extra scale at settle start
	BounceSettleDuration time.Duration
}

// DefaultConfig returns the stock walk-in tuning.
func DefaultConfig() Config {
	return Config{
		Duration:             1200 * time.Millisecond,
		WobbleAmount:         8,
		WobbleSpeed:          4,
		BounceSettleAmount:   0.15,
		BounceSettleDuration: 300 * time.Millisecond,
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Duration <= 0 {
		c.Duration = def.Duration
	}
	if c.WobbleAmount <= 0 {
		c.WobbleAmount = def.WobbleAmount
	}
	if c.WobbleSpeed <= 0 {
		c.WobbleSpeed = def.WobbleSpeed
	}
	if c.BounceSettleAmount <= 0 {
		c.BounceSettleAmount = def.BounceSettleAmount
	}
	if c.BounceSettleDuration <= 0 {
		c.BounceSettleDuration = def.BounceSettleDuration
	}
	return c
}

// CancelFunc stops an animation. No onUpdate or onDone calls happen after it
// returns; calling it again is a no-op.
type CancelFunc func()

// AnimateToSeat walks an avatar from from to to with a side-to-side wobble
// that fades out on arrival, then settles with a small bounce. onDone fires
// exactly once, after the final exact pose has been reported.
func AnimateToSeat(s *frame.Scheduler, from, to cp.Vector, onUpdate func(State), onDone func(), cfg Config) CancelFunc {
	cfg = cfg.normalized()

	start := s.Now()
	var (
		cb          *frame.Callback
		settling    bool
		settleStart time.Time
		cancelled   bool
	)

	var tick func(now time.Time)
	tick = func(now time.Time) {
		if cancelled {
			return
		}

		if !settling {
			elapsed := now.Sub(start)
			progress := math.Min(float64(elapsed)/float64(cfg.Duration), 1)
			eased := common.EaseInOutCubic(progress)

			pos := cp.Vector{
				X: common.Lerp(from.X, to.X, eased),
				Y: common.Lerp(from.Y, to.Y, eased),
			}

			// Wobble fades to zero as the avatar arrives, with a slight
			// backward lean while walking.
			wobblePhase := elapsed.Seconds() * cfg.WobbleSpeed * 2 * math.Pi
			tilt := math.Sin(wobblePhase) * cfg.WobbleAmount * (1 - progress)
			lean := -cfg.WobbleAmount * 0.5 * (1 - progress)

			onUpdate(State{Position: pos, Tilt: tilt + lean, Scale: 1, Progress: progress})

			if progress >= 1 {
				settling = true
				settleStart = now
			}
			cb = s.Request(tick)
			return
		}

		settleProgress := math.Min(float64(now.Sub(settleStart))/float64(cfg.BounceSettleDuration), 1)
		scale := 1 + cfg.BounceSettleAmount*(1-common.BounceOut(settleProgress))

		onUpdate(State{Position: to, Tilt: 0, Scale: scale, Progress: 1})

		if settleProgress >= 1 {
			onUpdate(State{Position: to, Tilt: 0, Scale: 1, Progress: 1})
			onDone()
			return
		}
		cb = s.Request(tick)
	}

	cb = s.Request(tick)

	return func() {
		cancelled = true
		cb.Cancel()
	}
}

// AnimatePopIn grows an avatar from nothing at a fixed position, with a
// bounce. Used for rejoining users who should not re-walk. A non-positive
// duration defaults to 400ms.
func AnimatePopIn(s *frame.Scheduler, position cp.Vector, onUpdate func(State), onDone func(), duration time.Duration) CancelFunc {
	if duration <= 0 {
		duration = 400 * time.Millisecond
	}

	start := s.Now()
	var (
		cb        *frame.Callback
		cancelled bool
	)

	var tick func(now time.Time)
	tick = func(now time.Time) {
		if cancelled {
			return
		}

		progress := math.Min(float64(now.Sub(start))/float64(duration), 1)
		scale := common.BounceOut(progress)

		onUpdate(State{Position: position, Tilt: 0, Scale: scale, Progress: progress})

		if progress >= 1 {
			onUpdate(State{Position: position, Tilt: 0, Scale: 1, Progress: 1})
			onDone()
			return
		}
		cb = s.Request(tick)
	}

	cb = s.Request(tick)

	return func() {
		cancelled = true
		cb.Cancel()
	}
}

// ExitDirection selects which way a leaving avatar walks.
type ExitDirection string

const (
	ExitLeft  ExitDirection = "LEFT"
	ExitRight ExitDirection = "RIGHT"
	ExitBack  ExitDirection = "BACK"
)

func exitOffset(dir ExitDirection) cp.Vector {
	switch dir {
	case ExitLeft:
		return cp.Vector{X: -200}
	case ExitRight:
		return cp.Vector{X: 200}
	default:
		return cp.Vector{Y: -200}
	}
}

// AnimateWalkOut walks an avatar a fixed offset toward an exit, wobbling the
// whole way and shrinking to 70% scale. There is no settle phase. A
// non-positive duration defaults to 800ms.
func AnimateWalkOut(s *frame.Scheduler, from cp.Vector, dir ExitDirection, onUpdate func(State), onDone func(), duration time.Duration) CancelFunc {
	if duration <= 0 {
		duration = 800 * time.Millisecond
	}

	to := from.Add(exitOffset(dir))
	start := s.Now()
	var (
		cb        *frame.Callback
		cancelled bool
	)

	var tick func(now time.Time)
	tick = func(now time.Time) {
		if cancelled {
			return
		}

		elapsed := now.Sub(start)
		progress := math.Min(float64(elapsed)/float64(duration), 1)
		eased := common.EaseInOutCubic(progress)

		pos := cp.Vector{
			X: common.Lerp(from.X, to.X, eased),
			Y: common.Lerp(from.Y, to.Y, eased),
		}

		// Continuous wobble; unlike the walk-in it does not fade.
		wobblePhase := elapsed.Seconds() * 4 * 2 * math.Pi
		tilt := math.Sin(wobblePhase) * 6

		scale := 1 - progress*0.3

		onUpdate(State{Position: pos, Tilt: tilt, Scale: scale, Progress: progress})

		if progress >= 1 {
			onDone()
			return
		}
		cb = s.Request(tick)
	}

	cb = s.Request(tick)

	return func() {
		cancelled = true
		cb.Cancel()
	}
}
