package emote

import (
	"math"
	"time"

	"github.com/jakecoffman/cp"
)

const (
	riseDistance  = 60.0
	fadeStart     = 0.8
	pulseAmount   = 0.3
	particleCount = 6
	particleUntil = 0.6
)

// Instance is one live emote burst anchored above an avatar.
type Instance struct {
	ID        string
	UserID    string
	Kind      string
	Position  cp.Vector
	StartTime time.Time
	Duration  time.Duration
}

// Frame is the render state of an instance at a point in time.
type Frame struct {
	Position  cp.Vector
	Opacity   float64
	Scale     float64
	Particles []cp.Vector
	Done      bool
}

// Layout computes the render state for the instance at now. The emote
// rises as it plays, fades over the last fifth of its life, and pulses
// around its base scale. Particles orbit only during the first part of
// the burst.
func (i Instance) Layout(now time.Time, baseScale float64) Frame {
	if i.Duration <= 0 {
		i.Duration = 2 * time.Second
	}
	p := float64(now.Sub(i.StartTime)) / float64(i.Duration)
	if p >= 1 {
		return Frame{Done: true}
	}
	if p < 0 {
		p = 0
	}

	f := Frame{
		Position: cp.Vector{X: i.Position.X, Y: i.Position.Y - riseDistance*p},
		Opacity:  1,
		Scale:    baseScale * (1 + pulseAmount*math.Sin(p*math.Pi)),
	}
	if p > fadeStart {
		f.Opacity = 1 - (p-fadeStart)/(1-fadeStart)
	}
	if p < particleUntil {
		f.Particles = particlePositions(f.Position, p)
	}
	return f
}

// particlePositions spreads a ring of particles that drifts outward as
// the burst plays.
func particlePositions(center cp.Vector, progress float64) []cp.Vector {
	radius := 12 + 30*progress
	out := make([]cp.Vector, particleCount)
	for n := 0; n < particleCount; n++ {
		angle := float64(n)/particleCount*2*math.Pi + progress*math.Pi
		out[n] = cp.Vector{
			X: center.X + math.Cos(angle)*radius,
			Y: center.Y + math.Sin(angle)*radius,
		}
	}
	return out
}
