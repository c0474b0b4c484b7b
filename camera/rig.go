// Package camera drives the arena camera: explicit focus calls, smooth
// per-frame interpolation toward the target pose, and an activity heat map
// that lets the crowd-scan mode find and follow the hottest seat on its own.
package camera

import (
	"time"

	"github.com/jakecoffman/cp"

	"github.com/stagefront/arena/common"
	"github.com/stagefront/arena/frame"
)

// Mode is the rig's current behavior.
type Mode string

const (
	ModeStageWide    Mode = "STAGE_WIDE"
	ModeArtistClose  Mode = "ARTIST_CLOSEUP"
	ModeCrowdReact   Mode = "CROWD_REACTION"
	ModeHotSeatFocus Mode = "HOT_SEAT_FOCUS"
	ModeSweep        Mode = "SWEEP"
	ModeManual       Mode = "MANUAL"
)

const (
	minZoom = 0.5
	maxZoom = 3.0

	hotSeatZoom = 1.5
)

// State is a snapshot of the rig pose: the desired target and the
// interpolated current position the renderer should use.
type State struct {
	Mode        Mode
	Target      cp.Vector
	Zoom        float64
	Current     cp.Vector
	CurrentZoom float64
}

// Config tunes the rig.
type Config struct {
	StageCenter        cp.Vector
	DefaultZoom        float64
	InterpolationSpeed float64 // fraction of remaining distance covered per Update
	ReducedMotion      bool    // accessibility: never auto-pan, snap instantly
	ScanInterval       time.Duration
}

// DefaultConfig returns the stock rig tuning.
func DefaultConfig() Config {
	return Config{
		StageCenter:        cp.Vector{X: 500, Y: 300},
		DefaultZoom:        1.0,
		InterpolationSpeed: 0.08,
		ScanInterval:       5 * time.Second,
	}
}

// SeatLookup resolves a seat id to its world position. The rig uses it
// during crowd scans; a nil lookup disables retargeting but not heat
// tracking.
type SeatLookup func(seatID string) (cp.Vector, bool)

// Rig is the stateful camera controller. One rig exists per arena session;
// it must only be touched from the frame scheduler's goroutine.
type Rig struct {
	cfg    Config
	sched  *frame.Scheduler
	lookup SeatLookup
	heat   *heatMap

	mode        Mode
	target      cp.Vector
	zoom        float64
	current     cp.Vector
	currentZoom float64

	scan      *frame.Ticker
	destroyed bool
}

func (c Config) normalized() Config {
	if c.DefaultZoom <= 0 {
		c.DefaultZoom = 1.0
	}
	if c.InterpolationSpeed <= 0 {
		c.InterpolationSpeed = 0.08
	}
	if c.ScanInterval <= 0 {
		c.ScanInterval = 5 * time.Second
	}
	return c
}

// NewRig creates a rig framed wide on the stage.
func NewRig(s *frame.Scheduler, cfg Config, lookup SeatLookup) *Rig {
	cfg = cfg.normalized()

	return &Rig{
		cfg:         cfg,
		sched:       s,
		lookup:      lookup,
		heat:        newHeatMap(),
		mode:        ModeStageWide,
		target:      cfg.StageCenter,
		zoom:        cfg.DefaultZoom,
		current:     cfg.StageCenter,
		currentZoom: cfg.DefaultZoom,
	}
}

// Retune swaps in a new configuration without disturbing the current
// mode or targets. A running crowd scan is restarted so it picks up the
// new interval.
func (r *Rig) Retune(cfg Config) {
	if r.destroyed {
		return
	}
	r.cfg = cfg.normalized()
	if r.scan != nil {
		r.stopScan()
		if !r.cfg.ReducedMotion {
			r.scan = r.sched.Every(r.cfg.ScanInterval, r.scanTick)
		}
	}
}

// FocusStage frames the whole stage at the default zoom.
func (r *Rig) FocusStage() {
	r.mode = ModeStageWide
	r.target = r.cfg.StageCenter
	r.zoom = r.cfg.DefaultZoom
}

// FocusSeat targets a single seat. A non-positive zoom uses the standard
// hot-seat close-up.
func (r *Rig) FocusSeat(pos cp.Vector, zoom float64) {
	if zoom <= 0 {
		zoom = hotSeatZoom
	}
	r.mode = ModeHotSeatFocus
	r.target = pos
	r.zoom = zoom
}

// CrowdScan starts the recurring sweep that retargets the hottest seat.
// A no-op under reduced motion: the camera never auto-pans for users who
// asked it not to.
func (r *Rig) CrowdScan() {
	if r.cfg.ReducedMotion || r.destroyed {
		return
	}

	r.mode = ModeSweep
	r.stopScan()
	r.scan = r.sched.Every(r.cfg.ScanInterval, r.scanTick)
}

func (r *Rig) scanTick() {
	if r.mode != ModeSweep {
		r.stopScan()
		return
	}

	hottest := r.HottestSeat()
	if hottest == nil || r.lookup == nil {
		return
	}
	pos, ok := r.lookup(hottest.SeatID)
	if !ok {
		return
	}
	// Retarget without leaving SWEEP so the scan keeps running.
	r.target = pos
	r.zoom = hotSeatZoom
}

// SetMode switches behavior, triggering the matching focus action.
func (r *Rig) SetMode(mode Mode) {
	r.mode = mode
	switch mode {
	case ModeStageWide:
		r.FocusStage()
	case ModeSweep:
		r.CrowdScan()
	}
}

// TrackActivity accumulates heat at a seat and decays stale entries.
func (r *Rig) TrackActivity(seatID string, kind ActivityKind) {
	r.heat.track(seatID, kind, r.sched.Now())
}

// HottestSeat returns the highest-scoring seat, or nil when no activity is
// tracked.
func (r *Rig) HottestSeat() *SeatHeat {
	r.heat.decay(r.sched.Now())
	return r.heat.hottest()
}

// Update advances the interpolated pose one frame and must be called at a
// consistent cadence; the easing covers a fixed fraction of the remaining
// distance per call, so an uneven cadence shows as uneven camera speed.
func (r *Rig) Update() State {
	r.heat.decay(r.sched.Now())

	if r.cfg.ReducedMotion {
		r.current = r.target
		r.currentZoom = r.zoom
		return r.State()
	}

	speed := r.cfg.InterpolationSpeed
	r.current.X += (r.target.X - r.current.X) * speed
	r.current.Y += (r.target.Y - r.current.Y) * speed
	r.currentZoom += (r.zoom - r.currentZoom) * speed

	return r.State()
}

// Pan nudges the target and hands control to the user.
func (r *Rig) Pan(dx, dy float64) {
	r.mode = ModeManual
	r.target.X += dx
	r.target.Y += dy
}

// ZoomTo sets the desired zoom, clamped to [0.5, 3.0]. The mode is left
// unchanged.
func (r *Rig) ZoomTo(zoom float64) {
	r.zoom = common.Clamp(zoom, minZoom, maxZoom)
}

// State returns a snapshot of the rig pose.
func (r *Rig) State() State {
	return State{
		Mode:        r.mode,
		Target:      r.target,
		Zoom:        r.zoom,
		Current:     r.current,
		CurrentZoom: r.currentZoom,
	}
}

// Destroy stops the scan ticker. Idempotent; a destroyed rig ignores
// further CrowdScan calls.
func (r *Rig) Destroy() {
	r.destroyed = true
	r.stopScan()
}

func (r *Rig) stopScan() {
	if r.scan != nil {
		r.scan.Stop()
		r.scan = nil
	}
}
