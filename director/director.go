// Package director plays scripted camera shows. Shows are tengo
// scripts that define a step function; the director compiles a show
// once and re-runs the compiled program every frame with fresh
// bindings.
package director

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/stagefront/arena/camera"
	"github.com/stagefront/arena/layout"
)

const showDispatchScript = `
if __phase == "step" {
	step(__cam, __elapsed, __state)
}
`

type show struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	started  time.Time
	duration time.Duration
}

// Director binds camera shows to a rig. One show plays at a time;
// starting a new show replaces the current one.
type Director struct {
	rig     *camera.Rig
	lookup  camera.SeatLookup
	now     func() time.Time
	current *show
	cache   map[string]*show
}

func New(rig *camera.Rig, lookup camera.SeatLookup, now func() time.Time) *Director {
	if now == nil {
		now = time.Now
	}
	return &Director{
		rig:    rig,
		lookup: lookup,
		now:    now,
		cache:  make(map[string]*show),
	}
}

// Play compiles and starts the named show. The script is compiled once
// and cached; replaying a show resets its clock and state.
func (d *Director) Play(name string) error {
	sh, err := d.getShow(name)
	if err != nil {
		return err
	}
	sh.started = d.now()
	sh.state = &tengo.Map{Value: map[string]tengo.Object{}}
	d.current = sh
	return nil
}

// Playing reports the name of the active show, if any.
func (d *Director) Playing() (string, bool) {
	if d.current == nil {
		return "", false
	}
	return d.current.name, true
}

// Stop abandons the active show without touching the camera.
func (d *Director) Stop() {
	d.current = nil
}

// Invalidate drops the compiled script for the named show so the next
// Play recompiles it from disk. The show restarts if it was running.
func (d *Director) Invalidate(name string) {
	delete(d.cache, name)
	if d.current != nil && d.current.name == name {
		d.current = nil
		if err := d.Play(name); err != nil {
			log.Printf("director: reload %s: %v", name, err)
		}
	}
}

// Step advances the active show by one frame. A script error stops the
// show; the camera keeps whatever target the script last set.
func (d *Director) Step() {
	sh := d.current
	if sh == nil {
		return
	}

	elapsed := d.now().Sub(sh.started)
	if sh.duration > 0 && elapsed >= sh.duration {
		d.current = nil
		return
	}

	ended := false
	engine := d.buildShowEngine(&ended)
	if err := runPhase(sh, "step", engine, elapsed.Seconds()); err != nil {
		log.Printf("director: show %s: %v", sh.name, err)
		d.current = nil
		return
	}
	if ended {
		d.current = nil
	}
}

func (d *Director) getShow(name string) (*show, error) {
	if sh, ok := d.cache[name]; ok {
		return sh, nil
	}

	src, err := layout.LoadShow(name)
	if err != nil {
		return nil, fmt.Errorf("director: load show %s: %w", name, err)
	}

	script := tengo.NewScript(append(src, []byte("\n"+showDispatchScript)...))
	_ = script.Add("__phase", "")
	_ = script.Add("__cam", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__elapsed", 0.0)

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("director: compile show %s: %w", name, err)
	}

	sh := &show{
		name:     name,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}

	// Resolve optional show length from script global `duration_sec`.
	noop := &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	if err := runPhase(sh, "noop", noop, 0); err != nil {
		return nil, fmt.Errorf("director: init show %s: %w", name, err)
	}
	if compiled.IsDefined("duration_sec") {
		if secs, ok := compiled.Get("duration_sec").Value().(float64); ok && secs > 0 {
			sh.duration = time.Duration(secs * float64(time.Second))
		} else if n, ok := compiled.Get("duration_sec").Value().(int64); ok && n > 0 {
			sh.duration = time.Duration(n) * time.Second
		}
	}

	d.cache[name] = sh
	return sh, nil
}

func runPhase(sh *show, phase string, engine *tengo.ImmutableMap, elapsed float64) error {
	if engine == nil {
		engine = &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	}
	if err := sh.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := sh.compiled.Set("__cam", engine); err != nil {
		return err
	}
	if err := sh.compiled.Set("__state", sh.state); err != nil {
		return err
	}
	if err := sh.compiled.Set("__elapsed", &tengo.Float{Value: elapsed}); err != nil {
		return err
	}
	return sh.compiled.Run()
}

func (d *Director) buildShowEngine(ended *bool) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["focus_stage"] = &tengo.UserFunction{Name: "focus_stage", Value: func(args ...tengo.Object) (tengo.Object, error) {
		d.rig.FocusStage()
		return tengo.TrueValue, nil
	}}

	values["focus_seat"] = &tengo.UserFunction{Name: "focus_seat", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		seatID := strings.TrimSpace(objectAsString(args[0]))
		pos, ok := d.lookup(seatID)
		if !ok {
			return tengo.FalseValue, nil
		}
		zoom := 0.0
		if len(args) > 1 {
			zoom = objectAsFloat(args[1])
		}
		d.rig.FocusSeat(pos, zoom)
		return tengo.TrueValue, nil
	}}

	values["crowd_scan"] = &tengo.UserFunction{Name: "crowd_scan", Value: func(args ...tengo.Object) (tengo.Object, error) {
		d.rig.CrowdScan()
		return tengo.TrueValue, nil
	}}

	values["pan"] = &tengo.UserFunction{Name: "pan", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		d.rig.Pan(objectAsFloat(args[0]), objectAsFloat(args[1]))
		return tengo.TrueValue, nil
	}}

	values["zoom_to"] = &tengo.UserFunction{Name: "zoom_to", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		d.rig.ZoomTo(objectAsFloat(args[0]))
		return tengo.TrueValue, nil
	}}

	values["hottest_seat"] = &tengo.UserFunction{Name: "hottest_seat", Value: func(args ...tengo.Object) (tengo.Object, error) {
		hot := d.rig.HottestSeat()
		if hot == nil {
			return tengo.UndefinedValue, nil
		}
		return &tengo.String{Value: hot.SeatID}, nil
	}}

	values["end"] = &tengo.UserFunction{Name: "end", Value: func(args ...tengo.Object) (tengo.Object, error) {
		*ended = true
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectAsFloat(obj tengo.Object) float64 {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value
	case *tengo.Int:
		return float64(v.Value)
	default:
		return 0
	}
}
