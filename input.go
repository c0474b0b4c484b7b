package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/stagefront/arena/camera"
)

// Input maps mouse gestures to camera control: drag to pan (which puts
// the rig in manual mode), wheel to zoom.
type Input struct {
	dragging     bool
	lastX, lastY int
}

func NewInput() *Input {
	return &Input{}
}

const wheelZoomStep = 0.1

func (in *Input) Update(rig *camera.Rig) {
	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		st := rig.State()
		rig.ZoomTo(st.Zoom * (1 + wheelY*wheelZoomStep))
	}

	x, y := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	switch {
	case pressed && !in.dragging:
		in.dragging = true
	case pressed && in.dragging:
		dx, dy := x-in.lastX, y-in.lastY
		if dx != 0 || dy != 0 {
			zoom := rig.State().CurrentZoom
			if zoom <= 0 {
				zoom = 1
			}
			// Dragging moves the world with the cursor, so the camera
			// pans the opposite way.
			rig.Pan(-float64(dx)/zoom, -float64(dy)/zoom)
		}
	default:
		in.dragging = false
	}

	in.lastX, in.lastY = x, y
}
