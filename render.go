package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/stagefront/arena/seatmap"
	"github.com/stagefront/arena/viewer"
)

var hudFace ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)

// worldToScreen applies the camera transform. The camera's current
// position is centered on screen.
func worldToScreen(sc viewer.Scene, p cp.Vector) (float32, float32) {
	zoom := sc.Camera.CurrentZoom
	x := (p.X-sc.Camera.Current.X)*zoom + baseWidth/2
	y := (p.Y-sc.Camera.Current.Y)*zoom + baseHeight/2
	return float32(x), float32(y)
}

func tierColor(t seatmap.Tier) color.RGBA {
	switch t {
	case seatmap.TierVIP:
		return colornames.Gold
	case seatmap.TierLower:
		return colornames.Steelblue
	case seatmap.TierMid:
		return colornames.Slategray
	case seatmap.TierUpper:
		return colornames.Dimgray
	case seatmap.TierStage:
		return colornames.Crimson
	}
	return colornames.Gray
}

func drawScene(screen *ebiten.Image, sc viewer.Scene) {
	screen.Fill(color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xff})
	zoom := float32(sc.Camera.CurrentZoom)

	// Stage platform.
	sx, sy := worldToScreen(sc, sc.Stage)
	stageW, stageH := 360*zoom, 120*zoom
	vector.FillRect(screen, sx-stageW/2, sy-stageH/2, stageW, stageH, color.RGBA{R: 0x40, G: 0x20, B: 0x50, A: 0xff}, false)
	vector.StrokeRect(screen, sx-stageW/2, sy-stageH/2, stageW, stageH, 2, colornames.Mediumpurple, false)

	for _, seat := range sc.Seats {
		x, y := worldToScreen(sc, seat.Position)
		c := tierColor(seat.Tier)
		if !seat.Occupied {
			c.A = 90
		}
		vector.FillCircle(screen, x, y, 6*zoom, c, false)
		if seat.Reserved {
			vector.StrokeCircle(screen, x, y, 8*zoom, 1.5, colornames.Gold, false)
		}
	}

	for _, av := range sc.Avatars {
		drawAvatar(screen, sc, av)
	}

	// Overlays are drawn in world coordinates but over everything.
	for _, em := range sc.Emotes {
		drawEmote(screen, sc, em)
	}
	for _, b := range sc.Bubbles {
		drawBubble(screen, sc, b)
	}
	drawPinned(screen, sc)
}

func drawAvatar(screen *ebiten.Image, sc viewer.Scene, av viewer.AvatarSprite) {
	x, y := worldToScreen(sc, av.Position)
	zoom := float32(sc.Camera.CurrentZoom)
	w := float32(20*av.Scale) * zoom
	h := float32(28*av.Scale) * zoom

	body := colornames.Lightsteelblue
	if av.Back {
		body = colornames.Darkslateblue
	}

	// Tilt is shown by shearing the top of the body sideways.
	lean := float32(av.Tilt) / 45 * w
	vector.FillRect(screen, x-w/2+lean, y-h, w, h, body, false)
	vector.FillCircle(screen, x+lean, y-h-6*zoom, 6*zoom, colornames.Navajowhite, false)

	opts := &ebtext.DrawOptions{}
	opts.GeoM.Translate(float64(x-w/2), float64(y+4))
	opts.ColorScale.ScaleWithColor(colornames.White)
	ebtext.Draw(screen, av.Username, hudFace, opts)
}

func drawEmote(screen *ebiten.Image, sc viewer.Scene, em viewer.EmoteSprite) {
	x, y := worldToScreen(sc, em.Frame.Position)

	for _, p := range em.Frame.Particles {
		px, py := worldToScreen(sc, p)
		vector.FillCircle(screen, px, py, 2, colornames.Gold, false)
	}

	opts := &ebtext.DrawOptions{}
	opts.GeoM.Scale(em.Frame.Scale, em.Frame.Scale)
	opts.GeoM.Translate(float64(x), float64(y))
	opts.ColorScale.ScaleAlpha(float32(em.Frame.Opacity))
	ebtext.Draw(screen, em.Icon, hudFace, opts)
}

func drawBubble(screen *ebiten.Image, sc viewer.Scene, b viewer.BubbleSprite) {
	x, y := worldToScreen(sc, b.Position)
	text := b.Bubble.Message.Content
	w := float32(len(text)*7 + 12)
	h := float32(20)

	alpha := uint8(b.Bubble.Opacity * 255)
	vector.FillRect(screen, x-w/2, y-h, w, h, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: alpha}, false)

	opts := &ebtext.DrawOptions{}
	opts.GeoM.Translate(float64(x-w/2+6), float64(y-h+4))
	opts.ColorScale.ScaleWithColor(colornames.Black)
	opts.ColorScale.ScaleAlpha(float32(b.Bubble.Opacity))
	ebtext.Draw(screen, text, hudFace, opts)
}

func drawPinned(screen *ebiten.Image, sc viewer.Scene) {
	for _, p := range sc.Pinned {
		y := float32(20 + p.Slot*34)
		w := float32(len(p.Message.Content)*7+20) * float32(p.Scale)
		h := float32(26) * float32(p.Scale)
		x := float32(baseWidth)/2 - w/2

		alpha := uint8(p.Opacity * 220)
		vector.FillRect(screen, x, y, w, h, color.RGBA{R: 0xff, G: 0xd7, B: 0x00, A: alpha}, false)

		opts := &ebtext.DrawOptions{}
		opts.GeoM.Translate(float64(x+10), float64(y+6))
		opts.ColorScale.ScaleWithColor(colornames.Black)
		opts.ColorScale.ScaleAlpha(float32(p.Opacity))
		ebtext.Draw(screen, p.Message.Content, hudFace, opts)
	}
}
