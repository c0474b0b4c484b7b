package main

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"

	"github.com/stagefront/arena/director"
	"github.com/stagefront/arena/engine"
	"github.com/stagefront/arena/layout"
	"github.com/stagefront/arena/permission"
	"github.com/stagefront/arena/viewer"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

// GameOptions collects the command line configuration.
type GameOptions struct {
	Addr          string
	Room          string
	Name          string
	Role          string
	ReducedMotion bool
	LayoutFile    string
	Show          string
}

type Game struct {
	frames int

	viewer   *viewer.Viewer
	director *director.Director
	client   *engine.Client
	bots     *botRoom
	hud      *HUD
	input    *Input
	watcher  *layout.Watcher
}

func NewGame(opts GameOptions) (*Game, error) {
	arena, err := layout.LoadSpec[layout.ArenaSpec](opts.LayoutFile)
	if err != nil {
		return nil, fmt.Errorf("load layout %s: %w", opts.LayoutFile, err)
	}

	v := viewer.New(viewer.Config{
		RoomID:        opts.Room,
		Username:      opts.Name,
		Role:          permission.Role(opts.Role),
		AssetID:       "avatar-default",
		ReducedMotion: opts.ReducedMotion,
		Arena:         &arena,
	})

	g := &Game{
		viewer: v,
		input:  NewInput(),
	}

	if opts.Addr != "" {
		client, err := engine.Connect(opts.Addr)
		if err != nil {
			return nil, err
		}
		g.client = client
		if err := v.Connect(client); err != nil {
			client.Disconnect()
			return nil, err
		}
	} else {
		g.bots = newBotRoom(v.Seats(), opts.Name)
		if err := v.Connect(g.bots); err != nil {
			return nil, err
		}
	}

	lookup := func(seatID string) (cp.Vector, bool) {
		for _, s := range v.Seats() {
			if s.SeatID == seatID {
				return s.Position, true
			}
		}
		return cp.Vector{}, false
	}
	g.director = director.New(v.Rig(), lookup, time.Now)
	if opts.Show != "" {
		if err := g.director.Play(opts.Show); err != nil {
			log.Printf("show %s: %v", opts.Show, err)
		}
	}

	if w, err := layout.NewWatcher("layout", "layout/shows"); err == nil {
		g.watcher = w
	} else {
		log.Printf("layout watch disabled: %v", err)
	}

	g.hud = NewHUD(g)
	return g, nil
}

// drainWatcher applies any pending file edits: show scripts recompile on
// next play and layout edits retune the camera in place.
func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			if layout.IsShowFile(path) {
				g.director.Invalidate(filepath.Base(path))
				continue
			}
			arena, err := layout.LoadSpec[layout.ArenaSpec](filepath.Base(path))
			if err != nil {
				log.Printf("reload %s: %v", path, err)
				continue
			}
			g.viewer.RetuneCamera(arena.Camera)
			log.Printf("reloaded %s", path)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("layout watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) Update() error {
	g.frames++

	if g.bots != nil {
		g.bots.Step()
	}
	g.drainWatcher()
	g.input.Update(g.viewer.Rig())
	g.viewer.Update()
	g.director.Step()
	g.hud.Update()

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	scene := g.viewer.Scene(time.Now())
	drawScene(screen, scene)
	g.hud.Draw(screen)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s    FPS: %.1f", scene.State, ebiten.ActualFPS()))
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	g.viewer.Close()
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
