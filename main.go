package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	addr := flag.String("addr", "", "realtime service url (ws://...); empty runs the offline bot room")
	room := flag.String("room", "main", "room id to join")
	name := flag.String("name", "viewer", "display name")
	role := flag.String("role", "AUDIENCE", "role: AUDIENCE, ARTIST, ARTIST_TEAM, MOD, ADMIN")
	reducedMotion := flag.Bool("reduced-motion", false, "disable automatic camera motion")
	layoutFile := flag.String("layout", "arena.yaml", "arena layout file in layout/ (disk copy wins over embedded)")
	show := flag.String("show", "", "camera show script in layout/shows/ to play on start")
	flag.Parse()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("arena viewer")

	game, err := NewGame(GameOptions{
		Addr:          *addr,
		Room:          *room,
		Name:          *name,
		Role:          *role,
		ReducedMotion: *reducedMotion,
		LayoutFile:    *layoutFile,
		Show:          *show,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
