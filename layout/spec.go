// Package layout loads arena layouts from yaml, with an embedded
// default and optional on-disk overrides that can be hot reloaded.
package layout

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"

	"github.com/stagefront/arena/seatmap"
)

// ArenaSpec is the top-level layout document.
type ArenaSpec struct {
	Name    string        `yaml:"name"`
	Stage   StageSpec     `yaml:"stage"`
	Tiers   TiersSpec     `yaml:"tiers"`
	VIP     VIPSpec       `yaml:"vip"`
	Camera  CameraSpec    `yaml:"camera"`
	Sponsor []SponsorSpec `yaml:"sponsor"`
}

// CameraSpec tunes the rig for this arena. Zero values fall back to
// the rig defaults.
type CameraSpec struct {
	Zoom           float64 `yaml:"zoom"`
	Smoothness     float64 `yaml:"smoothness"`
	ScanIntervalMS int     `yaml:"scan_interval_ms"`
}

type StageSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type TiersSpec struct {
	Lower TierSpec `yaml:"lower"`
	Mid   TierSpec `yaml:"mid"`
	Upper TierSpec `yaml:"upper"`
}

type TierSpec struct {
	Rows        int     `yaml:"rows"`
	SeatsPerRow int     `yaml:"seats_per_row"`
	StartY      float64 `yaml:"start_y"`
	ArcAmount   float64 `yaml:"arc_amount"`
}

// VIPSpec shapes the front VIP band and how much of it is held back
// for sponsors.
type VIPSpec struct {
	TierSpec `yaml:",inline"`
	Reserved int    `yaml:"reserved"`
	Badge    string `yaml:"badge"`
}

// SponsorSpec binds sponsor content to a named placement slot.
type SponsorSpec struct {
	Placement string `yaml:"placement"`
	Sponsor   string `yaml:"sponsor"`
	Asset     string `yaml:"asset"`
}

// LoadSpec reads and decodes a layout file into any yaml-tagged type.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("layout: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("layout: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadArenaSpec loads the default arena layout.
func LoadArenaSpec() (*ArenaSpec, error) {
	spec, err := LoadSpec[ArenaSpec]("arena.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// SeatConfig converts the document into a seat generation config.
func (s *ArenaSpec) SeatConfig() seatmap.Config {
	return seatmap.Config{
		StageCenter: cp.Vector{X: s.Stage.X, Y: s.Stage.Y},
		Lower:       tierConfig(s.Tiers.Lower),
		Mid:         tierConfig(s.Tiers.Mid),
		Upper:       tierConfig(s.Tiers.Upper),
		VIP:         tierConfig(s.VIP.TierSpec),
	}
}

func tierConfig(t TierSpec) seatmap.TierConfig {
	return seatmap.TierConfig{
		Rows:        t.Rows,
		SeatsPerRow: t.SeatsPerRow,
		StartY:      t.StartY,
		ArcAmount:   t.ArcAmount,
	}
}
