// Package seatmap generates the arena seating bowl: tiered audience rows
// curved around the stage, plus the hand-placed stage seats. Layout is
// computed once per room; seats are only mutated afterwards to track
// occupancy and reservations.
package seatmap

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/stagefront/arena/common"
)

// Tier is a concentric seating band around the stage.
type Tier string

const (
	TierLower Tier = "LOWER"
	TierMid   Tier = "MID"
	TierUpper Tier = "UPPER"
	TierVIP   Tier = "VIP"
	TierStage Tier = "STAGE"
)

// Facing records which way a seat points.
type Facing string

const (
	FacingStage    Facing = "TOWARD_STAGE"
	FacingAudience Facing = "TOWARD_AUDIENCE"
)

// Seat is one position in the arena. Yaw is derived once at generation time
// from the vector toward the stage center (audience) or toward the audience
// (stage seats) and is never recomputed per frame.
type Seat struct {
	SeatID       string
	Position     cp.Vector
	Tier         Tier
	Row          int
	Col          int
	Facing       Facing
	Yaw          float64 // degrees; 0 = right, 90 = up, 180 = left, 270 = down
	RenderDepth  int
	OccupiedBy   string
	IsReserved   bool
	SponsorBadge string
	Meta         map[string]string // forward-compatible extension fields
}

// TierConfig shapes one audience band.
type TierConfig struct {
	Rows        int
	SeatsPerRow int
	StartY      float64
	ArcAmount   float64
}

// Config controls audience layout generation.
type Config struct {
	StageCenter cp.Vector
	Lower       TierConfig
	Mid         TierConfig
	Upper       TierConfig
	VIP         TierConfig
}

const (
	colSpacing = 80.0
	rowSpacing = 80.0
	curveScale = 50.0
)

// DefaultConfig returns the stock hundred-seat bowl.
func DefaultConfig() Config {
	return Config{
		StageCenter: cp.Vector{X: 500, Y: 100},
		Lower:       TierConfig{Rows: 3, SeatsPerRow: 10, StartY: 300, ArcAmount: 0.3},
		Mid:         TierConfig{Rows: 3, SeatsPerRow: 12, StartY: 500, ArcAmount: 0.4},
		Upper:       TierConfig{Rows: 4, SeatsPerRow: 14, StartY: 700, ArcAmount: 0.5},
		VIP:         TierConfig{Rows: 1, SeatsPerRow: 6, StartY: 250, ArcAmount: 0.2},
	}
}

// GenerateAudienceSeats lays out every audience tier. Seats within a tier
// are emitted in row-major order; tiers are emitted VIP, LOWER, MID, UPPER.
func GenerateAudienceSeats(cfg Config) []*Seat {
	tiers := []struct {
		tier Tier
		tc   TierConfig
	}{
		{TierVIP, cfg.VIP},
		{TierLower, cfg.Lower},
		{TierMid, cfg.Mid},
		{TierUpper, cfg.Upper},
	}

	var seats []*Seat
	for _, t := range tiers {
		for row := 0; row < t.tc.Rows; row++ {
			for col := 0; col < t.tc.SeatsPerRow; col++ {
				seats = append(seats, buildAudienceSeat(cfg.StageCenter, t.tier, t.tc, row, col))
			}
		}
	}
	return seats
}

func buildAudienceSeat(stage cp.Vector, tier Tier, tc TierConfig, row, col int) *Seat {
	// Center column sits straight; columns farther out curve away from the
	// stage, forming the stadium bowl.
	centerCol := float64(tc.SeatsPerRow-1) / 2
	colOffset := float64(col) - centerCol
	arcFactor := math.Pow(colOffset/centerCol, 2) * tc.ArcAmount

	x := stage.X + colOffset*colSpacing
	y := tc.StartY + float64(row)*rowSpacing + arcFactor*curveScale

	yaw := math.Atan2(stage.Y-y, stage.X-x) * (180 / math.Pi)

	return &Seat{
		SeatID:      fmt.Sprintf("%s-%d-%d", tierSlug(tier), row, col),
		Position:    cp.Vector{X: x, Y: y},
		Tier:        tier,
		Row:         row,
		Col:         col,
		Facing:      FacingStage,
		Yaw:         yaw,
		RenderDepth: row,
	}
}

func tierSlug(t Tier) string {
	switch t {
	case TierLower:
		return "lower"
	case TierMid:
		return "mid"
	case TierUpper:
		return "upper"
	case TierVIP:
		return "vip"
	case TierStage:
		return "stage"
	}
	return "seat"
}

// stageYaw points every stage seat at the audience.
const stageYaw = 270.0

// GenerateStageSeats places the host, judge and performer seats at fixed
// offsets from the stage center.
func GenerateStageSeats(center cp.Vector) []*Seat {
	place := func(id string, dx, dy float64, row, col int) *Seat {
		return &Seat{
			SeatID:   id,
			Position: cp.Vector{X: center.X + dx, Y: center.Y + dy},
			Tier:     TierStage,
			Row:      row,
			Col:      col,
			Facing:   FacingAudience,
			Yaw:      stageYaw,
		}
	}

	return []*Seat{
		place("host-center", 0, 0, 0, 0),
		place("judge-1", -200, 80, 1, 0),
		place("judge-2", 0, 80, 1, 1),
		place("judge-3", 200, 80, 1, 2),
		place("performer-1", -150, 50, 0, 0),
		place("performer-2", 150, 50, 0, 1),
	}
}

// IsBackFacingCamera reports whether the camera sees the back of a seat.
// The boundary at exactly 90 degrees counts as front-facing.
func IsBackFacingCamera(seatYaw, cameraYaw float64) bool {
	return common.AngleDiff(seatYaw, cameraYaw) > 90
}

// FacingVector converts a yaw in degrees to a unit direction.
func FacingVector(yaw float64) cp.Vector {
	rad := yaw * math.Pi / 180
	return cp.Vector{X: math.Cos(rad), Y: math.Sin(rad)}
}

// FindNearestAvailableSeat picks a seat for auto-assignment. "Nearest" is
// ordinal, not geometric: the first free seat in generation order wins, with
// the preferred tier tried first. Returns nil when the house is full.
func FindNearestAvailableSeat(seats []*Seat, preferredTier Tier) *Seat {
	var firstFree *Seat
	for _, s := range seats {
		if s.OccupiedBy != "" || s.IsReserved {
			continue
		}
		if preferredTier != "" && s.Tier == preferredTier {
			return s
		}
		if firstFree == nil {
			firstFree = s
		}
	}
	return firstFree
}

// ReserveVIPSeats marks the first count free VIP seats as reserved,
// stamping the sponsor badge when given. Seats are mutated in place; the
// caller owns the slice. Returns the seats actually reserved.
func ReserveVIPSeats(seats []*Seat, count int, sponsorBadge string) []*Seat {
	var reserved []*Seat
	for _, s := range seats {
		if len(reserved) >= count {
			break
		}
		if s.Tier != TierVIP || s.IsReserved || s.OccupiedBy != "" {
			continue
		}
		s.IsReserved = true
		if sponsorBadge != "" {
			s.SponsorBadge = sponsorBadge
		}
		reserved = append(reserved, s)
	}
	return reserved
}

// FindSeat returns the seat with the given id, or nil.
func FindSeat(seats []*Seat, seatID string) *Seat {
	for _, s := range seats {
		if s.SeatID == seatID {
			return s
		}
	}
	return nil
}
