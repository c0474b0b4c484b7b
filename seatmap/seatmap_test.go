package seatmap

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

func TestGenerateAudienceSeatYawPointsAtStage(t *testing.T) {
	cfg := DefaultConfig()
	seats := GenerateAudienceSeats(cfg)
	if len(seats) == 0 {
		t.Fatal("no seats generated")
	}

	for _, s := range seats {
		want := math.Atan2(cfg.StageCenter.Y-s.Position.Y, cfg.StageCenter.X-s.Position.X) * (180 / math.Pi)
		if math.Abs(s.Yaw-want) > 1e-9 {
			t.Fatalf("seat %s yaw = %v, want %v", s.SeatID, s.Yaw, want)
		}
	}
}

func TestGenerateAudienceSeatCounts(t *testing.T) {
	cfg := DefaultConfig()
	seats := GenerateAudienceSeats(cfg)

	counts := map[Tier]int{}
	for _, s := range seats {
		counts[s.Tier]++
	}

	cases := []struct {
		tier Tier
		want int
	}{
		{TierVIP, 1 * 6},
		{TierLower, 3 * 10},
		{TierMid, 3 * 12},
		{TierUpper, 4 * 14},
	}
	for _, c := range cases {
		if counts[c.tier] != c.want {
			t.Fatalf("tier %s has %d seats, want %d", c.tier, counts[c.tier], c.want)
		}
	}
}

func TestArcCurvesAwayFromStage(t *testing.T) {
	cfg := DefaultConfig()
	seats := GenerateAudienceSeats(cfg)

	// In any audience row the center seat sits closest to the stage; edge
	// seats curve away (larger Y).
	var center, edge *Seat
	for _, s := range seats {
		if s.Tier != TierLower || s.Row != 0 {
			continue
		}
		if s.Col == 0 {
			edge = s
		}
		if s.Col == 4 || s.Col == 5 {
			if center == nil || math.Abs(s.Position.X-cfg.StageCenter.X) < math.Abs(center.Position.X-cfg.StageCenter.X) {
				center = s
			}
		}
	}
	if center == nil || edge == nil {
		t.Fatal("missing lower-tier row 0 seats")
	}
	if edge.Position.Y <= center.Position.Y {
		t.Fatalf("edge seat y=%v not curved beyond center seat y=%v", edge.Position.Y, center.Position.Y)
	}
}

func TestGenerateStageSeatsFaceAudience(t *testing.T) {
	seats := GenerateStageSeats(cp.Vector{X: 500, Y: 100})
	if len(seats) != 6 {
		t.Fatalf("expected 6 stage seats, got %d", len(seats))
	}
	for _, s := range seats {
		if s.Yaw != 270 {
			t.Fatalf("stage seat %s yaw = %v, want 270", s.SeatID, s.Yaw)
		}
		if s.Facing != FacingAudience {
			t.Fatalf("stage seat %s facing = %s", s.SeatID, s.Facing)
		}
		if s.Tier != TierStage {
			t.Fatalf("stage seat %s tier = %s", s.SeatID, s.Tier)
		}
	}
}

func TestIsBackFacingCamera(t *testing.T) {
	for yaw := -360.0; yaw <= 720; yaw += 30 {
		if IsBackFacingCamera(yaw, yaw) {
			t.Fatalf("same angle must never be back-facing (yaw=%v)", yaw)
		}
		if !IsBackFacingCamera(yaw, yaw+180) {
			t.Fatalf("opposite angle must be back-facing (yaw=%v)", yaw)
		}
	}

	// Exactly 90 degrees apart is defined as front-facing.
	if IsBackFacingCamera(0, 90) {
		t.Fatal("90 degree difference must not be back-facing")
	}
	if !IsBackFacingCamera(0, 91) {
		t.Fatal("91 degree difference must be back-facing")
	}
}

func TestFindNearestAvailableSeat(t *testing.T) {
	t.Run("all_occupied_returns_nil", func(t *testing.T) {
		seats := GenerateAudienceSeats(DefaultConfig())
		for _, s := range seats {
			s.OccupiedBy = "someone"
		}
		if got := FindNearestAvailableSeat(seats, TierLower); got != nil {
			t.Fatalf("expected nil, got %s", got.SeatID)
		}
	})

	t.Run("preferred_tier_first_match", func(t *testing.T) {
		seats := GenerateAudienceSeats(DefaultConfig())
		got := FindNearestAvailableSeat(seats, TierMid)
		if got == nil || got.Tier != TierMid {
			t.Fatalf("expected first MID seat, got %+v", got)
		}
		if got.Row != 0 || got.Col != 0 {
			t.Fatalf("expected row-major first seat, got row=%d col=%d", got.Row, got.Col)
		}
	})

	t.Run("falls_back_to_any_available", func(t *testing.T) {
		seats := GenerateAudienceSeats(DefaultConfig())
		var upper *Seat
		for _, s := range seats {
			if s.Tier == TierUpper && upper == nil {
				upper = s
				continue
			}
			s.OccupiedBy = "someone"
		}
		got := FindNearestAvailableSeat(seats, TierVIP)
		if got != upper {
			t.Fatalf("expected fallback to the free UPPER seat, got %+v", got)
		}
	})

	t.Run("reserved_seats_skipped", func(t *testing.T) {
		seats := GenerateAudienceSeats(DefaultConfig())
		for _, s := range seats {
			if s.Tier == TierVIP {
				s.IsReserved = true
			}
		}
		got := FindNearestAvailableSeat(seats, TierVIP)
		if got == nil || got.Tier == TierVIP {
			t.Fatalf("reserved VIP seats must not be assigned, got %+v", got)
		}
	})
}

func TestReserveVIPSeats(t *testing.T) {
	seats := GenerateAudienceSeats(DefaultConfig())

	reserved := ReserveVIPSeats(seats, 3, "acme")
	if len(reserved) != 3 {
		t.Fatalf("expected 3 reserved, got %d", len(reserved))
	}
	for _, s := range reserved {
		if !s.IsReserved || s.SponsorBadge != "acme" {
			t.Fatalf("seat %s not reserved with badge: %+v", s.SeatID, s)
		}
	}

	// Only 6 VIP seats exist; asking for more reserves what is left.
	more := ReserveVIPSeats(seats, 10, "")
	if len(more) != 3 {
		t.Fatalf("expected 3 remaining VIP seats, got %d", len(more))
	}
	for _, s := range more {
		if s.SponsorBadge != "" {
			t.Fatalf("badge stamped without sponsor: %+v", s)
		}
	}
}

func TestFacingVector(t *testing.T) {
	v := FacingVector(0)
	if math.Abs(v.X-1) > 1e-9 || math.Abs(v.Y) > 1e-9 {
		t.Fatalf("FacingVector(0) = %+v", v)
	}
	v = FacingVector(90)
	if math.Abs(v.X) > 1e-9 || math.Abs(v.Y-1) > 1e-9 {
		t.Fatalf("FacingVector(90) = %+v", v)
	}
}
