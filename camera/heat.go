package camera

import (
	"math"
	"time"
)

// ActivityKind classifies seat activity for heat scoring.
type ActivityKind string

const (
	ActivityEmote ActivityKind = "EMOTE"
	ActivityChat  ActivityKind = "CHAT"
	ActivityTip   ActivityKind = "TIP"
	ActivityHype  ActivityKind = "HYPE"
)

// Weight returns the heat contribution of one activity event.
func (k ActivityKind) Weight() float64 {
	switch k {
	case ActivityEmote:
		return 1
	case ActivityChat:
		return 2
	case ActivityTip:
		return 3
	case ActivityHype:
		return 5
	}
	return 0
}

const (
	heatHalfLife   = 5 * time.Second
	heatPruneBelow = 0.1
)

// SeatHeat is the decaying engagement score of one seat.
type SeatHeat struct {
	SeatID       string
	Score        float64
	LastActivity time.Time
}

// heatMap accumulates per-seat activity and decays idle entries toward zero
// with a five second half-life. Scores never go negative; entries whose
// score drops below the prune threshold are removed.
type heatMap struct {
	seats map[string]*SeatHeat
}

func newHeatMap() *heatMap {
	return &heatMap{seats: make(map[string]*SeatHeat)}
}

func (h *heatMap) track(seatID string, kind ActivityKind, now time.Time) {
	entry, ok := h.seats[seatID]
	if !ok {
		entry = &SeatHeat{SeatID: seatID}
		h.seats[seatID] = entry
	}
	entry.Score += kind.Weight()
	entry.LastActivity = now

	h.decay(now)
}

// decay shrinks every entry idle for more than the half-life window. It runs
// on each track call and once per rig frame, so compounding drives idle
// seats under the prune threshold within a few frames of going stale.
func (h *heatMap) decay(now time.Time) {
	for id, entry := range h.seats {
		age := now.Sub(entry.LastActivity)
		if age <= heatHalfLife {
			continue
		}
		entry.Score *= math.Exp(-(float64(age) / float64(heatHalfLife)) * math.Ln2)
		if entry.Score < heatPruneBelow {
			delete(h.seats, id)
		}
	}
}

func (h *heatMap) hottest() *SeatHeat {
	var best *SeatHeat
	for _, entry := range h.seats {
		if best == nil || entry.Score > best.Score {
			best = entry
		}
	}
	if best == nil {
		return nil
	}
	copy := *best
	return &copy
}
