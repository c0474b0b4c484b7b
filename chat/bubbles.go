// Package chat lays out live chat as floating bubbles: seat-anchored
// bubbles that stack upward to avoid overlapping, and pinned screen popups.
// Layout is a pure function of the current time; nothing computed here is
// ever written back onto a message.
package chat

import (
	"time"

	"github.com/jakecoffman/cp"
)

// Kind classifies a chat message.
type Kind string

const (
	KindNormal    Kind = "NORMAL"
	KindHype      Kind = "HYPE"
	KindTip       Kind = "TIP"
	KindPinned    Kind = "PINNED"
	KindMod       Kind = "MOD"
	KindSponsored Kind = "SPONSORED"
)

// Message is one chat line. Immutable once created; visibility and opacity
// are recomputed from elapsed time on every render tick.
type Message struct {
	ID        string
	UserID    string
	Username  string
	Content   string
	CreatedAt time.Time
	Kind      Kind
	SeatID    string    // anchors a floating bubble when set
	ExpiresAt time.Time // optional; zero means "use the default lifetime"
}

// Config tunes bubble lifetimes.
type Config struct {
	SeatBubbleLifetime   time.Duration
	PinnedBubbleLifetime time.Duration
	MaxPinnedBubbles     int
}

// DefaultConfig returns the stock bubble tuning.
func DefaultConfig() Config {
	return Config{
		SeatBubbleLifetime:   3500 * time.Millisecond,
		PinnedBubbleLifetime: 6 * time.Second,
		MaxPinnedBubbles:     4,
	}
}

// SeatBubble is a positioned, faded seat-anchored bubble.
type SeatBubble struct {
	Message    Message
	StackIndex int       // Nth concurrent bubble at this seat
	Offset     cp.Vector // relative to the seat position
	Opacity    float64
}

// PinnedBubble is a fixed on-screen popup.
type PinnedBubble struct {
	Message Message
	Slot    int // 0 = topmost
	Opacity float64
	Scale   float64
}

const (
	stackBaseOffset = -50.0
	stackStep       = -40.0
	fadeStart       = 0.8
	popWindow       = 0.1
	popOutScale     = 0.3
)

// progress maps a message's elapsed life to [0, 1]. An explicit ExpiresAt
// overrides the default lifetime.
func progress(m Message, now time.Time, lifetime time.Duration) float64 {
	window := lifetime
	if !m.ExpiresAt.IsZero() {
		window = m.ExpiresAt.Sub(m.CreatedAt)
	}
	if window <= 0 {
		return 1
	}
	p := float64(now.Sub(m.CreatedAt)) / float64(window)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func expired(m Message, now time.Time, lifetime time.Duration) bool {
	if !m.ExpiresAt.IsZero() {
		return !now.Before(m.ExpiresAt)
	}
	return now.Sub(m.CreatedAt) >= lifetime
}

// opacity is full until 80% of the lifetime has elapsed, then fades
// linearly to zero.
func opacity(p float64) float64 {
	if p < fadeStart {
		return 1
	}
	return 1 - (p-fadeStart)/(1-fadeStart)
}

// SeatBubbles lays out the live seat-anchored bubbles. Concurrent messages
// at one seat stack upward so they never overlap; stacking order follows
// arrival order within the input slice.
func SeatBubbles(messages []Message, now time.Time, cfg Config) []SeatBubble {
	if cfg.SeatBubbleLifetime <= 0 {
		cfg.SeatBubbleLifetime = DefaultConfig().SeatBubbleLifetime
	}

	stacks := map[string]int{}
	var out []SeatBubble
	for _, m := range messages {
		if m.SeatID == "" || expired(m, now, cfg.SeatBubbleLifetime) {
			continue
		}
		idx := stacks[m.SeatID]
		stacks[m.SeatID] = idx + 1

		out = append(out, SeatBubble{
			Message:    m,
			StackIndex: idx,
			Offset:     cp.Vector{Y: stackBaseOffset + float64(idx)*stackStep},
			Opacity:    opacity(progress(m, now, cfg.SeatBubbleLifetime)),
		})
	}
	return out
}

// PinnedBubbles lays out the pinned screen popups: the most recent
// MaxPinnedBubbles live PINNED messages, each with an independent pop-in
// over the first 10% of life and a pop-out toward 70% scale over the last
// 10%.
func PinnedBubbles(messages []Message, now time.Time, cfg Config) []PinnedBubble {
	if cfg.PinnedBubbleLifetime <= 0 {
		cfg.PinnedBubbleLifetime = DefaultConfig().PinnedBubbleLifetime
	}
	if cfg.MaxPinnedBubbles <= 0 {
		cfg.MaxPinnedBubbles = DefaultConfig().MaxPinnedBubbles
	}

	var live []Message
	for _, m := range messages {
		if m.Kind != KindPinned || expired(m, now, cfg.PinnedBubbleLifetime) {
			continue
		}
		live = append(live, m)
	}
	if len(live) > cfg.MaxPinnedBubbles {
		live = live[len(live)-cfg.MaxPinnedBubbles:]
	}

	out := make([]PinnedBubble, 0, len(live))
	for i, m := range live {
		p := progress(m, now, cfg.PinnedBubbleLifetime)

		scale := 1.0
		switch {
		case p < popWindow:
			scale = p / popWindow
		case p > 1-popWindow:
			scale = 1 - (p-(1-popWindow))/popWindow*popOutScale
		}

		out = append(out, PinnedBubble{
			Message: m,
			Slot:    i,
			Opacity: opacity(p),
			Scale:   scale,
		})
	}
	return out
}
