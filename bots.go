package main

import (
	"fmt"
	"math/rand"

	"github.com/stagefront/arena/engine"
	"github.com/stagefront/arena/seatmap"
)

// botRoom is an in-process stand-in for the realtime service, used when
// no -addr is given. It pushes scripted joins, chat, and emotes so the
// walk-in, heat, and bubble paths all run without a server. Everything
// fires synchronously from Step on the game loop.
type botRoom struct {
	seats    []*seatmap.Seat
	occupied map[string]string
	rng      *rand.Rand
	username string

	frames  int
	nextBot int
	bots    []string

	avatarFn func(engine.AvatarUpdateMsg)
	leaveFn  func(engine.AvatarLeaveMsg)
	seatFn   func(engine.SeatUpdateMsg)
	chatFn   func(engine.ChatMsg)
	emoteFn  func(engine.EmoteMsg)
	grantFn  func(engine.GrantMsg)
	revokeFn func(engine.RevokeMsg)

	pendingTier string
	joined      bool
}

const (
	botCount         = 12
	botJoinEvery     = 45 // frames between scripted joins
	botChatEvery     = 75
	botEmoteEvery    = 50
	botLeaveEvery    = 600
	selfSeatDelay    = 30
	spawnX, spawnY   = -100.0, 400.0
	botSelfID        = "me"
	botHypeChance    = 4 // one in N chats is HYPE
	botTipChance     = 8 // one in N chats is TIP
	botLeaveMinSeats = 6
)

var botLines = []string{
	"this set is unreal",
	"front row energy",
	"who else caught the opener?",
	"turn it up",
}

func newBotRoom(seats []*seatmap.Seat, username string) *botRoom {
	return &botRoom{
		seats:    seats,
		occupied: make(map[string]string),
		rng:      rand.New(rand.NewSource(1)),
		username: username,
	}
}

// Transport implementation.

func (b *botRoom) JoinRoom(roomID, username, role string) error { b.joined = true; return nil }
func (b *botRoom) JoinAsAvatar(assetID string) error            { return nil }
func (b *botRoom) LeaveRoom() error                             { return nil }
func (b *botRoom) Disconnect()                                  { b.joined = false }
func (b *botRoom) Drain() error                                 { return nil }
func (b *botRoom) Connected() bool                              { return b.joined }
func (b *botRoom) UserID() string                               { return botSelfID }

func (b *botRoom) RequestSeat(preferredTier string) error {
	b.pendingTier = preferredTier
	return nil
}

func (b *botRoom) OnAvatarUpdate(fn func(engine.AvatarUpdateMsg)) func() {
	b.avatarFn = fn
	return func() { b.avatarFn = nil }
}

func (b *botRoom) OnAvatarLeave(fn func(engine.AvatarLeaveMsg)) func() {
	b.leaveFn = fn
	return func() { b.leaveFn = nil }
}

func (b *botRoom) OnSeatUpdate(fn func(engine.SeatUpdateMsg)) func() {
	b.seatFn = fn
	return func() { b.seatFn = nil }
}

func (b *botRoom) OnChat(fn func(engine.ChatMsg)) func() {
	b.chatFn = fn
	return func() { b.chatFn = nil }
}

func (b *botRoom) OnEmote(fn func(engine.EmoteMsg)) func() {
	b.emoteFn = fn
	return func() { b.emoteFn = nil }
}

func (b *botRoom) OnGrant(fn func(engine.GrantMsg)) func() {
	b.grantFn = fn
	return func() { b.grantFn = nil }
}

func (b *botRoom) OnRevoke(fn func(engine.RevokeMsg)) func() {
	b.revokeFn = fn
	return func() { b.revokeFn = nil }
}

// takeSeat reserves the first free seat, preferring the given tier.
func (b *botRoom) takeSeat(userID string, tier seatmap.Tier) string {
	pick := func(want seatmap.Tier, any bool) string {
		for _, s := range b.seats {
			if s.IsReserved || b.occupied[s.SeatID] != "" {
				continue
			}
			if !any && s.Tier != want {
				continue
			}
			b.occupied[s.SeatID] = userID
			return s.SeatID
		}
		return ""
	}
	if id := pick(tier, false); id != "" {
		return id
	}
	return pick("", true)
}

// Step advances the script by one frame.
func (b *botRoom) Step() {
	if !b.joined || b.avatarFn == nil {
		return
	}
	b.frames++

	// Seat the local user first so the walk-in is front and center.
	if b.frames == selfSeatDelay && b.pendingTier != "" {
		seatID := b.takeSeat(botSelfID, seatmap.Tier(b.pendingTier))
		b.avatarFn(engine.AvatarUpdateMsg{
			Type: engine.TypeAvatarUpdate, UserID: botSelfID, Username: b.username,
			X: spawnX, Y: spawnY, SeatID: seatID,
		})
		b.pendingTier = ""
	}

	if b.frames%botJoinEvery == 0 && b.nextBot < botCount {
		b.nextBot++
		id := fmt.Sprintf("bot-%d", b.nextBot)
		b.bots = append(b.bots, id)
		seatID := b.takeSeat(id, seatmap.TierLower)
		b.avatarFn(engine.AvatarUpdateMsg{
			Type: engine.TypeAvatarUpdate, UserID: id, Username: id,
			X: spawnX, Y: spawnY + float64(b.rng.Intn(200)), SeatID: seatID,
		})
	}

	if b.frames%botChatEvery == 0 && len(b.bots) > 0 && b.chatFn != nil {
		id := b.bots[b.rng.Intn(len(b.bots))]
		kind := "NORMAL"
		switch {
		case b.rng.Intn(botTipChance) == 0:
			kind = "TIP"
		case b.rng.Intn(botHypeChance) == 0:
			kind = "HYPE"
		}
		b.chatFn(engine.ChatMsg{
			Type: engine.TypeChat, ID: fmt.Sprintf("m-%d", b.frames),
			UserID: id, Username: id, Kind: kind,
			Text: botLines[b.rng.Intn(len(botLines))],
		})
	}

	if b.frames%botEmoteEvery == 0 && len(b.bots) > 0 && b.emoteFn != nil {
		id := b.bots[b.rng.Intn(len(b.bots))]
		kinds := []string{"clap", "heart", "star", "fire"}
		b.emoteFn(engine.EmoteMsg{
			Type: engine.TypeEmote, ID: fmt.Sprintf("e-%d", b.frames),
			UserID: id, Kind: kinds[b.rng.Intn(len(kinds))],
		})
	}

	if b.frames%botLeaveEvery == 0 && len(b.bots) > botLeaveMinSeats && b.leaveFn != nil {
		last := len(b.bots) - 1
		id := b.bots[last]
		b.bots = b.bots[:last]
		for seatID, user := range b.occupied {
			if user == id {
				delete(b.occupied, seatID)
			}
		}
		dirs := []string{"LEFT", "RIGHT", "BACK"}
		b.leaveFn(engine.AvatarLeaveMsg{
			Type: engine.TypeAvatarLeave, UserID: id,
			Direction: dirs[b.rng.Intn(len(dirs))],
		})
	}
}
