package viewer

import (
	"fmt"
	"testing"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/stagefront/arena/camera"
	"github.com/stagefront/arena/engine"
	"github.com/stagefront/arena/permission"
	"github.com/stagefront/arena/seatmap"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// fakeTransport records outbound calls and lets tests push events.
type fakeTransport struct {
	userID   string
	sent     []string
	failJoin bool

	avatarFn func(engine.AvatarUpdateMsg)
	leaveFn  func(engine.AvatarLeaveMsg)
	seatFn   func(engine.SeatUpdateMsg)
	chatFn   func(engine.ChatMsg)
	emoteFn  func(engine.EmoteMsg)
	grantFn  func(engine.GrantMsg)
	revokeFn func(engine.RevokeMsg)
}

func (f *fakeTransport) JoinRoom(roomID, username, role string) error {
	if f.failJoin {
		return fmt.Errorf("refused")
	}
	f.sent = append(f.sent, "join:"+roomID+":"+username)
	return nil
}

func (f *fakeTransport) JoinAsAvatar(assetID string) error {
	f.sent = append(f.sent, "avatar:"+assetID)
	return nil
}

func (f *fakeTransport) RequestSeat(tier string) error {
	f.sent = append(f.sent, "seat:"+tier)
	return nil
}

func (f *fakeTransport) LeaveRoom() error { f.sent = append(f.sent, "leave"); return nil }
func (f *fakeTransport) Disconnect()      { f.sent = append(f.sent, "disconnect") }
func (f *fakeTransport) Drain() error     { return nil }
func (f *fakeTransport) Connected() bool  { return true }
func (f *fakeTransport) UserID() string   { return f.userID }

func (f *fakeTransport) OnAvatarUpdate(fn func(engine.AvatarUpdateMsg)) func() {
	f.avatarFn = fn
	return func() { f.avatarFn = nil }
}

func (f *fakeTransport) OnAvatarLeave(fn func(engine.AvatarLeaveMsg)) func() {
	f.leaveFn = fn
	return func() { f.leaveFn = nil }
}

func (f *fakeTransport) OnSeatUpdate(fn func(engine.SeatUpdateMsg)) func() {
	f.seatFn = fn
	return func() { f.seatFn = nil }
}

func (f *fakeTransport) OnChat(fn func(engine.ChatMsg)) func() {
	f.chatFn = fn
	return func() { f.chatFn = nil }
}

func (f *fakeTransport) OnEmote(fn func(engine.EmoteMsg)) func() {
	f.emoteFn = fn
	return func() { f.emoteFn = nil }
}

func (f *fakeTransport) OnGrant(fn func(engine.GrantMsg)) func() {
	f.grantFn = fn
	return func() { f.grantFn = nil }
}

func (f *fakeTransport) OnRevoke(fn func(engine.RevokeMsg)) func() {
	f.revokeFn = fn
	return func() { f.revokeFn = nil }
}

func newTestViewer(t *testing.T, role permission.Role) (*Viewer, *fakeTransport, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	v := New(Config{
		RoomID:   "main",
		Username: "alice",
		Role:     role,
		AssetID:  "avatar-1",
		Now:      clock.Now,
	})
	ft := &fakeTransport{userID: "me"}
	if err := v.Connect(ft); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return v, ft, clock
}

// run steps the session forward in 16ms frames.
func run(v *Viewer, clock *fakeClock, d time.Duration) {
	const step = 16 * time.Millisecond
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		clock.advance(step)
		v.Update()
	}
}

func TestConnectSequence(t *testing.T) {
	v, ft, _ := newTestViewer(t, permission.RoleAudience)
	if v.SessionState() != StateConnected {
		t.Fatalf("state = %s, want %s", v.SessionState(), StateConnected)
	}
	want := []string{"join:main:alice", "avatar:avatar-1", "seat:LOWER"}
	if len(ft.sent) != 3 || ft.sent[0] != want[0] || ft.sent[1] != want[1] || ft.sent[2] != want[2] {
		t.Fatalf("join sequence = %v, want %v", ft.sent, want)
	}
}

func TestArtistRequestsStageTier(t *testing.T) {
	_, ft, _ := newTestViewer(t, permission.RoleArtist)
	if ft.sent[2] != "seat:STAGE" {
		t.Fatalf("artist seat request = %s, want seat:STAGE", ft.sent[2])
	}
}

func TestConnectFailureStaysDisconnected(t *testing.T) {
	clock := newFakeClock()
	v := New(Config{RoomID: "main", Username: "alice", Now: clock.Now})
	if err := v.Connect(&fakeTransport{failJoin: true}); err == nil {
		t.Fatal("expected connect error")
	}
	if v.SessionState() != StateDisconnected {
		t.Fatalf("state = %s, want %s", v.SessionState(), StateDisconnected)
	}
}

func TestSeatAssignmentWalksIn(t *testing.T) {
	v, ft, clock := newTestViewer(t, permission.RoleAudience)

	seat := seatmap.FindSeat(v.Seats(), "lower-0-0")
	ft.avatarFn(engine.AvatarUpdateMsg{
		Type: engine.TypeAvatarUpdate, UserID: "me", Username: "alice",
		X: 0, Y: 0, SeatID: "lower-0-0",
	})

	if v.SessionState() != StateSeated {
		t.Fatalf("own seat assignment should mark session seated, got %s", v.SessionState())
	}
	if seat.OccupiedBy != "me" {
		t.Fatalf("seat occupancy = %q, want me", seat.OccupiedBy)
	}

	run(v, clock, 100*time.Millisecond)
	av := v.avatars["me"]
	if av.Anim != "walking" {
		t.Fatalf("avatar should still be walking, got %s", av.Anim)
	}
	if av.Position == (cp.Vector{}) || av.Position == seat.Position {
		t.Fatalf("avatar should be mid-walk, got %+v", av.Position)
	}

	run(v, clock, 2*time.Second)
	if av.Anim != "sitting" {
		t.Fatalf("avatar should be seated, got %s", av.Anim)
	}
	if av.Position != seat.Position || av.Scale != 1 || av.Tilt != 0 {
		t.Fatalf("final pose = %+v scale=%v tilt=%v", av.Position, av.Scale, av.Tilt)
	}
}

func TestUnknownSeatFallsBackToRawPosition(t *testing.T) {
	v, ft, _ := newTestViewer(t, permission.RoleAudience)

	ft.avatarFn(engine.AvatarUpdateMsg{
		Type: engine.TypeAvatarUpdate, UserID: "u1", Username: "bob",
		X: 42, Y: 99, SeatID: "balcony-9-9",
	})

	av := v.avatars["u1"]
	if av.Position != (cp.Vector{X: 42, Y: 99}) {
		t.Fatalf("expected raw position fallback, got %+v", av.Position)
	}
	if av.Anim != "sitting" {
		t.Fatalf("fallback should not leave the avatar walking, got %s", av.Anim)
	}
}

func TestRejoinPopsInAtSeat(t *testing.T) {
	v, ft, clock := newTestViewer(t, permission.RoleAudience)

	seat := seatmap.FindSeat(v.Seats(), "lower-0-1")
	ft.avatarFn(engine.AvatarUpdateMsg{
		Type: engine.TypeAvatarUpdate, UserID: "u1", Username: "bob",
		X: 0, Y: 0, SeatID: "lower-0-1", Rejoin: true,
	})

	run(v, clock, 50*time.Millisecond)
	av := v.avatars["u1"]
	if av.Position != seat.Position {
		t.Fatalf("pop-in must not move, got %+v want %+v", av.Position, seat.Position)
	}
	if av.Scale >= 1 {
		t.Fatalf("pop-in should be growing from zero, scale=%v", av.Scale)
	}

	run(v, clock, time.Second)
	if av.Scale != 1 || av.Anim != "sitting" {
		t.Fatalf("pop-in should finish at full scale seated, scale=%v anim=%s", av.Scale, av.Anim)
	}
}

func TestLeaveWalksOutAndRemoves(t *testing.T) {
	v, ft, clock := newTestViewer(t, permission.RoleAudience)

	ft.avatarFn(engine.AvatarUpdateMsg{
		Type: engine.TypeAvatarUpdate, UserID: "u1", Username: "bob",
		X: 0, Y: 0, SeatID: "lower-0-0",
	})
	run(v, clock, 2*time.Second)
	seat := seatmap.FindSeat(v.Seats(), "lower-0-0")

	ft.leaveFn(engine.AvatarLeaveMsg{Type: engine.TypeAvatarLeave, UserID: "u1", Direction: "LEFT"})
	if seat.OccupiedBy != "" {
		t.Fatalf("leave should free the seat, got %q", seat.OccupiedBy)
	}

	run(v, clock, 400*time.Millisecond)
	av, ok := v.avatars["u1"]
	if !ok {
		t.Fatal("avatar removed before walk-out finished")
	}
	if av.Position.X >= seat.Position.X {
		t.Fatalf("LEFT exit should move -x, got %+v from %+v", av.Position, seat.Position)
	}

	run(v, clock, time.Second)
	if _, ok := v.avatars["u1"]; ok {
		t.Fatal("avatar should be removed after walk-out")
	}
}

func TestReassignmentCancelsInFlightWalk(t *testing.T) {
	v, ft, clock := newTestViewer(t, permission.RoleAudience)

	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u1", SeatID: "lower-0-0"})
	run(v, clock, 100*time.Millisecond)

	// Unseat, then seat elsewhere: one walk at a time.
	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u1", X: 10, Y: 10})
	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u1", SeatID: "mid-0-0"})
	if len(v.cancels) != 1 {
		t.Fatalf("expected exactly one in-flight walk, got %d", len(v.cancels))
	}

	target := seatmap.FindSeat(v.Seats(), "mid-0-0")
	run(v, clock, 2*time.Second)
	if av := v.avatars["u1"]; av.Position != target.Position {
		t.Fatalf("avatar should land on the new seat, got %+v", av.Position)
	}
}

func TestDirectSeatToSeatMove(t *testing.T) {
	v, ft, clock := newTestViewer(t, permission.RoleAudience)

	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u1", SeatID: "lower-0-0"})
	run(v, clock, 2*time.Second)

	// No intervening unseat: the push carries the new seat directly.
	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u1", SeatID: "mid-0-0"})

	av := v.avatars["u1"]
	if av.SeatID != "mid-0-0" {
		t.Fatalf("avatar seat = %q, want mid-0-0", av.SeatID)
	}
	old := seatmap.FindSeat(v.Seats(), "lower-0-0")
	if old.OccupiedBy != "" {
		t.Fatalf("old seat still occupied by %q", old.OccupiedBy)
	}
	target := seatmap.FindSeat(v.Seats(), "mid-0-0")
	if target.OccupiedBy != "u1" {
		t.Fatalf("new seat occupancy = %q, want u1", target.OccupiedBy)
	}
	if av.Position != target.Position || av.Anim != "sitting" {
		t.Fatalf("move should snap seated onto the new seat, got %+v %s", av.Position, av.Anim)
	}
	if len(v.cancels) != 0 {
		t.Fatalf("direct move must not start a walk, cancels=%d", len(v.cancels))
	}
}

func TestSeatToSeatMoveCancelsInFlightWalk(t *testing.T) {
	v, ft, clock := newTestViewer(t, permission.RoleAudience)

	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u1", SeatID: "lower-0-0"})
	run(v, clock, 100*time.Millisecond)

	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u1", SeatID: "mid-0-0"})
	if len(v.cancels) != 0 {
		t.Fatalf("walk should be cancelled by the move, cancels=%d", len(v.cancels))
	}
	target := seatmap.FindSeat(v.Seats(), "mid-0-0")
	if av := v.avatars["u1"]; av.Position != target.Position || av.Scale != 1 || av.Tilt != 0 {
		t.Fatalf("move should land the full pose, got %+v scale=%v tilt=%v", av.Position, av.Scale, av.Tilt)
	}
}

func TestEmoteEventSynthesizesInstanceAndHeat(t *testing.T) {
	v, ft, clock := newTestViewer(t, permission.RoleAudience)

	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u1", SeatID: "lower-0-0"})
	run(v, clock, 2*time.Second)

	ft.emoteFn(engine.EmoteMsg{Type: engine.TypeEmote, UserID: "u1", Kind: "clap"})
	sc := v.Scene(clock.Now())
	if len(sc.Emotes) != 1 || sc.Emotes[0].Kind != "clap" {
		t.Fatalf("expected one clap emote in scene, got %+v", sc.Emotes)
	}

	hot := v.Rig().HottestSeat()
	if hot == nil || hot.SeatID != "lower-0-0" {
		t.Fatalf("emote should heat the seat, got %+v", hot)
	}

	// Instances expire on their own.
	run(v, clock, 3*time.Second)
	if sc := v.Scene(clock.Now()); len(sc.Emotes) != 0 {
		t.Fatalf("emote should have expired, got %+v", sc.Emotes)
	}
}

func TestUnknownEmoteIgnored(t *testing.T) {
	v, ft, clock := newTestViewer(t, permission.RoleAudience)
	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u1", SeatID: "lower-0-0"})
	ft.emoteFn(engine.EmoteMsg{Type: engine.TypeEmote, UserID: "u1", Kind: "kazoo-solo"})
	if sc := v.Scene(clock.Now()); len(sc.Emotes) != 0 {
		t.Fatalf("unknown emote should be dropped, got %+v", sc.Emotes)
	}
}

func TestChatAnchorsBubbleAndHeat(t *testing.T) {
	v, ft, clock := newTestViewer(t, permission.RoleAudience)

	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u1", SeatID: "lower-0-2"})
	run(v, clock, 2*time.Second)
	ft.chatFn(engine.ChatMsg{Type: engine.TypeChat, ID: "m1", UserID: "u1", Kind: "HYPE", Text: "lets go"})

	sc := v.Scene(clock.Now())
	if len(sc.Bubbles) != 1 {
		t.Fatalf("expected one bubble, got %d", len(sc.Bubbles))
	}
	seat := seatmap.FindSeat(v.Seats(), "lower-0-2")
	want := seat.Position.Add(cp.Vector{Y: -50})
	if sc.Bubbles[0].Position != want {
		t.Fatalf("bubble position = %+v, want %+v", sc.Bubbles[0].Position, want)
	}

	hot := v.Rig().HottestSeat()
	if hot == nil || hot.SeatID != "lower-0-2" || hot.Score < 5 {
		t.Fatalf("hype chat should weigh 5, got %+v", hot)
	}
}

func TestGrantFeedsValidator(t *testing.T) {
	v, ft, clock := newTestViewer(t, permission.RoleAudience)

	ft.grantFn(engine.GrantMsg{
		Type: engine.TypeGrant, GrantID: "g1", RoomID: "main",
		GranteeID: "helper", GrantorID: "artist", Scope: "CHAT_REPLY",
		ExpiresAtMS: clock.Now().Add(time.Minute).UnixMilli(),
	})
	if !v.Validator().CanUserReply("main", "helper", permission.TierFree, permission.RoleAudience) {
		t.Fatal("grant should let the delegate reply")
	}

	ft.revokeFn(engine.RevokeMsg{Type: engine.TypeRevoke, GrantID: "g1"})
	if v.Validator().CanUserReply("main", "helper", permission.TierFree, permission.RoleAudience) {
		t.Fatal("revoked grant should stop replies")
	}
}

func TestSceneDepthOrder(t *testing.T) {
	v, ft, clock := newTestViewer(t, permission.RoleAudience)

	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u-back", SeatID: "lower-2-0"})
	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u-front", SeatID: "lower-0-0"})
	run(v, clock, 2*time.Second)

	sc := v.Scene(clock.Now())
	if len(sc.Avatars) != 2 {
		t.Fatalf("expected 2 avatars, got %d", len(sc.Avatars))
	}
	if sc.Avatars[0].UserID != "u-front" || sc.Avatars[1].UserID != "u-back" {
		t.Fatalf("avatars out of depth order: %s, %s", sc.Avatars[0].UserID, sc.Avatars[1].UserID)
	}
}

func TestBackFacingSprite(t *testing.T) {
	v, ft, clock := newTestViewer(t, permission.RoleAudience)

	// Audience seats face the stage; with the camera on the stage the
	// viewer sees their fronts.
	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u1", SeatID: "lower-0-0"})
	run(v, clock, 2*time.Second)
	v.Rig().FocusStage()
	sc := v.Scene(clock.Now())
	if sc.Avatars[0].Back {
		t.Fatal("camera at stage should see audience fronts")
	}

	// Pan far behind the audience and the camera sees backs.
	v.Rig().Pan(0, 2000)
	for i := 0; i < 600; i++ {
		clock.advance(16 * time.Millisecond)
		v.Update()
		sc = v.Scene(clock.Now())
	}
	if !sc.Avatars[0].Back {
		t.Fatal("camera behind audience should see backs")
	}
}

func TestCloseIdempotent(t *testing.T) {
	v, ft, clock := newTestViewer(t, permission.RoleAudience)
	ft.avatarFn(engine.AvatarUpdateMsg{Type: engine.TypeAvatarUpdate, UserID: "u1", SeatID: "lower-0-0"})

	v.Close()
	v.Close()

	if v.SessionState() != StateDisconnected {
		t.Fatalf("state = %s, want %s", v.SessionState(), StateDisconnected)
	}
	if len(v.cancels) != 0 {
		t.Fatalf("close should cancel all walks, %d left", len(v.cancels))
	}
	last := ft.sent[len(ft.sent)-1]
	if last != "disconnect" {
		t.Fatalf("close should disconnect the transport, last call %s", last)
	}

	// Scanning after close must not start.
	v.Rig().CrowdScan()
	run(v, clock, 100*time.Millisecond)
}

func TestReducedMotionNeverAutoPans(t *testing.T) {
	clock := newFakeClock()
	v := New(Config{RoomID: "main", Username: "alice", ReducedMotion: true, Now: clock.Now})
	if err := v.Connect(&fakeTransport{userID: "me"}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	v.Rig().CrowdScan()
	if v.Rig().State().Mode == camera.ModeSweep {
		t.Fatal("reduced motion must not enter sweep mode")
	}
}
