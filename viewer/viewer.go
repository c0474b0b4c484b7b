// Package viewer is the arena session orchestrator. It owns the seat
// map, the live avatar collection, chat, emotes, and the camera rig,
// and marshals transport pushes onto the frame scheduler's execution
// context. Everything here runs single threaded; the only goroutine in
// the system is the transport reader, which never touches this state.
package viewer

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/stagefront/arena/anim"
	"github.com/stagefront/arena/camera"
	"github.com/stagefront/arena/chat"
	"github.com/stagefront/arena/emote"
	"github.com/stagefront/arena/engine"
	"github.com/stagefront/arena/frame"
	"github.com/stagefront/arena/inventory"
	"github.com/stagefront/arena/layout"
	"github.com/stagefront/arena/permission"
	"github.com/stagefront/arena/seatmap"
)

// State tracks the session lifecycle.
type State string

const (
	StateDisconnected State = "DISCONNECTED"
	StateConnecting   State = "CONNECTING"
	StateConnected    State = "CONNECTED"
	StateSeated       State = "SEATED"
)

// Transport is the realtime service as the orchestrator sees it.
// *engine.Client satisfies it; tests substitute a fake.
type Transport interface {
	JoinRoom(roomID, username, role string) error
	JoinAsAvatar(assetID string) error
	RequestSeat(preferredTier string) error
	LeaveRoom() error
	Disconnect()
	Drain() error
	Connected() bool
	UserID() string

	OnAvatarUpdate(func(engine.AvatarUpdateMsg)) func()
	OnAvatarLeave(func(engine.AvatarLeaveMsg)) func()
	OnSeatUpdate(func(engine.SeatUpdateMsg)) func()
	OnChat(func(engine.ChatMsg)) func()
	OnEmote(func(engine.EmoteMsg)) func()
	OnGrant(func(engine.GrantMsg)) func()
	OnRevoke(func(engine.RevokeMsg)) func()
}

// Avatar is the render state of one connected user.
type Avatar struct {
	UserID   string
	Username string
	Position cp.Vector
	SeatID   string
	Role     string
	Equipped map[string]string
	Anim     string // idle, walking, sitting, leaving
	Tilt     float64
	Scale    float64
	Visible  bool
}

// Config sets up a session.
type Config struct {
	RoomID        string
	Username      string
	Role          permission.Role
	AssetID       string
	ReducedMotion bool
	Arena         *layout.ArenaSpec // nil uses the built-in bowl
	Now           func() time.Time  // nil uses time.Now
}

// Viewer composes the arena subsystems for one session.
type Viewer struct {
	cfg   Config
	now   func() time.Time
	sched *frame.Scheduler

	seats     []*seatmap.Seat
	seatIndex map[string]*seatmap.Seat
	stage     cp.Vector

	rig       *camera.Rig
	registry  *emote.Registry
	inventory *inventory.Manager
	validator *permission.Validator

	transport Transport
	unsubs    []func()
	state     State

	avatars  map[string]*Avatar
	cancels  map[string]anim.CancelFunc
	messages []chat.Message
	emotes   []emote.Instance
	emoteSeq int
	chatCfg  chat.Config

	closed bool
}

// New builds a session from the layout. The camera starts framed wide
// on the stage.
func New(cfg Config) *Viewer {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	seatCfg := seatmap.DefaultConfig()
	var vipReserved int
	var vipBadge string
	if cfg.Arena != nil {
		seatCfg = cfg.Arena.SeatConfig()
		vipReserved = cfg.Arena.VIP.Reserved
		vipBadge = cfg.Arena.VIP.Badge
	}

	seats := seatmap.GenerateAudienceSeats(seatCfg)
	seats = append(seats, seatmap.GenerateStageSeats(seatCfg.StageCenter)...)
	if vipReserved > 0 {
		seatmap.ReserveVIPSeats(seats, vipReserved, vipBadge)
	}

	index := make(map[string]*seatmap.Seat, len(seats))
	for _, s := range seats {
		index[s.SeatID] = s
	}

	v := &Viewer{
		cfg:       cfg,
		now:       cfg.Now,
		sched:     frame.NewScheduler(cfg.Now),
		seats:     seats,
		seatIndex: index,
		stage:     seatCfg.StageCenter,
		avatars:   make(map[string]*Avatar),
		cancels:   make(map[string]anim.CancelFunc),
		state:     StateDisconnected,
		chatCfg:   chat.DefaultConfig(),
	}

	v.inventory = inventory.NewManager()
	v.registry = emote.NewRegistry(v.inventory)
	v.registry.RegisterAll(emote.DefaultDefinitions())
	v.validator = permission.NewValidator(cfg.Now)

	rigCfg := camera.DefaultConfig()
	rigCfg.StageCenter = seatCfg.StageCenter
	rigCfg.ReducedMotion = cfg.ReducedMotion
	if cfg.Arena != nil {
		applyCameraSpec(&rigCfg, cfg.Arena.Camera)
	}
	v.rig = camera.NewRig(v.sched, rigCfg, func(seatID string) (cp.Vector, bool) {
		s, ok := index[seatID]
		if !ok {
			return cp.Vector{}, false
		}
		return s.Position, true
	})

	return v
}

// Scheduler exposes the frame scheduler so the host loop can drive it.
func (v *Viewer) Scheduler() *frame.Scheduler { return v.sched }

// Rig exposes the camera for HUD controls and show scripting.
func (v *Viewer) Rig() *camera.Rig { return v.rig }

// Registry exposes the emote catalog.
func (v *Viewer) Registry() *emote.Registry { return v.registry }

// Inventory exposes the item catalog and holdings.
func (v *Viewer) Inventory() *inventory.Manager { return v.inventory }

// Validator exposes the delegate permission state.
func (v *Viewer) Validator() *permission.Validator { return v.validator }

// SessionState reports the connection lifecycle state.
func (v *Viewer) SessionState() State { return v.state }

// Seats returns the seat map. Callers must not mutate it.
func (v *Viewer) Seats() []*seatmap.Seat { return v.seats }

func applyCameraSpec(cfg *camera.Config, spec layout.CameraSpec) {
	if spec.Zoom > 0 {
		cfg.DefaultZoom = spec.Zoom
	}
	if spec.Smoothness > 0 {
		cfg.InterpolationSpeed = spec.Smoothness
	}
	if spec.ScanIntervalMS > 0 {
		cfg.ScanInterval = time.Duration(spec.ScanIntervalMS) * time.Millisecond
	}
}

// RetuneCamera applies a freshly loaded layout's camera tuning to the
// live rig. Seat geometry is fixed for the session; only tuning moves.
func (v *Viewer) RetuneCamera(spec layout.CameraSpec) {
	cfg := camera.DefaultConfig()
	cfg.StageCenter = v.stage
	cfg.ReducedMotion = v.cfg.ReducedMotion
	applyCameraSpec(&cfg, spec)
	v.rig.Retune(cfg)
}

// preferredTier maps a role to the tier it should ask for.
func preferredTier(role permission.Role) seatmap.Tier {
	if role == permission.RoleArtist || role == permission.RoleArtistTeam {
		return seatmap.TierStage
	}
	return seatmap.TierLower
}

// Connect joins the room over the given transport. A failure is
// returned to the caller and the session stays disconnected; retrying
// is the caller's call.
func (v *Viewer) Connect(t Transport) error {
	if v.closed {
		return fmt.Errorf("viewer: connect: session closed")
	}
	v.state = StateConnecting

	join := func() error {
		if err := t.JoinRoom(v.cfg.RoomID, v.cfg.Username, string(v.cfg.Role)); err != nil {
			return err
		}
		if err := t.JoinAsAvatar(v.cfg.AssetID); err != nil {
			return err
		}
		return t.RequestSeat(string(preferredTier(v.cfg.Role)))
	}
	if err := join(); err != nil {
		v.state = StateDisconnected
		return fmt.Errorf("viewer: connect: %w", err)
	}

	v.transport = t
	v.unsubs = []func(){
		t.OnAvatarUpdate(v.handleAvatarUpdate),
		t.OnAvatarLeave(v.handleAvatarLeave),
		t.OnSeatUpdate(v.handleSeatUpdate),
		t.OnChat(v.handleChat),
		t.OnEmote(v.handleEmote),
		t.OnGrant(v.handleGrant),
		t.OnRevoke(v.handleRevoke),
	}
	v.state = StateConnected
	return nil
}

// Update runs one frame: transport pushes first, then scheduled
// animation and camera work, then expiry sweeps.
func (v *Viewer) Update() {
	if v.closed {
		return
	}
	if v.transport != nil {
		if err := v.transport.Drain(); err != nil {
			log.Printf("viewer: transport lost: %v", err)
			v.teardownTransport()
			v.state = StateDisconnected
		}
	}
	v.sched.Step()
	v.pruneExpired()
}

func (v *Viewer) pruneExpired() {
	now := v.now()

	live := v.messages[:0]
	for _, m := range v.messages {
		lifetime := v.chatCfg.SeatBubbleLifetime
		if m.Kind == chat.KindPinned {
			lifetime = v.chatCfg.PinnedBubbleLifetime
		}
		cutoff := m.CreatedAt.Add(lifetime)
		if !m.ExpiresAt.IsZero() {
			cutoff = m.ExpiresAt
		}
		if now.Before(cutoff) {
			live = append(live, m)
		}
	}
	v.messages = live

	liveEmotes := v.emotes[:0]
	for _, e := range v.emotes {
		if !e.Layout(now, 1).Done {
			liveEmotes = append(liveEmotes, e)
		}
	}
	v.emotes = liveEmotes
}

func (v *Viewer) handleAvatarUpdate(m engine.AvatarUpdateMsg) {
	if v.closed {
		return
	}

	av, ok := v.avatars[m.UserID]
	if !ok {
		av = &Avatar{
			UserID:   m.UserID,
			Position: cp.Vector{X: m.X, Y: m.Y},
			Anim:     "idle",
			Scale:    1,
			Visible:  true,
		}
		v.avatars[m.UserID] = av
	}
	av.Username = m.Username
	av.Role = m.Role
	if m.Equipped != nil {
		av.Equipped = m.Equipped
	}

	switch {
	case av.SeatID == "" && m.SeatID != "":
		v.seatAvatar(av, m)
	case av.SeatID != "" && m.SeatID == "":
		v.cancelWalk(av.UserID)
		v.releaseSeat(av.SeatID, av.UserID)
		av.SeatID = ""
		av.Anim = "idle"
		av.Position = cp.Vector{X: m.X, Y: m.Y}
	case av.SeatID != "" && m.SeatID != av.SeatID:
		v.reseatAvatar(av, m)
	default:
		// Already seated or still roaming: replace render state. An
		// in-flight walk overwrites this on the next scheduler step.
		if av.Anim != "walking" && av.Anim != "leaving" {
			av.Position = cp.Vector{X: m.X, Y: m.Y}
		}
	}

	if v.transport != nil && m.UserID == v.transport.UserID() && av.SeatID != "" {
		v.state = StateSeated
	}
}

// seatAvatar handles the no-seat to has-seat transition: cancel any
// in-flight walk, then animate to the seat. An unknown seat id falls
// back to the raw position from the update.
func (v *Viewer) seatAvatar(av *Avatar, m engine.AvatarUpdateMsg) {
	seat, ok := v.seatIndex[m.SeatID]
	if !ok {
		log.Printf("viewer: user %s assigned unknown seat %q, using raw position", m.UserID, m.SeatID)
		av.SeatID = m.SeatID
		av.Position = cp.Vector{X: m.X, Y: m.Y}
		av.Anim = "sitting"
		return
	}

	v.cancelWalk(av.UserID)
	av.SeatID = m.SeatID
	seat.OccupiedBy = av.UserID

	userID := av.UserID
	onUpdate := func(st anim.State) {
		a, ok := v.avatars[userID]
		if !ok {
			return
		}
		a.Position = st.Position
		a.Tilt = st.Tilt
		a.Scale = st.Scale
	}
	onDone := func() {
		delete(v.cancels, userID)
		if a, ok := v.avatars[userID]; ok {
			a.Anim = "sitting"
		}
	}

	av.Anim = "walking"
	if m.Rejoin {
		v.cancels[userID] = anim.AnimatePopIn(v.sched, seat.Position, onUpdate, onDone, 0)
	} else {
		v.cancels[userID] = anim.AnimateToSeat(v.sched, av.Position, seat.Position, onUpdate, onDone, anim.DefaultConfig())
	}
}

// reseatAvatar handles a direct seat-to-seat move. The avatar snaps to
// the new seat without a walk; occupancy follows the push.
func (v *Viewer) reseatAvatar(av *Avatar, m engine.AvatarUpdateMsg) {
	v.cancelWalk(av.UserID)
	v.releaseSeat(av.SeatID, av.UserID)
	av.SeatID = m.SeatID
	av.Anim = "sitting"
	av.Tilt = 0
	av.Scale = 1

	seat, ok := v.seatIndex[m.SeatID]
	if !ok {
		log.Printf("viewer: user %s assigned unknown seat %q, using raw position", m.UserID, m.SeatID)
		av.Position = cp.Vector{X: m.X, Y: m.Y}
		return
	}
	seat.OccupiedBy = av.UserID
	av.Position = seat.Position
}

func (v *Viewer) handleAvatarLeave(m engine.AvatarLeaveMsg) {
	if v.closed {
		return
	}
	av, ok := v.avatars[m.UserID]
	if !ok {
		return
	}

	v.cancelWalk(m.UserID)
	if av.SeatID != "" {
		v.releaseSeat(av.SeatID, m.UserID)
	}

	dir := anim.ExitDirection(m.Direction)
	if dir == "" {
		dir = anim.ExitBack
	}

	userID := m.UserID
	av.Anim = "leaving"
	v.cancels[userID] = anim.AnimateWalkOut(v.sched, av.Position,
		dir,
		func(st anim.State) {
			if a, ok := v.avatars[userID]; ok {
				a.Position = st.Position
				a.Tilt = st.Tilt
				a.Scale = st.Scale
			}
		},
		func() {
			delete(v.cancels, userID)
			delete(v.avatars, userID)
		}, 0)
}

func (v *Viewer) handleSeatUpdate(m engine.SeatUpdateMsg) {
	seat, ok := v.seatIndex[m.SeatID]
	if !ok {
		log.Printf("viewer: seat update for unknown seat %q", m.SeatID)
		return
	}
	seat.OccupiedBy = m.OccupiedBy
	seat.IsReserved = m.Reserved
}

func chatKind(kind string) chat.Kind {
	switch kind {
	case "HYPE":
		return chat.KindHype
	case "TIP":
		return chat.KindTip
	case "PINNED":
		return chat.KindPinned
	case "MOD":
		return chat.KindMod
	case "SPONSORED":
		return chat.KindSponsored
	}
	return chat.KindNormal
}

func activityFor(kind chat.Kind) (camera.ActivityKind, bool) {
	switch kind {
	case chat.KindHype:
		return camera.ActivityHype, true
	case chat.KindTip:
		return camera.ActivityTip, true
	case chat.KindNormal, chat.KindMod, chat.KindSponsored:
		return camera.ActivityChat, true
	}
	return "", false
}

func (v *Viewer) handleChat(m engine.ChatMsg) {
	if v.closed {
		return
	}

	seatID := m.SeatID
	if seatID == "" {
		if av, ok := v.avatars[m.UserID]; ok {
			seatID = av.SeatID
		}
	}

	kind := chatKind(m.Kind)
	v.messages = append(v.messages, chat.Message{
		ID:        m.ID,
		UserID:    m.UserID,
		Username:  m.Username,
		Content:   m.Text,
		CreatedAt: v.now(),
		Kind:      kind,
		SeatID:    seatID,
	})

	if seatID != "" {
		if activity, ok := activityFor(kind); ok {
			v.rig.TrackActivity(seatID, activity)
		}
	}
}

const emoteAnchorOffset = 40.0

func (v *Viewer) handleEmote(m engine.EmoteMsg) {
	if v.closed {
		return
	}
	av, ok := v.avatars[m.UserID]
	if !ok {
		return
	}
	if _, known := v.registry.Get(m.Kind); !known {
		log.Printf("viewer: user %s sent unknown emote %q", m.UserID, m.Kind)
		return
	}

	duration := 2 * time.Second
	if m.DurationMS > 0 {
		duration = time.Duration(m.DurationMS) * time.Millisecond
	}

	v.emoteSeq++
	id := m.ID
	if id == "" {
		id = fmt.Sprintf("emote-%d", v.emoteSeq)
	}
	v.emotes = append(v.emotes, emote.Instance{
		ID:        id,
		UserID:    m.UserID,
		Kind:      m.Kind,
		Position:  cp.Vector{X: av.Position.X, Y: av.Position.Y - emoteAnchorOffset},
		StartTime: v.now(),
		Duration:  duration,
	})

	if av.SeatID != "" {
		v.rig.TrackActivity(av.SeatID, camera.ActivityEmote)
	}
}

func (v *Viewer) handleGrant(m engine.GrantMsg) {
	roomID := m.RoomID
	if roomID == "" {
		roomID = v.cfg.RoomID
	}
	v.validator.AddGrant(roomID, permission.Grant{
		ID:             m.GrantID,
		ArtistUserID:   m.GrantorID,
		DelegateUserID: m.GranteeID,
		Scopes:         []permission.Scope{permission.Scope(m.Scope)},
		ExpiresAt:      time.UnixMilli(m.ExpiresAtMS),
		GrantedAt:      v.now(),
		GrantedBy:      m.GrantorID,
	})
}

func (v *Viewer) handleRevoke(m engine.RevokeMsg) {
	v.validator.RemoveGrant(v.cfg.RoomID, m.GrantID)
}

func (v *Viewer) cancelWalk(userID string) {
	if cancel, ok := v.cancels[userID]; ok {
		cancel()
		delete(v.cancels, userID)
	}
}

func (v *Viewer) releaseSeat(seatID, userID string) {
	if seat, ok := v.seatIndex[seatID]; ok && seat.OccupiedBy == userID {
		seat.OccupiedBy = ""
	}
}

// NearestAvailableSeat previews local auto-assignment. The transport
// stays the source of truth; this never occupies the seat.
func (v *Viewer) NearestAvailableSeat() *seatmap.Seat {
	return seatmap.FindNearestAvailableSeat(v.seats, preferredTier(v.cfg.Role))
}

func (v *Viewer) teardownTransport() {
	for _, unsub := range v.unsubs {
		unsub()
	}
	v.unsubs = nil
	v.transport = nil
}

// Close cancels every animation, stops the camera, and disconnects.
// Safe to call more than once.
func (v *Viewer) Close() {
	if v.closed {
		return
	}
	v.closed = true

	for userID, cancel := range v.cancels {
		cancel()
		delete(v.cancels, userID)
	}
	v.rig.Destroy()
	if v.transport != nil {
		_ = v.transport.LeaveRoom()
		v.transport.Disconnect()
		v.teardownTransport()
	}
	v.state = StateDisconnected
}

// yawToward is the direction from one point to another in seat yaw
// convention.
func yawToward(from, to cp.Vector) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X) * (180 / math.Pi)
}
