package viewer

import (
	"sort"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/stagefront/arena/camera"
	"github.com/stagefront/arena/chat"
	"github.com/stagefront/arena/emote"
	"github.com/stagefront/arena/seatmap"
)

// SeatMarker is one seat as the renderer should draw it.
type SeatMarker struct {
	SeatID   string
	Position cp.Vector
	Tier     seatmap.Tier
	Occupied bool
	Reserved bool
	Badge    string
}

// AvatarSprite is one avatar with its walk state folded in. Back is
// true when the camera sees the back of the seat the avatar occupies.
type AvatarSprite struct {
	UserID   string
	Username string
	Position cp.Vector
	Tilt     float64
	Scale    float64
	Depth    int
	Back     bool
	Anim     string
	Equipped map[string]string
}

// EmoteSprite is one live emote burst with its computed frame.
type EmoteSprite struct {
	Kind  string
	Icon  string
	Frame emote.Frame
}

// BubbleSprite is a seat bubble resolved to a world position.
type BubbleSprite struct {
	Bubble   chat.SeatBubble
	Position cp.Vector
}

// Scene is one frame of declarative render data. Draw order: stage,
// seats, avatars (already depth sorted), then the emote and bubble
// overlays. The scene layer gets the camera transform; overlays and
// pinned bubbles do not.
type Scene struct {
	State  State
	Camera camera.State
	Stage  cp.Vector

	Seats   []SeatMarker
	Avatars []AvatarSprite
	Emotes  []EmoteSprite
	Bubbles []BubbleSprite
	Pinned  []chat.PinnedBubble
}

// Scene assembles the frame at now. It advances the camera, so call it
// once per frame after Update.
func (v *Viewer) Scene(now time.Time) Scene {
	cam := v.rig.Update()

	sc := Scene{
		State:  v.state,
		Camera: cam,
		Stage:  v.stage,
	}

	sc.Seats = make([]SeatMarker, 0, len(v.seats))
	for _, s := range v.seats {
		sc.Seats = append(sc.Seats, SeatMarker{
			SeatID:   s.SeatID,
			Position: s.Position,
			Tier:     s.Tier,
			Occupied: s.OccupiedBy != "",
			Reserved: s.IsReserved,
			Badge:    s.SponsorBadge,
		})
	}

	sc.Avatars = v.avatarSprites(cam)
	sc.Emotes = v.emoteSprites(now)
	sc.Bubbles = v.bubbleSprites(now)
	sc.Pinned = chat.PinnedBubbles(v.messages, now, v.chatCfg)
	return sc
}

func (v *Viewer) avatarSprites(cam camera.State) []AvatarSprite {
	out := make([]AvatarSprite, 0, len(v.avatars))
	for _, av := range v.avatars {
		if !av.Visible {
			continue
		}

		sprite := AvatarSprite{
			UserID:   av.UserID,
			Username: av.Username,
			Position: av.Position,
			Tilt:     av.Tilt,
			Scale:    av.Scale,
			Anim:     av.Anim,
			Equipped: av.Equipped,
		}
		if seat, ok := v.seatIndex[av.SeatID]; ok {
			sprite.Depth = seat.RenderDepth
			camYaw := yawToward(seat.Position, cam.Current)
			sprite.Back = seatmap.IsBackFacingCamera(seat.Yaw, camYaw)
		}
		out = append(out, sprite)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func (v *Viewer) emoteSprites(now time.Time) []EmoteSprite {
	out := make([]EmoteSprite, 0, len(v.emotes))
	for _, e := range v.emotes {
		f := e.Layout(now, 1)
		if f.Done {
			continue
		}
		icon := ""
		if def, ok := v.registry.Get(e.Kind); ok {
			icon = def.Icon
		}
		out = append(out, EmoteSprite{Kind: e.Kind, Icon: icon, Frame: f})
	}
	return out
}

func (v *Viewer) bubbleSprites(now time.Time) []BubbleSprite {
	bubbles := chat.SeatBubbles(v.messages, now, v.chatCfg)
	out := make([]BubbleSprite, 0, len(bubbles))
	for _, b := range bubbles {
		seat, ok := v.seatIndex[b.Message.SeatID]
		if !ok {
			continue
		}
		out = append(out, BubbleSprite{
			Bubble:   b,
			Position: seat.Position.Add(b.Offset),
		})
	}
	return out
}
