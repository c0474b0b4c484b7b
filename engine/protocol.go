// Package engine is the websocket client for the arena realtime
// service. The wire format is JSON with a type discriminator; pushes
// are decoded on a reader goroutine and handed to the game loop
// through Drain.
package engine

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeJoinRoom    = "JOIN_ROOM"
	TypeJoinAvatar  = "JOIN_AVATAR"
	TypeSeatRequest = "SEAT_REQUEST"
	TypeLeaveRoom   = "LEAVE_ROOM"
	TypeChat        = "CHAT"
	TypeEmote       = "EMOTE"

	TypeWelcome      = "WELCOME"
	TypeAvatarUpdate = "AVATAR_UPDATE"
	TypeAvatarLeave  = "AVATAR_LEAVE"
	TypeSeatUpdate   = "SEAT_UPDATE"
	TypeGrant        = "GRANT"
	TypeRevoke       = "REVOKE"
	TypeError        = "ERROR"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// Client -> server.

type JoinRoomMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RoomID          string `json:"room_id"`
	Username        string `json:"username"`
	Role            string `json:"role,omitempty"`
}

type JoinAvatarMsg struct {
	Type    string `json:"type"`
	AssetID string `json:"asset_id"`
}

type SeatRequestMsg struct {
	Type          string `json:"type"`
	PreferredTier string `json:"preferred_tier"`
}

type LeaveRoomMsg struct {
	Type string `json:"type"`
}

type ChatSendMsg struct {
	Type string `json:"type"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type EmoteSendMsg struct {
	Type string `json:"type"`
	Kind string `json:"kind"`
}

// Server -> client.

type WelcomeMsg struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	RoomID string `json:"room_id"`
}

// AvatarUpdateMsg is the authoritative avatar state push. SeatID is
// empty while the user is unseated; Rejoin marks a user returning to a
// seat they already held.
type AvatarUpdateMsg struct {
	Type     string            `json:"type"`
	UserID   string            `json:"user_id"`
	Username string            `json:"username"`
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
	SeatID   string            `json:"seat_id,omitempty"`
	Rejoin   bool              `json:"rejoin,omitempty"`
	Role     string            `json:"role,omitempty"`
	Equipped map[string]string `json:"equipped,omitempty"`
	Meta     map[string]string `json:"meta,omitempty"`
}

type AvatarLeaveMsg struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	Direction string `json:"direction,omitempty"`
}

type SeatUpdateMsg struct {
	Type       string `json:"type"`
	SeatID     string `json:"seat_id"`
	OccupiedBy string `json:"occupied_by,omitempty"`
	Reserved   bool   `json:"reserved,omitempty"`
}

type ChatMsg struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	SeatID   string `json:"seat_id,omitempty"`
	Kind     string `json:"kind"`
	Text     string `json:"text"`
	Amount   int    `json:"amount,omitempty"`
}

type EmoteMsg struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Kind       string `json:"kind"`
	DurationMS int    `json:"duration_ms,omitempty"`
}

type GrantMsg struct {
	Type        string `json:"type"`
	GrantID     string `json:"grant_id"`
	RoomID      string `json:"room_id"`
	GranteeID   string `json:"grantee_id"`
	GrantorID   string `json:"grantor_id"`
	Scope       string `json:"scope"`
	ExpiresAtMS int64  `json:"expires_at_ms"`
}

type RevokeMsg struct {
	Type    string `json:"type"`
	GrantID string `json:"grant_id"`
}

type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
