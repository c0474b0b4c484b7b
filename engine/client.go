package engine

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

const inboxSize = 256

// Client is a connection to the arena realtime service. A reader
// goroutine decodes nothing; it only queues raw frames. All decoding,
// dispatch, and subscription bookkeeping happens inside Drain, which
// the game loop must call once per frame. Everything except the reader
// therefore runs on the game loop and needs no locks.
type Client struct {
	conn  *websocket.Conn
	inbox chan []byte

	readErr  error
	errOnce  sync.Once
	errCh    chan error
	closed   bool
	userID   string
	roomID   string
	welcomed bool

	nextSub    int
	avatarSubs map[int]func(AvatarUpdateMsg)
	leaveSubs  map[int]func(AvatarLeaveMsg)
	seatSubs   map[int]func(SeatUpdateMsg)
	chatSubs   map[int]func(ChatMsg)
	emoteSubs  map[int]func(EmoteMsg)
	grantSubs  map[int]func(GrantMsg)
	revokeSubs map[int]func(RevokeMsg)
	errorSubs  map[int]func(ErrorMsg)
}

// Connect dials the service. A failed dial is returned to the caller;
// the client never retries on its own.
func Connect(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("engine: dial %s: %w", url, err)
	}

	c := &Client{
		conn:       conn,
		inbox:      make(chan []byte, inboxSize),
		errCh:      make(chan error, 1),
		avatarSubs: make(map[int]func(AvatarUpdateMsg)),
		leaveSubs:  make(map[int]func(AvatarLeaveMsg)),
		seatSubs:   make(map[int]func(SeatUpdateMsg)),
		chatSubs:   make(map[int]func(ChatMsg)),
		emoteSubs:  make(map[int]func(EmoteMsg)),
		grantSubs:  make(map[int]func(GrantMsg)),
		revokeSubs: make(map[int]func(RevokeMsg)),
		errorSubs:  make(map[int]func(ErrorMsg)),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.errOnce.Do(func() {
				c.errCh <- err
				close(c.inbox)
			})
			return
		}
		select {
		case c.inbox <- msg:
		default:
			// Inbox full: drop the oldest frame to keep latest state.
			select {
			case <-c.inbox:
			default:
			}
			c.inbox <- msg
		}
	}
}

// Disconnect closes the connection. Safe to call more than once.
func (c *Client) Disconnect() {
	if c.closed {
		return
	}
	c.closed = true
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}

// Connected reports whether the connection is still usable.
func (c *Client) Connected() bool {
	return !c.closed && c.readErr == nil
}

// UserID returns the identity assigned by the welcome message.
func (c *Client) UserID() string {
	return c.userID
}

func (c *Client) send(v any) error {
	if !c.Connected() {
		return fmt.Errorf("engine: send: not connected")
	}
	if err := c.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("engine: send: %w", err)
	}
	return nil
}

func (c *Client) JoinRoom(roomID, username, role string) error {
	return c.send(JoinRoomMsg{
		Type:            TypeJoinRoom,
		ProtocolVersion: Version,
		RoomID:          roomID,
		Username:        username,
		Role:            role,
	})
}

func (c *Client) JoinAsAvatar(assetID string) error {
	return c.send(JoinAvatarMsg{Type: TypeJoinAvatar, AssetID: assetID})
}

func (c *Client) RequestSeat(preferredTier string) error {
	return c.send(SeatRequestMsg{Type: TypeSeatRequest, PreferredTier: preferredTier})
}

func (c *Client) LeaveRoom() error {
	return c.send(LeaveRoomMsg{Type: TypeLeaveRoom})
}

func (c *Client) SendChat(kind, text string) error {
	return c.send(ChatSendMsg{Type: TypeChat, Kind: kind, Text: text})
}

func (c *Client) SendEmote(kind string) error {
	return c.send(EmoteSendMsg{Type: TypeEmote, Kind: kind})
}

// Drain dispatches every queued push to its subscribers. It never
// blocks; call it once per frame from the game loop. The returned
// error is the terminal read error, reported once.
func (c *Client) Drain() error {
	for {
		select {
		case msg, ok := <-c.inbox:
			if !ok {
				if c.readErr == nil {
					c.readErr = <-c.errCh
					if c.closed {
						return nil
					}
					return fmt.Errorf("engine: read: %w", c.readErr)
				}
				return nil
			}
			c.dispatch(msg)
		default:
			return nil
		}
	}
}

func (c *Client) dispatch(msg []byte) {
	base, err := DecodeBase(msg)
	if err != nil {
		log.Printf("engine: undecodable frame: %v", err)
		return
	}

	switch base.Type {
	case TypeWelcome:
		var m WelcomeMsg
		if json.Unmarshal(msg, &m) == nil {
			c.userID = m.UserID
			c.roomID = m.RoomID
			c.welcomed = true
		}
	case TypeAvatarUpdate:
		var m AvatarUpdateMsg
		if json.Unmarshal(msg, &m) == nil {
			for _, fn := range snapshot(c.avatarSubs) {
				fn(m)
			}
		}
	case TypeAvatarLeave:
		var m AvatarLeaveMsg
		if json.Unmarshal(msg, &m) == nil {
			for _, fn := range snapshot(c.leaveSubs) {
				fn(m)
			}
		}
	case TypeSeatUpdate:
		var m SeatUpdateMsg
		if json.Unmarshal(msg, &m) == nil {
			for _, fn := range snapshot(c.seatSubs) {
				fn(m)
			}
		}
	case TypeChat:
		var m ChatMsg
		if json.Unmarshal(msg, &m) == nil {
			for _, fn := range snapshot(c.chatSubs) {
				fn(m)
			}
		}
	case TypeEmote:
		var m EmoteMsg
		if json.Unmarshal(msg, &m) == nil {
			for _, fn := range snapshot(c.emoteSubs) {
				fn(m)
			}
		}
	case TypeGrant:
		var m GrantMsg
		if json.Unmarshal(msg, &m) == nil {
			for _, fn := range snapshot(c.grantSubs) {
				fn(m)
			}
		}
	case TypeRevoke:
		var m RevokeMsg
		if json.Unmarshal(msg, &m) == nil {
			for _, fn := range snapshot(c.revokeSubs) {
				fn(m)
			}
		}
	case TypeError:
		var m ErrorMsg
		if json.Unmarshal(msg, &m) == nil {
			for _, fn := range snapshot(c.errorSubs) {
				fn(m)
			}
		}
	default:
		log.Printf("engine: unknown message type %q", base.Type)
	}
}

// snapshot freezes the subscriber set for one update so that an
// unsubscribe during dispatch stops future updates but not the one in
// flight for other subscribers, and each subscriber sees the update at
// most once.
func snapshot[T any](subs map[int]func(T)) []func(T) {
	out := make([]func(T), 0, len(subs))
	for _, fn := range subs {
		out = append(out, fn)
	}
	return out
}

func subscribe[T any](c *Client, subs map[int]func(T), fn func(T)) func() {
	c.nextSub++
	id := c.nextSub
	subs[id] = fn
	return func() {
		delete(subs, id)
	}
}

// OnAvatarUpdate registers a subscriber; the returned func removes it
// synchronously.
func (c *Client) OnAvatarUpdate(fn func(AvatarUpdateMsg)) func() {
	return subscribe(c, c.avatarSubs, fn)
}

func (c *Client) OnAvatarLeave(fn func(AvatarLeaveMsg)) func() {
	return subscribe(c, c.leaveSubs, fn)
}

func (c *Client) OnSeatUpdate(fn func(SeatUpdateMsg)) func() {
	return subscribe(c, c.seatSubs, fn)
}

func (c *Client) OnChat(fn func(ChatMsg)) func() {
	return subscribe(c, c.chatSubs, fn)
}

func (c *Client) OnEmote(fn func(EmoteMsg)) func() {
	return subscribe(c, c.emoteSubs, fn)
}

func (c *Client) OnGrant(fn func(GrantMsg)) func() {
	return subscribe(c, c.grantSubs, fn)
}

func (c *Client) OnRevoke(fn func(RevokeMsg)) func() {
	return subscribe(c, c.revokeSubs, fn)
}

func (c *Client) OnError(fn func(ErrorMsg)) func() {
	return subscribe(c, c.errorSubs, fn)
}
