// Package permission gates who may reply and moderate in a room. Free-tier
// users are read-mostly; artists can temporarily delegate reply and
// moderation rights to team members through time-boxed grants. Checks return
// booleans, never errors: an expired grant is simply absent.
package permission

import (
	"fmt"
	"math/rand"
	"time"
)

// Tier is a user's subscription level.
type Tier string

const (
	TierFree     Tier = "FREE"
	TierPremium  Tier = "PREMIUM"
	TierVIP      Tier = "VIP"
	TierSponsor  Tier = "SPONSOR"
	TierOverseer Tier = "OVERSEER"
)

// Role is a user's function in a room.
type Role string

const (
	RoleAudience   Role = "AUDIENCE"
	RoleArtist     Role = "ARTIST"
	RoleArtistTeam Role = "ARTIST_TEAM"
	RoleMod        Role = "MOD"
	RoleAdmin      Role = "ADMIN"
)

// Scope is a capability a delegate grant confers.
type Scope string

const (
	ScopeChatReply  Scope = "CHAT_REPLY"
	ScopeModeration Scope = "MODERATION"
	ScopeRoomConfig Scope = "ROOM_CONFIG"
)

// Grant is a time-boxed capability an artist or admin extends to a team
// member. It confers capability only while now < ExpiresAt; an expired
// grant sitting in storage is inert, not an error.
type Grant struct {
	ID             string
	ArtistUserID   string
	DelegateUserID string
	Scopes         []Scope
	ExpiresAt      time.Time
	GrantedAt      time.Time
	GrantedBy      string
}

// Expired reports whether the grant is past its window at the given time.
func (g Grant) Expired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}

func (g Grant) hasScope(s Scope) bool {
	for _, sc := range g.Scopes {
		if sc == s {
			return true
		}
	}
	return false
}

func (g Grant) active(userID string, scope Scope, now time.Time) bool {
	return g.DelegateUserID == userID && !g.Expired(now) && g.hasScope(scope)
}

// CanSendMessage reports whether a tier may post public messages. Every
// tier may.
func CanSendMessage(tier Tier) bool {
	return true
}

// CanReply reports whether a user may reply to threads or DMs: any paid
// tier, admins and mods, or a delegate holding an unexpired CHAT_REPLY
// grant.
func CanReply(userID string, tier Tier, role Role, grants []Grant, now time.Time) bool {
	if tier != TierFree {
		return true
	}
	if role == RoleAdmin || role == RoleMod {
		return true
	}
	for _, g := range grants {
		if g.active(userID, ScopeChatReply, now) {
			return true
		}
	}
	return false
}

// CanModerate reports whether a user may perform moderation actions:
// admins, mods, the artist, or a delegate holding an unexpired MODERATION
// grant.
func CanModerate(userID string, role Role, grants []Grant, now time.Time) bool {
	if role == RoleAdmin || role == RoleMod || role == RoleArtist {
		return true
	}
	for _, g := range grants {
		if g.active(userID, ScopeModeration, now) {
			return true
		}
	}
	return false
}

// NewGrant builds a delegate grant expiring after duration. Pure factory;
// the caller persists it.
func NewGrant(artistUserID, delegateUserID string, scopes []Scope, duration time.Duration, grantedBy string, now time.Time) Grant {
	return Grant{
		ID:             fmt.Sprintf("delegate-%d-%06x", now.UnixMilli(), rand.Intn(1<<24)),
		ArtistUserID:   artistUserID,
		DelegateUserID: delegateUserID,
		Scopes:         append([]Scope(nil), scopes...),
		ExpiresAt:      now.Add(duration),
		GrantedAt:      now,
		GrantedBy:      grantedBy,
	}
}

// Revoke removes a grant by id, returning the filtered slice.
func Revoke(grants []Grant, grantID string) []Grant {
	out := grants[:0]
	for _, g := range grants {
		if g.ID != grantID {
			out = append(out, g)
		}
	}
	return out
}

// ActiveGrants returns the unexpired grants held by a user.
func ActiveGrants(userID string, grants []Grant, now time.Time) []Grant {
	var out []Grant
	for _, g := range grants {
		if g.DelegateUserID == userID && !g.Expired(now) {
			out = append(out, g)
		}
	}
	return out
}

// CleanupExpired drops expired grants. Storage hygiene only; correctness
// never depends on it.
func CleanupExpired(grants []Grant, now time.Time) []Grant {
	out := grants[:0]
	for _, g := range grants {
		if !g.Expired(now) {
			out = append(out, g)
		}
	}
	return out
}

// Summary is a user's effective capabilities, for display.
type Summary struct {
	CanSendPublic  bool
	CanReply       bool
	CanModerate    bool
	DelegateActive bool
	DelegateScopes []Scope
}

// Summarize evaluates a user's permissions against a grant list.
func Summarize(userID string, tier Tier, role Role, grants []Grant, now time.Time) Summary {
	active := ActiveGrants(userID, grants, now)
	seen := map[Scope]bool{}
	var scopes []Scope
	for _, g := range active {
		for _, s := range g.Scopes {
			if !seen[s] {
				seen[s] = true
				scopes = append(scopes, s)
			}
		}
	}
	return Summary{
		CanSendPublic:  CanSendMessage(tier),
		CanReply:       CanReply(userID, tier, role, grants, now),
		CanModerate:    CanModerate(userID, role, grants, now),
		DelegateActive: len(active) > 0,
		DelegateScopes: scopes,
	}
}
