package permission

import "time"

// Validator is the server-side enforcement point for reply and moderation
// checks, keyed by room. Every gated action must go through it; a
// client-asserted role is never trusted. Expired grants are filtered on
// every read.
type Validator struct {
	now    func() time.Time
	grants map[string][]Grant
}

// NewValidator creates a validator. A nil clock defaults to time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{
		now:    now,
		grants: make(map[string][]Grant),
	}
}

// AddGrant stores a delegate grant for a room.
func (v *Validator) AddGrant(roomID string, g Grant) {
	v.grants[roomID] = append(v.grants[roomID], g)
}

// RemoveGrant revokes a grant by id.
func (v *Validator) RemoveGrant(roomID, grantID string) {
	v.grants[roomID] = Revoke(v.grants[roomID], grantID)
}

// Grants returns a room's unexpired grants, dropping expired ones from
// storage as a side effect.
func (v *Validator) Grants(roomID string) []Grant {
	cleaned := CleanupExpired(v.grants[roomID], v.now())
	v.grants[roomID] = cleaned
	return append([]Grant(nil), cleaned...)
}

// CanUserReply checks the reply gate for a user in a room.
func (v *Validator) CanUserReply(roomID, userID string, tier Tier, role Role) bool {
	return CanReply(userID, tier, role, v.Grants(roomID), v.now())
}

// CanUserModerate checks the moderation gate for a user in a room.
func (v *Validator) CanUserModerate(roomID, userID string, role Role) bool {
	return CanModerate(userID, role, v.Grants(roomID), v.now())
}

// CleanupAllExpired sweeps expired grants out of every room.
func (v *Validator) CleanupAllExpired() {
	now := v.now()
	for roomID, grants := range v.grants {
		v.grants[roomID] = CleanupExpired(grants, now)
	}
}
