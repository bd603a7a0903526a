package model

import (
	"time"
)

// Invite represents a single-use registration code. An invite either exists
// and is redeemable until it expires, or it does not exist at all.
type Invite struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the invite can no longer be redeemed as of now.
func (i *Invite) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
