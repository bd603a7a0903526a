package model

import (
	"time"
)

// Session represents an active bearer session.
type Session struct {
	Token      string    `json:"token"`
	Username   string    `json:"username"`
	LastActive time.Time `json:"last_active"`
}

// IdleSince returns how long the session has been inactive as of now.
func (s *Session) IdleSince(now time.Time) time.Duration {
	return now.Sub(s.LastActive)
}
