package store

import (
	"time"
)

// User is a stored account record. The username is the primary key and the
// password hash is an encoded argon2id string.
type User struct {
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Session is a stored bearer session. Deleting the owning user cascades to
// its sessions at the schema level.
type Session struct {
	Token      string
	Username   string
	LastActive time.Time
}

// Invite is a single-use registration code. Redemption deletes the row.
type Invite struct {
	Code      string
	ExpiresAt time.Time
}

// Event is an append-only audit log entry.
type Event struct {
	ID        int64
	Message   string
	CreatedAt time.Time
}
