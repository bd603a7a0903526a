package model

import (
	"time"
)

// Event represents an append-only audit log entry.
type Event struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
