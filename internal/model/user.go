// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application
// including User, Session, Invite, and Event structures.
package model

import (
	"time"
)

// User represents an account as exposed at the API boundary. The stored
// credential never leaves the service layer.
type User struct {
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}
