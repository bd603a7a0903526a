// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import "errors"

// Sentinel errors returned by the service layer. Handlers translate these
// into HTTP statuses; anything else is treated as an internal server fault
// and never leaks storage detail to the boundary.
var (
	// ErrNotFound signals that the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized signals a failed credential or token check. Unknown
	// usernames and wrong passwords are deliberately indistinguishable, as
	// are malformed and unknown session tokens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUsernameTaken signals a registration conflict on username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInviteInvalid signals an unknown, already-redeemed, or expired
	// invite code.
	ErrInviteInvalid = errors.New("invite code invalid or expired")
)
