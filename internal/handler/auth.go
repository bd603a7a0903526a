// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gatehouse/internal/middleware"
	"gatehouse/internal/service"
)

// SignupRequest is the request body for registering a new account.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Invite   string `json:"invite"`
}

// LoginRequest is the request body for signing in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup handles POST /signup. Registration is invite-gated: the code
// is consumed before the account is created, so a code spent on a
// username lost to a concurrent taker stays spent.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	validationErrors := make(map[string]string)
	if msg := ValidateUsername(req.Username); msg != "" {
		validationErrors["username"] = msg
	}
	if msg := ValidatePassword(req.Password); msg != "" {
		validationErrors["password"] = msg
	}
	if req.Invite == "" {
		validationErrors["invite"] = "Invite code is required"
	}
	if len(validationErrors) > 0 {
		WriteValidationError(w, validationErrors)
		return
	}

	taken, err := h.users.Exists(r.Context(), req.Username)
	if err != nil {
		slog.Error("failed to check username availability", "error", err)
		WriteInternalError(w, "Failed to check username availability")
		return
	}
	if taken {
		WriteConflict(w, "Username is already taken")
		return
	}

	if err := h.invites.Redeem(r.Context(), req.Invite); err != nil {
		if errors.Is(err, service.ErrInviteInvalid) {
			WriteConflict(w, "Invite code is invalid, expired, or already used")
			return
		}
		slog.Error("failed to redeem invite", "error", err)
		WriteInternalError(w, "Failed to redeem invite")
		return
	}

	user, err := h.users.Create(r.Context(), req.Username, req.Password, false)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			// Lost the creation race behind the pre-check.
			WriteConflict(w, "Username is already taken")
			return
		}
		slog.Error("failed to create account", "error", err, "username", req.Username)
		WriteInternalError(w, "Failed to create account")
		return
	}

	sess, err := h.sessions.Create(r.Context(), user.Username)
	if err != nil {
		slog.Error("failed to create session", "error", err, "username", user.Username)
		WriteInternalError(w, "Failed to create session")
		return
	}

	slog.Info("user signed up", "username", user.Username)
	WriteCreated(w, sess)
}

// Login handles POST /login. Unknown usernames and wrong passwords get
// the same response, and failed attempts count toward a temporary
// account lockout.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	validationErrors := make(map[string]string)
	if req.Username == "" {
		validationErrors["username"] = "Username is required"
	}
	if req.Password == "" {
		validationErrors["password"] = "Password is required"
	}
	if len(validationErrors) > 0 {
		WriteValidationError(w, validationErrors)
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(req.Username); locked {
			slog.Warn("login attempt on locked account", "username", req.Username)
			WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
				fmt.Sprintf("Account temporarily locked. Try again in %s.", formatDuration(remaining)), nil)
			return
		}
	}

	user, err := h.users.VerifyPassword(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			if h.loginProtection != nil {
				if locked, lockDuration := h.loginProtection.RecordFailedAttempt(req.Username); locked {
					WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
						fmt.Sprintf("Too many failed attempts. Account locked for %s.", formatDuration(lockDuration)), nil)
					return
				}
				if remaining := h.loginProtection.GetRemainingAttempts(req.Username); remaining > 0 && remaining <= 3 {
					WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid username or password",
						map[string]string{"attempts_remaining": strconv.Itoa(remaining)})
					return
				}
			}
			WriteUnauthorized(w, "Invalid username or password")
			return
		}
		slog.Error("failed to verify credentials", "error", err)
		WriteInternalError(w, "Failed to verify credentials")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(req.Username)
	}

	sess, err := h.sessions.Create(r.Context(), user.Username)
	if err != nil {
		slog.Error("failed to create session", "error", err, "username", user.Username)
		WriteInternalError(w, "Failed to create session")
		return
	}

	slog.Info("user logged in", "username", user.Username)
	WriteSuccess(w, sess, nil)
}

// Logout handles POST /logout. It closes the session behind the bearer
// token; a token that resolves to nothing is not an error, so signing
// out twice is harmless.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		WriteUnauthorized(w, "Missing or malformed Authorization header. Use: Bearer <token>")
		return
	}

	if err := h.sessions.Destroy(r.Context(), token); err != nil {
		slog.Error("failed to destroy session", "error", err)
		WriteInternalError(w, "Failed to destroy session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
