// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gatehouse/internal/middleware"
	"gatehouse/internal/service"
)

// ChangePasswordRequest is the request body for rotating the caller's
// own credential.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Me handles GET /me. It returns the account behind the presented
// session token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	WriteSuccess(w, user, nil)
}

// ChangePassword handles PUT /me/password. The current credential must
// be presented again; holding a stolen session token alone is not
// enough to take over the account.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	validationErrors := make(map[string]string)
	if req.CurrentPassword == "" {
		validationErrors["current_password"] = "Current password is required"
	}
	if msg := ValidatePassword(req.NewPassword); msg != "" {
		validationErrors["new_password"] = msg
	}
	if len(validationErrors) > 0 {
		WriteValidationError(w, validationErrors)
		return
	}

	if _, err := h.users.VerifyPassword(r.Context(), user.Username, req.CurrentPassword); err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			WriteUnauthorized(w, "Current password is incorrect")
			return
		}
		slog.Error("failed to verify current password", "error", err)
		WriteInternalError(w, "Failed to verify current password")
		return
	}

	if err := h.users.UpdatePassword(r.Context(), user.Username, req.NewPassword); err != nil {
		slog.Error("failed to update password", "error", err, "username", user.Username)
		WriteInternalError(w, "Failed to update password")
		return
	}

	slog.Info("password changed", "username", user.Username)
	WriteSuccess(w, user, nil)
}
