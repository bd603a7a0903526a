// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gatehouse/internal/model"
	"gatehouse/internal/service"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for authenticated request data.
const (
	ContextKeyUser    ContextKey = "user"
	ContextKeySession ContextKey = "session"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns false when the header is missing or malformed.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// RequireSession creates middleware that authenticates requests via a
// bearer session token. Validating a token also refreshes its recency,
// so an active caller never goes idle. The session and its account are
// stored in the request context for downstream handlers.
func RequireSession(db *sql.DB) func(http.Handler) http.Handler {
	events := service.NewEventService(db)
	sessions := service.NewSessionService(db, events)
	users := service.NewUserService(db, events)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing or malformed Authorization header. Use: Bearer <token>", nil)
				return
			}

			sess, err := sessions.Validate(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid session token", nil)
					return
				}
				slog.Error("failed to validate session token", "error", err)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to validate session token", nil)
				return
			}

			user, err := users.Get(r.Context(), sess.Username)
			if err != nil {
				// The account was deleted after the session was opened
				// but before its cascade landed here.
				if errors.Is(err, service.ErrNotFound) {
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid session token", nil)
					return
				}
				slog.Error("failed to load session account", "error", err, "username", sess.Username)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to load session account", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			ctx = context.WithValue(ctx, ContextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin creates middleware that restricts a route to administrator
// accounts. It must run after RequireSession.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			if !user.IsAdmin {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"username", user.Username,
					"remote_addr", r.RemoteAddr)
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Administrator access required", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUser retrieves the authenticated account from the request context.
// Returns nil if no account is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetSession retrieves the validated session from the request context.
// Returns nil if no session is in context.
func GetSession(r *http.Request) *model.Session {
	sess, ok := r.Context().Value(ContextKeySession).(model.Session)
	if !ok {
		return nil
	}
	return &sess
}

// GetUsername returns the authenticated account's username, or an empty
// string for unauthenticated requests.
func GetUsername(r *http.Request) string {
	if user := GetUser(r); user != nil {
		return user.Username
	}
	return ""
}
