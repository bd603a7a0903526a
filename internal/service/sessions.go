// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatehouse/internal/auth"
	"gatehouse/internal/model"
	"gatehouse/internal/store"
)

// SessionMaxIdle is how long a session may go without a successful
// validation before the housekeeping sweep evicts it.
const SessionMaxIdle = 30 * 24 * time.Hour

// SessionService issues, validates, and destroys bearer-token sessions.
type SessionService struct {
	queries *store.Queries
	events  *EventService
}

// NewSessionService creates a new SessionService.
func NewSessionService(db *sql.DB, events *EventService) *SessionService {
	return &SessionService{
		queries: store.New(db),
		events:  events,
	}
}

// Create opens a session for the given account and returns it with the
// freshly generated bearer token the client must present from now on.
func (s *SessionService) Create(ctx context.Context, username string) (model.Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return model.Session{}, fmt.Errorf("generating session token: %w", err)
	}

	sess, err := s.queries.CreateSession(ctx, store.CreateSessionParams{
		Token:      token,
		Username:   username,
		LastActive: time.Now(),
	})
	if err != nil {
		return model.Session{}, fmt.Errorf("creating session: %w", err)
	}

	if err := s.events.Append(ctx, "session opened: "+username); err != nil {
		slog.Warn("failed to record audit entry", "error", err)
	}

	return sessionToModel(sess), nil
}

// Validate resolves a bearer token to its session and refreshes the
// session's recency. Tokens that resolve to nothing return
// ErrUnauthorized. The refresh is conditional on the stored timestamp
// being older, so concurrent validations of one token never move
// last_active backwards.
func (s *SessionService) Validate(ctx context.Context, token string) (model.Session, error) {
	sess, err := s.queries.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, ErrUnauthorized
		}
		return model.Session{}, fmt.Errorf("looking up session: %w", err)
	}

	now := time.Now()
	if err := s.queries.TouchSession(ctx, store.TouchSessionParams{
		LastActive: now,
		Token:      token,
	}); err != nil {
		return model.Session{}, fmt.Errorf("refreshing session: %w", err)
	}
	sess.LastActive = now

	return sessionToModel(sess), nil
}

// Destroy closes the session behind a bearer token. A token that no
// longer resolves is not an error; sign-out is idempotent.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	sess, err := s.queries.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("looking up session: %w", err)
	}

	if err := s.queries.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	if err := s.events.Append(ctx, "session closed: "+sess.Username); err != nil {
		slog.Warn("failed to record audit entry", "error", err)
	}
	return nil
}

// DeleteIdle evicts sessions that have gone unvalidated for longer than
// maxIdle and returns how many were removed.
func (s *SessionService) DeleteIdle(ctx context.Context, maxIdle time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxIdle)
	return s.queries.DeleteIdleSessions(ctx, cutoff)
}

func sessionToModel(s store.Session) model.Session {
	return model.Session{
		Token:      s.Token,
		Username:   s.Username,
		LastActive: s.LastActive,
	}
}
