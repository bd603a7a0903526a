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

// UserService manages account records and credential verification.
type UserService struct {
	queries *store.Queries
	events  *EventService
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, events *EventService) *UserService {
	return &UserService{
		queries: store.New(db),
		events:  events,
	}
}

// Exists reports whether an account with the given username is registered.
func (s *UserService) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("looking up user: %w", err)
	}
	return true, nil
}

// Create registers a new account with a freshly hashed credential.
// Returns ErrUsernameTaken when the name is already registered, whether
// that is found by the pre-check or by losing a concurrent race to the
// primary key constraint.
func (s *UserService) Create(ctx context.Context, username, password string, isAdmin bool) (model.User, error) {
	taken, err := s.Exists(ctx, username)
	if err != nil {
		return model.User{}, err
	}
	if taken {
		return model.User{}, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		if store.IsConstraintErr(err) {
			return model.User{}, ErrUsernameTaken
		}
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	if err := s.events.Append(ctx, "account created: "+user.Username); err != nil {
		slog.Warn("failed to record audit entry", "error", err)
	}

	return userToModel(user), nil
}

// VerifyPassword checks a credential against the stored hash. Unknown
// usernames and wrong passwords both return ErrUnauthorized so callers
// cannot probe which accounts exist.
func (s *UserService) VerifyPassword(ctx context.Context, username, password string) (model.User, error) {
	user, err := s.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for unknown user", "username", username)
			return model.User{}, ErrUnauthorized
		}
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err)
		return model.User{}, ErrUnauthorized
	}
	if !valid {
		slog.Debug("invalid password attempt", "username", username)
		return model.User{}, ErrUnauthorized
	}

	// Re-hash if the stored parameters drifted from the current defaults.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				Username:     user.Username,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "username", user.Username)
			} else {
				slog.Info("password re-hashed with updated parameters", "username", user.Username)
			}
		}
	}

	return userToModel(user), nil
}

// Get fetches a single account. Returns ErrNotFound when no account with
// the given username exists.
func (s *UserService) Get(ctx context.Context, username string) (model.User, error) {
	user, err := s.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}
	return userToModel(user), nil
}

// UpdatePassword replaces an account's credential with a fresh hash of
// the new password.
func (s *UserService) UpdatePassword(ctx context.Context, username, newPassword string) error {
	if _, err := s.Get(ctx, username); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		PasswordHash: hash,
		Username:     username,
	}); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	if err := s.events.Append(ctx, "credential rotated: "+username); err != nil {
		slog.Warn("failed to record audit entry", "error", err)
	}
	return nil
}

// Delete removes an account and, through the schema's cascade, every
// session it owns. Protecting the reserved administrator account is the
// caller's policy, not enforced here.
func (s *UserService) Delete(ctx context.Context, username string) error {
	affected, err := s.queries.DeleteUser(ctx, username)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := s.events.Append(ctx, "account deleted: "+username); err != nil {
		slog.Warn("failed to record audit entry", "error", err)
	}
	return nil
}

// List returns registered accounts ordered by creation time.
func (s *UserService) List(ctx context.Context, limit, offset int64) ([]model.User, error) {
	rows, err := s.queries.ListUsers(ctx, store.ListUsersParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, userToModel(row))
	}
	return users, nil
}

// Count returns the number of registered accounts.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.queries.CountUsers(ctx)
}

func userToModel(u store.User) model.User {
	return model.User{
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
