package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gatehouse/internal/auth"
)

// Reserved administrator credentials seeded on first run. The password is a
// placeholder the operator is expected to rotate immediately.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "changeme"
)

// Seed creates initial data in the database.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	// Check if admin user already exists
	_, err := queries.GetUserByUsername(ctx, DefaultAdminUsername)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	// Hash the placeholder password
	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	// Create admin user
	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     DefaultAdminUsername,
		PasswordHash: passwordHash,
		IsAdmin:      true,
		CreatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	if _, err := queries.CreateEvent(ctx, CreateEventParams{
		Message:   "seeded reserved administrator account " + user.Username,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("recording seed event: %w", err)
	}

	slog.Warn("created default admin user with placeholder password, rotate it now",
		"username", user.Username,
		"password", DefaultAdminPassword,
	)

	return nil
}
