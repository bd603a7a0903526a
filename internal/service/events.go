// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the core operations behind the HTTP boundary:
// credential management, session lifecycle, invite redemption, and the
// append-only audit log.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gatehouse/internal/model"
	"gatehouse/internal/store"
)

// EventRetention is how long audit log entries are kept before the
// housekeeping sweep evicts them.
const EventRetention = 30 * 24 * time.Hour

// EventService provides the append-only audit log. Core components only
// write to it; operators read it through the admin API.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// Append records a timestamped audit entry. An empty message is a no-op.
func (s *EventService) Append(ctx context.Context, message string) error {
	if message == "" {
		return nil
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Message:   message,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}

	return nil
}

// List returns audit entries, newest first.
func (s *EventService) List(ctx context.Context, limit, offset int64) ([]model.Event, error) {
	rows, err := s.queries.ListEvents(ctx, store.ListEventsParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}

	events := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, model.Event{
			ID:        row.ID,
			Message:   row.Message,
			CreatedAt: row.CreatedAt,
		})
	}
	return events, nil
}

// Count returns the number of retained audit entries.
func (s *EventService) Count(ctx context.Context) (int64, error) {
	return s.queries.CountEvents(ctx)
}

// DeleteOldEvents removes events older than the specified duration and
// returns how many were evicted.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	return s.queries.DeleteOldEvents(ctx, cutoff)
}
