// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the recurring housekeeping sweep that evicts
// expired invites, idle sessions, and audit entries past retention.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"gatehouse/internal/service"
)

// Scheduler drives periodic eviction of aged-out records.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start runs one sweep immediately, then schedules recurring sweeps.
func (s *Scheduler) Start() error {
	s.sweep()

	// Run once a day
	_, err := s.cron.AddFunc("@every 24h", s.sweep)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// sweep performs the three age-based evictions. Each delete stands on
// its own: a failure is logged and the remaining evictions still run.
func (s *Scheduler) sweep() {
	ctx := context.Background()
	start := time.Now()

	events := service.NewEventService(s.db)
	invites := service.NewInviteService(s.db, events)
	sessions := service.NewSessionService(s.db, events)

	expiredInvites, err := invites.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("failed to evict expired invites", "error", err)
	}

	idleSessions, err := sessions.DeleteIdle(ctx, service.SessionMaxIdle)
	if err != nil {
		s.logger.Error("failed to evict idle sessions", "error", err)
	}

	oldEvents, err := events.DeleteOldEvents(ctx, service.EventRetention)
	if err != nil {
		s.logger.Error("failed to evict old audit entries", "error", err)
	}

	s.logger.Info("housekeeping sweep finished",
		"invites_evicted", expiredInvites,
		"sessions_evicted", idleSessions,
		"events_evicted", oldEvents,
		"duration", time.Since(start),
	)
}
