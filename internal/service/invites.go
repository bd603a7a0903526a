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

// InviteTTL is the validity window of a freshly issued invite code.
const InviteTTL = 7 * 24 * time.Hour

// inviteIssueAttempts bounds retries when a generated code collides with
// a live one. Codes are short, so collisions are rare but possible.
const inviteIssueAttempts = 3

// InviteService issues and redeems the single-use codes that gate
// registration.
type InviteService struct {
	queries *store.Queries
	events  *EventService
}

// NewInviteService creates a new InviteService.
func NewInviteService(db *sql.DB, events *EventService) *InviteService {
	return &InviteService{
		queries: store.New(db),
		events:  events,
	}
}

// Issue mints a new invite code valid for InviteTTL.
func (s *InviteService) Issue(ctx context.Context) (model.Invite, error) {
	var inv store.Invite
	for attempt := 1; ; attempt++ {
		code, err := auth.GenerateInviteCode()
		if err != nil {
			return model.Invite{}, fmt.Errorf("generating invite code: %w", err)
		}

		inv, err = s.queries.CreateInvite(ctx, store.CreateInviteParams{
			Code:      code,
			ExpiresAt: time.Now().Add(InviteTTL),
		})
		if err == nil {
			break
		}
		if store.IsConstraintErr(err) && attempt < inviteIssueAttempts {
			continue
		}
		return model.Invite{}, fmt.Errorf("creating invite: %w", err)
	}

	if err := s.events.Append(ctx, "invite issued: "+inv.Code); err != nil {
		slog.Warn("failed to record audit entry", "error", err)
	}

	return inviteToModel(inv), nil
}

// IsValid reports whether a code currently gates a registration: it must
// exist and not be past its expiration.
func (s *InviteService) IsValid(ctx context.Context, code string) (bool, error) {
	inv, err := s.queries.GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("looking up invite: %w", err)
	}
	return time.Now().Before(inv.ExpiresAt), nil
}

// Redeem consumes a code as a single conditional delete that only
// matches a live, unexpired invite. Zero rows affected means the code
// was missing, expired, or already spent by a concurrent redemption;
// all three report ErrInviteInvalid.
func (s *InviteService) Redeem(ctx context.Context, code string) error {
	affected, err := s.queries.RedeemInvite(ctx, store.RedeemInviteParams{
		Code: code,
		Now:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("redeeming invite: %w", err)
	}
	if affected == 0 {
		return ErrInviteInvalid
	}

	if err := s.events.Append(ctx, "invite redeemed: "+code); err != nil {
		slog.Warn("failed to record audit entry", "error", err)
	}
	return nil
}

// List returns outstanding invites ordered by expiration. Expired codes
// that the sweep has not yet evicted are included; operators can tell
// them apart by the expires_at column.
func (s *InviteService) List(ctx context.Context) ([]model.Invite, error) {
	rows, err := s.queries.ListInvites(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing invites: %w", err)
	}

	invites := make([]model.Invite, 0, len(rows))
	for _, row := range rows {
		invites = append(invites, inviteToModel(row))
	}
	return invites, nil
}

// DeleteExpired evicts invites past their expiration and returns how
// many were removed.
func (s *InviteService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.queries.DeleteExpiredInvites(ctx, time.Now())
}

func inviteToModel(i store.Invite) model.Invite {
	return model.Invite{
		Code:      i.Code,
		ExpiresAt: i.ExpiresAt,
	}
}
