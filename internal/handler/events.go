// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
)

// ListEvents handles GET /admin/events. The audit trail is append-only
// and newest-first; entries age out after the retention window.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 50, 200)
	offset := (page - 1) * perPage

	events, err := h.events.List(ctx, int64(perPage), int64(offset))
	if err != nil {
		slog.Error("failed to list events", "error", err)
		WriteInternalError(w, "Failed to list events")
		return
	}

	total, err := h.events.Count(ctx)
	if err != nil {
		slog.Error("failed to count events", "error", err)
		WriteInternalError(w, "Failed to count events")
		return
	}

	WriteSuccess(w, events, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   totalPages(total, perPage),
	})
}
