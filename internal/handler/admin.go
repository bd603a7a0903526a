// Package handler provides REST API handlers for account, session,
// invite, and audit operations.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/middleware"
	"gatehouse/internal/service"
	"gatehouse/internal/store"
)

// CreateInvite handles POST /admin/invites. The returned code is valid
// for seven days and is consumed by the first successful signup.
func (h *Handler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	invite, err := h.invites.Issue(r.Context())
	if err != nil {
		slog.Error("failed to issue invite", "error", err)
		WriteInternalError(w, "Failed to issue invite")
		return
	}

	slog.Info("invite issued", "issued_by", middleware.GetUsername(r))
	WriteCreated(w, invite)
}

// ListInvites handles GET /admin/invites. It returns every code still
// in the ledger, including expired ones the sweep has not evicted yet.
func (h *Handler) ListInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.invites.List(r.Context())
	if err != nil {
		slog.Error("failed to list invites", "error", err)
		WriteInternalError(w, "Failed to list invites")
		return
	}

	WriteSuccess(w, invites, &Meta{
		Total: int64(len(invites)),
	})
}

// ListUsers handles GET /admin/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)
	offset := (page - 1) * perPage

	users, err := h.users.List(ctx, int64(perPage), int64(offset))
	if err != nil {
		slog.Error("failed to list users", "error", err)
		WriteInternalError(w, "Failed to list users")
		return
	}

	total, err := h.users.Count(ctx)
	if err != nil {
		slog.Error("failed to count users", "error", err)
		WriteInternalError(w, "Failed to count users")
		return
	}

	WriteSuccess(w, users, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   totalPages(total, perPage),
	})
}

// DeleteUser handles DELETE /admin/users/{username}. Deleting an
// account also closes its sessions through the schema's cascade. The
// reserved administrator account is refused.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	// Business rule: the seeded administrator account must survive.
	if username == store.DefaultAdminUsername {
		WriteForbidden(w, "The reserved administrator account cannot be deleted")
		return
	}

	if err := h.users.Delete(r.Context(), username); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			WriteNotFound(w, "User not found")
		default:
			slog.Error("failed to delete user", "error", err, "username", username)
			WriteInternalError(w, "Failed to delete user")
		}
		return
	}

	slog.Info("user deleted", "username", username, "deleted_by", middleware.GetUsername(r))
	w.WriteHeader(http.StatusNoContent)
}
