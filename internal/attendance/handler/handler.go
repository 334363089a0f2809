package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agorax/internal/attendance/models"
	"agorax/internal/transport/http/shared"
	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
	"agorax/pkg/requestcontext"
)

// Service defines the attendance operations the handler exposes.
type Service interface {
	Register(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) (*models.Presence, error)
	Revoke(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) error
	List(ctx context.Context, meetingID id.MeetingID) ([]*models.Presence, error)
}

type Handler struct {
	attendance Service
	logger     *slog.Logger
}

func New(attendance Service, logger *slog.Logger) *Handler {
	return &Handler{attendance: attendance, logger: logger}
}

// Register mounts the attendance routes. Callers wrap the router with
// RequireAuth; owners act on their own presence unless they are
// administrators.
func (h *Handler) Register(r chi.Router) {
	r.Post("/meetings/{meetingID}/presences", h.handleRegister)
	r.Delete("/meetings/{meetingID}/presences/{ownerID}", h.handleRevoke)
	r.Get("/meetings/{meetingID}/presences", h.handleList)
}

type registerRequest struct {
	// OwnerID is optional; absent means the authenticated caller.
	OwnerID string `json:"owner_id"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	meetingID, err := id.ParseMeetingID(chi.URLParam(r, "meetingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req registerRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	ownerID, err := h.resolveOwner(ctx, req.OwnerID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	presence, err := h.attendance.Register(ctx, meetingID, ownerID)
	if err != nil {
		h.logRejection(ctx, "presence registration rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, presence)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	meetingID, err := id.ParseMeetingID(chi.URLParam(r, "meetingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	ownerID, err := h.resolveOwner(ctx, chi.URLParam(r, "ownerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.attendance.Revoke(ctx, meetingID, ownerID); err != nil {
		h.logRejection(ctx, "presence revocation rejected", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	meetingID, err := id.ParseMeetingID(chi.URLParam(r, "meetingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	presences, err := h.attendance.List(ctx, meetingID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if presences == nil {
		presences = []*models.Presence{}
	}
	shared.WriteJSON(w, http.StatusOK, presences)
}

// resolveOwner maps the optional owner parameter to an owner id, defaulting
// to the authenticated actor. Acting on someone else's presence requires an
// administrator.
func (h *Handler) resolveOwner(ctx context.Context, raw string) (id.OwnerID, error) {
	actor := requestcontext.ActorFrom(ctx)
	if raw == "" {
		return actor.OwnerID, nil
	}
	ownerID, err := id.ParseOwnerID(raw)
	if err != nil {
		return id.OwnerID{}, err
	}
	if ownerID != actor.OwnerID && !actor.IsAdministrator {
		return id.OwnerID{}, dErrors.New(dErrors.CodeForbidden, "cannot act on another owner's presence")
	}
	return ownerID, nil
}

func (h *Handler) logRejection(ctx context.Context, msg string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
