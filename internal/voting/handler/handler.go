package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"agorax/internal/transport/http/shared"
	"agorax/internal/voting/models"
	"agorax/internal/voting/service"
	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
	"agorax/pkg/requestcontext"
)

// Service defines the voting operations the handler exposes.
type Service interface {
	CastVote(ctx context.Context, itemID id.AgendaItemID, ownerID id.OwnerID, value models.Value) (*models.Vote, error)
	ListByItem(ctx context.Context, itemID id.AgendaItemID) ([]*service.VoteRecord, error)
}

type Handler struct {
	voting Service
	logger *slog.Logger
}

func New(voting Service, logger *slog.Logger) *Handler {
	return &Handler{voting: voting, logger: logger}
}

// Register mounts the voting routes. Owners vote for themselves; there is no
// proxy voting, so the owner always comes from the authenticated actor.
func (h *Handler) Register(r chi.Router) {
	r.Post("/agenda-items/{itemID}/votes", h.handleCast)
	r.Get("/agenda-items/{itemID}/votes", h.handleList)
}

type castRequest struct {
	Value string `json:"value"`
}

type castResponse struct {
	ID           id.VoteID       `json:"id"`
	AgendaItemID id.AgendaItemID `json:"agenda_item_id"`
	CastAt       string          `json:"cast_at"`
}

func (h *Handler) handleCast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := id.ParseAgendaItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req castRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	value, err := models.ParseValue(req.Value)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	actor := requestcontext.ActorFrom(ctx)
	vote, err := h.voting.CastVote(ctx, itemID, actor.OwnerID, value)
	if err != nil {
		h.logRejection(ctx, "vote rejected", err)
		shared.WriteError(w, err)
		return
	}

	// The choice itself is never echoed back.
	shared.WriteJSON(w, http.StatusCreated, castResponse{
		ID:           vote.ID,
		AgendaItemID: vote.AgendaItemID,
		CastAt:       vote.CastAt.Format(time.RFC3339Nano),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	itemID, err := id.ParseAgendaItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	records, err := h.voting.ListByItem(r.Context(), itemID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if records == nil {
		records = []*service.VoteRecord{}
	}
	shared.WriteJSON(w, http.StatusOK, records)
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
