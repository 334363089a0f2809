package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agorax/internal/directory/models"
	"agorax/internal/platform/middleware"
	"agorax/internal/transport/http/shared"
	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
	"agorax/pkg/requestcontext"
)

// Service defines the directory operations the handler exposes.
type Service interface {
	CreateCondominium(ctx context.Context, name string, totalCoefficient float64) (*models.Condominium, error)
	GetCondominium(ctx context.Context, condominiumID id.CondominiumID) (*models.Condominium, error)
	CreateOwner(ctx context.Context, condominiumID id.CondominiumID, name string, coefficient float64) (*models.Owner, error)
	GetOwner(ctx context.Context, ownerID id.OwnerID) (*models.Owner, error)
	ListOwners(ctx context.Context, condominiumID id.CondominiumID) ([]*models.Owner, error)
	SetDebtFlag(ctx context.Context, ownerID id.OwnerID, inDebt bool) error
}

type Handler struct {
	directory Service
	logger    *slog.Logger
}

func New(directory Service, logger *slog.Logger) *Handler {
	return &Handler{directory: directory, logger: logger}
}

// Register mounts the directory routes. All writes are administrative.
func (h *Handler) Register(r chi.Router) {
	r.Get("/condominiums/{condominiumID}", h.handleGetCondominium)
	r.Get("/condominiums/{condominiumID}/owners", h.handleListOwners)
	r.Get("/owners/{ownerID}", h.handleGetOwner)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin(h.logger))
		admin.Post("/condominiums", h.handleCreateCondominium)
		admin.Post("/condominiums/{condominiumID}/owners", h.handleCreateOwner)
		admin.Put("/owners/{ownerID}/debt", h.handleSetDebtFlag)
	})
}

type createCondominiumRequest struct {
	Name             string  `json:"name"`
	TotalCoefficient float64 `json:"total_coefficient"`
}

func (h *Handler) handleCreateCondominium(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createCondominiumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	condominium, err := h.directory.CreateCondominium(ctx, req.Name, req.TotalCoefficient)
	if err != nil {
		h.logRejection(ctx, "create condominium rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, condominium)
}

func (h *Handler) handleGetCondominium(w http.ResponseWriter, r *http.Request) {
	condominiumID, err := id.ParseCondominiumID(chi.URLParam(r, "condominiumID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	condominium, err := h.directory.GetCondominium(r.Context(), condominiumID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, condominium)
}

type createOwnerRequest struct {
	Name        string  `json:"name"`
	Coefficient float64 `json:"coefficient"`
}

func (h *Handler) handleCreateOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condominiumID, err := id.ParseCondominiumID(chi.URLParam(r, "condominiumID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req createOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	owner, err := h.directory.CreateOwner(ctx, condominiumID, req.Name, req.Coefficient)
	if err != nil {
		h.logRejection(ctx, "create owner rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, owner)
}

func (h *Handler) handleGetOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, err := id.ParseOwnerID(chi.URLParam(r, "ownerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	owner, err := h.directory.GetOwner(r.Context(), ownerID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, owner)
}

func (h *Handler) handleListOwners(w http.ResponseWriter, r *http.Request) {
	condominiumID, err := id.ParseCondominiumID(chi.URLParam(r, "condominiumID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	owners, err := h.directory.ListOwners(r.Context(), condominiumID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if owners == nil {
		owners = []*models.Owner{}
	}
	shared.WriteJSON(w, http.StatusOK, owners)
}

type setDebtFlagRequest struct {
	InDebt bool `json:"in_debt"`
}

func (h *Handler) handleSetDebtFlag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, err := id.ParseOwnerID(chi.URLParam(r, "ownerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req setDebtFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.directory.SetDebtFlag(ctx, ownerID, req.InDebt); err != nil {
		h.logRejection(ctx, "set debt flag rejected", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
