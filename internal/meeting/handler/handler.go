package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"agorax/internal/meeting/models"
	"agorax/internal/meeting/service"
	"agorax/internal/platform/middleware"
	"agorax/internal/transport/http/shared"
	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
	"agorax/pkg/requestcontext"
)

// Service defines the meeting lifecycle operations the handler exposes.
type Service interface {
	CreateMeeting(ctx context.Context, condominiumID id.CondominiumID, title string, scheduledFor time.Time) (*models.Meeting, error)
	GetMeeting(ctx context.Context, meetingID id.MeetingID) (*models.Meeting, error)
	ListMeetings(ctx context.Context, condominiumID id.CondominiumID) ([]*models.Meeting, error)
	OpenMeeting(ctx context.Context, meetingID id.MeetingID) (*models.Meeting, error)
	CloseMeeting(ctx context.Context, meetingID id.MeetingID) (*models.Meeting, error)
	AddAgendaItem(ctx context.Context, meetingID id.MeetingID, title string) (*models.AgendaItem, error)
	ListAgendaItems(ctx context.Context, meetingID id.MeetingID) ([]*models.AgendaItem, error)
	OpenAgendaItem(ctx context.Context, itemID id.AgendaItemID) (*models.AgendaItem, error)
	CloseAgendaItem(ctx context.Context, itemID id.AgendaItemID) (*models.AgendaItem, error)
	GetQuorum(ctx context.Context, meetingID id.MeetingID) (*service.QuorumDetails, error)
}

type Handler struct {
	meetings Service
	logger   *slog.Logger
}

func New(meetings Service, logger *slog.Logger) *Handler {
	return &Handler{meetings: meetings, logger: logger}
}

// Register mounts the meeting routes. Lifecycle transitions and agenda
// management are administrative; reads are open to any authenticated owner.
func (h *Handler) Register(r chi.Router) {
	r.Get("/condominiums/{condominiumID}/meetings", h.handleList)
	r.Get("/meetings/{meetingID}", h.handleGet)
	r.Get("/meetings/{meetingID}/quorum", h.handleQuorum)
	r.Get("/meetings/{meetingID}/agenda-items", h.handleListItems)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin(h.logger))
		admin.Post("/condominiums/{condominiumID}/meetings", h.handleCreate)
		admin.Post("/meetings/{meetingID}/open", h.handleOpen)
		admin.Post("/meetings/{meetingID}/close", h.handleClose)
		admin.Post("/meetings/{meetingID}/agenda-items", h.handleAddItem)
		admin.Post("/agenda-items/{itemID}/open", h.handleOpenItem)
		admin.Post("/agenda-items/{itemID}/close", h.handleCloseItem)
	})
}

type createMeetingRequest struct {
	Title        string    `json:"title"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condominiumID, err := id.ParseCondominiumID(chi.URLParam(r, "condominiumID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req createMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	meeting, err := h.meetings.CreateMeeting(ctx, condominiumID, req.Title, req.ScheduledFor)
	if err != nil {
		h.logRejection(ctx, "create meeting rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, meeting)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	meetingID, err := id.ParseMeetingID(chi.URLParam(r, "meetingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	meeting, err := h.meetings.GetMeeting(r.Context(), meetingID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, meeting)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	condominiumID, err := id.ParseCondominiumID(chi.URLParam(r, "condominiumID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	meetings, err := h.meetings.ListMeetings(r.Context(), condominiumID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if meetings == nil {
		meetings = []*models.Meeting{}
	}
	shared.WriteJSON(w, http.StatusOK, meetings)
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	h.transitionMeeting(w, r, h.meetings.OpenMeeting, "open meeting rejected")
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	h.transitionMeeting(w, r, h.meetings.CloseMeeting, "close meeting rejected")
}

func (h *Handler) transitionMeeting(w http.ResponseWriter, r *http.Request,
	transition func(ctx context.Context, meetingID id.MeetingID) (*models.Meeting, error), rejectMsg string) {
	ctx := r.Context()

	meetingID, err := id.ParseMeetingID(chi.URLParam(r, "meetingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	meeting, err := transition(ctx, meetingID)
	if err != nil {
		h.logRejection(ctx, rejectMsg, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, meeting)
}

type addItemRequest struct {
	Title string `json:"title"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	meetingID, err := id.ParseMeetingID(chi.URLParam(r, "meetingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	item, err := h.meetings.AddAgendaItem(ctx, meetingID, req.Title)
	if err != nil {
		h.logRejection(ctx, "add agenda item rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	meetingID, err := id.ParseMeetingID(chi.URLParam(r, "meetingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	items, err := h.meetings.ListAgendaItems(r.Context(), meetingID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if items == nil {
		items = []*models.AgendaItem{}
	}
	shared.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) handleOpenItem(w http.ResponseWriter, r *http.Request) {
	h.transitionItem(w, r, h.meetings.OpenAgendaItem, "open agenda item rejected")
}

func (h *Handler) handleCloseItem(w http.ResponseWriter, r *http.Request) {
	h.transitionItem(w, r, h.meetings.CloseAgendaItem, "close agenda item rejected")
}

func (h *Handler) transitionItem(w http.ResponseWriter, r *http.Request,
	transition func(ctx context.Context, itemID id.AgendaItemID) (*models.AgendaItem, error), rejectMsg string) {
	ctx := r.Context()

	itemID, err := id.ParseAgendaItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	item, err := transition(ctx, itemID)
	if err != nil {
		h.logRejection(ctx, rejectMsg, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) handleQuorum(w http.ResponseWriter, r *http.Request) {
	meetingID, err := id.ParseMeetingID(chi.URLParam(r, "meetingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	details, err := h.meetings.GetQuorum(r.Context(), meetingID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, details)
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
