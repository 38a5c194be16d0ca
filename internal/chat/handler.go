// AngelaMos | 2026
// handler.go

package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/chat", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/unread", h.TotalUnread)
		r.Get("/rooms", h.ListRooms)
		r.Post("/rooms", h.OpenRoom)
		r.Get("/rooms/{roomID}", h.GetRoom)
		r.Get("/rooms/{roomID}/messages", h.Messages)
		r.Post("/rooms/{roomID}/messages", h.Send)
		r.Post("/rooms/{roomID}/seen", h.MarkSeen)
	})
}

func (h *Handler) OpenRoom(w http.ResponseWriter, r *http.Request) {
	var req OpenRoomRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	room, err := h.service.OpenRoom(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.Fail(w, err, "chat room")
		return
	}

	core.OK(w, room)
}

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListRooms(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.Fail(w, err, "chat room")
		return
	}

	if rooms == nil {
		rooms = []RoomSummary{}
	}
	core.OK(w, rooms)
}

func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.GetRoom(
		r.Context(),
		chi.URLParam(r, "roomID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.Fail(w, err, "chat room")
		return
	}

	core.OK(w, room)
}

func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	msgs, next, err := h.service.Messages(
		r.Context(),
		chi.URLParam(r, "roomID"),
		middleware.GetUserID(r.Context()),
		r.URL.Query().Get("cursor"),
		core.QueryInt(r, "limit", defaultPageSize),
	)
	if err != nil {
		core.Fail(w, err, "chat room")
		return
	}

	if msgs == nil {
		msgs = []Message{}
	}
	core.CursorPaginated(w, msgs, next)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	msg, err := h.service.Send(
		r.Context(),
		chi.URLParam(r, "roomID"),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		core.Fail(w, err, "chat room")
		return
	}

	core.Created(w, msg)
}

func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	err := h.service.MarkSeen(
		r.Context(),
		chi.URLParam(r, "roomID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.Fail(w, err, "chat room")
		return
	}

	core.NoContent(w)
}

func (h *Handler) TotalUnread(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.TotalUnread(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.Fail(w, err, "chat room")
		return
	}

	core.OK(w, UnreadResponse{Unread: n})
}
