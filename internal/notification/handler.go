// AngelaMos | 2026
// handler.go

package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Get("/unread-count", h.UnreadCount)
		r.Post("/read-all", h.MarkAllRead)
		r.Post("/{notificationID}/read", h.MarkRead)
		r.Delete("/{notificationID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, next, err := h.service.List(
		r.Context(),
		middleware.GetUserID(r.Context()),
		r.URL.Query().Get("cursor"),
		core.QueryInt(r, "limit", defaultPageSize),
	)
	if err != nil {
		core.Fail(w, err, "notification")
		return
	}

	core.CursorPaginated(w, items, next)
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.UnreadCount(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, UnreadResponse{Unread: n})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.service.MarkRead(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "notificationID"),
	)
	if err != nil {
		core.Fail(w, err, "notification")
		return
	}

	core.NoContent(w)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAllRead(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "notificationID"),
	)
	if err != nil {
		core.Fail(w, err, "notification")
		return
	}

	core.NoContent(w)
}
