// AngelaMos | 2026
// handler.go

package favorite

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
	r.Route("/favorites", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Get("/{listingID}", h.Status)
		r.Put("/{listingID}", h.Add)
		r.Delete("/{listingID}", h.Remove)
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
		core.Fail(w, err, "favorite")
		return
	}

	if items == nil {
		items = []Item{}
	}
	core.CursorPaginated(w, items, next)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")

	ok, err := h.service.IsFavorited(r.Context(), middleware.GetUserID(r.Context()), listingID)
	if err != nil {
		core.Fail(w, err, "favorite")
		return
	}

	core.OK(w, StatusResponse{ListingID: listingID, Favorited: ok})
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")

	if err := h.service.Add(r.Context(), middleware.GetUserID(r.Context()), listingID); err != nil {
		core.Fail(w, err, "listing")
		return
	}

	core.OK(w, StatusResponse{ListingID: listingID, Favorited: true})
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")

	if err := h.service.Remove(r.Context(), middleware.GetUserID(r.Context()), listingID); err != nil {
		core.Fail(w, err, "favorite")
		return
	}

	core.NoContent(w)
}
