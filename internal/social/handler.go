// AngelaMos | 2026
// handler.go

package social

import (
	"context"
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
	r.Route("/social/{userID}", func(r chi.Router) {
		r.Get("/followers", h.Followers)
		r.Get("/following", h.Following)
		r.Get("/counts", h.Counts)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/follow", h.Status)
			r.Put("/follow", h.Follow)
			r.Delete("/follow", h.Unfollow)
		})
	})
}

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "userID")

	if err := h.service.Follow(r.Context(), middleware.GetUserID(r.Context()), target); err != nil {
		core.Fail(w, err, "user")
		return
	}

	core.OK(w, FollowStatus{UserID: target, Following: true})
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "userID")

	if err := h.service.Unfollow(r.Context(), middleware.GetUserID(r.Context()), target); err != nil {
		core.Fail(w, err, "user")
		return
	}

	core.NoContent(w)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "userID")

	ok, err := h.service.IsFollowing(r.Context(), middleware.GetUserID(r.Context()), target)
	if err != nil {
		core.Fail(w, err, "user")
		return
	}

	core.OK(w, FollowStatus{UserID: target, Following: ok})
}

func (h *Handler) list(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(ctx context.Context, userID string, page core.PageParams) ([]Profile, int, error),
) {
	page := core.PageFromRequest(r)

	items, total, err := fetch(r.Context(), chi.URLParam(r, "userID"), page)
	if err != nil {
		core.Fail(w, err, "user")
		return
	}

	if items == nil {
		items = []Profile{}
	}
	core.Paginated(w, items, page.Page, page.PageSize, total)
}

func (h *Handler) Followers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.Followers)
}

func (h *Handler) Following(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.Following)
}

func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Counts(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		core.Fail(w, err, "user")
		return
	}

	core.OK(w, counts)
}
