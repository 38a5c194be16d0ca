// AngelaMos | 2026
// handler.go

package review

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
	r.Route("/reviews", func(r chi.Router) {
		r.Get("/sellers/{sellerID}", h.ListForSeller)
		r.Get("/sellers/{sellerID}/summary", h.Summary)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/", h.Create)
			r.Delete("/{reviewID}", h.Delete)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	rv, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.Fail(w, err, "review")
		return
	}

	core.Created(w, rv)
}

func (h *Handler) ListForSeller(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)

	items, total, err := h.service.ListForSeller(r.Context(), chi.URLParam(r, "sellerID"), page)
	if err != nil {
		core.Fail(w, err, "review")
		return
	}

	if items == nil {
		items = []Review{}
	}
	core.Paginated(w, items, page.Page, page.PageSize, total)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), chi.URLParam(r, "sellerID"))
	if err != nil {
		core.Fail(w, err, "review")
		return
	}

	core.OK(w, summary)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.SessionFrom(r.Context()),
		chi.URLParam(r, "reviewID"),
	)
	if err != nil {
		core.Fail(w, err, "review")
		return
	}

	core.NoContent(w)
}
