// AngelaMos | 2026
// handler.go

package report

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
	r.With(authenticator).Post("/reports", h.Create)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/reports", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.List)
		r.Delete("/{reportID}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	rp, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.Fail(w, err, req.TargetType)
		return
	}

	core.Created(w, rp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)

	items, total, err := h.service.List(r.Context(), r.URL.Query().Get("target_type"), page)
	if err != nil {
		core.Fail(w, err, "report")
		return
	}

	if items == nil {
		items = []Report{}
	}
	core.Paginated(w, items, page.Page, page.PageSize, total)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "reportID")); err != nil {
		core.Fail(w, err, "report")
		return
	}

	core.NoContent(w)
}
