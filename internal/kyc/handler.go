// AngelaMos | 2026
// handler.go

package kyc

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
	r.Route("/kyc", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.Latest)
		r.Post("/", h.Submit)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/kyc", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.List)
		r.Post("/{submissionID}/approve", h.Approve)
		r.Post("/{submissionID}/reject", h.Reject)
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	sub, err := h.service.Submit(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.Fail(w, err, "verification request")
		return
	}

	core.Created(w, sub)
}

func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Latest(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.Fail(w, err, "verification request")
		return
	}

	core.OK(w, sub)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)

	items, total, err := h.service.List(r.Context(), r.URL.Query().Get("status"), page)
	if err != nil {
		core.Fail(w, err, "verification request")
		return
	}

	if items == nil {
		items = []Submission{}
	}
	core.Paginated(w, items, page.Page, page.PageSize, total)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Approve(
		r.Context(),
		chi.URLParam(r, "submissionID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.Fail(w, err, "verification request")
		return
	}

	core.OK(w, sub)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	sub, err := h.service.Reject(
		r.Context(),
		chi.URLParam(r, "submissionID"),
		middleware.GetUserID(r.Context()),
		req.Note,
	)
	if err != nil {
		core.Fail(w, err, "verification request")
		return
	}

	core.OK(w, sub)
}
