// AngelaMos | 2026
// handler.go

package listing

import (
	"context"
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
	authenticator, optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/listings", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", h.Feed)
			r.Get("/{listingID}", h.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/mine", h.ListMine)
			r.Post("/", h.Create)
			r.Put("/{listingID}", h.Update)
			r.Delete("/{listingID}", h.Delete)
			r.Post("/{listingID}/sold", h.MarkSold)
			r.Post("/{listingID}/hide", h.Hide)
			r.Post("/{listingID}/unhide", h.Unhide)
			r.Post("/{listingID}/push", h.Push)
		})
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/listings", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListForModeration)
		r.Post("/{listingID}/approve", h.Approve)
		r.Post("/{listingID}/reject", h.Reject)
		r.Post("/{listingID}/hide", h.AdminHide)
		r.Delete("/{listingID}", h.Delete)
	})
}

func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	items, next, err := h.service.Feed(
		r.Context(),
		filterFromRequest(r),
		r.URL.Query().Get("cursor"),
		core.QueryInt(r, "limit", defaultPageSize),
	)
	if err != nil {
		core.Fail(w, err, "listing")
		return
	}

	if items == nil {
		items = []Listing{}
	}
	core.CursorPaginated(w, items, next)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.Get(
		r.Context(),
		middleware.SessionFrom(r.Context()),
		chi.URLParam(r, "listingID"),
	)
	if err != nil {
		core.Fail(w, err, "listing")
		return
	}

	core.OK(w, l)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)

	items, total, err := h.service.ListMine(
		r.Context(),
		middleware.GetUserID(r.Context()),
		r.URL.Query().Get("status"),
		page,
	)
	if err != nil {
		core.Fail(w, err, "listing")
		return
	}

	core.Paginated(w, items, page.Page, page.PageSize, total)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateListingRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	l, err := h.service.Create(r.Context(), middleware.SessionFrom(r.Context()), req)
	if err != nil {
		core.Fail(w, err, "listing")
		return
	}

	core.Created(w, l)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateListingRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	l, err := h.service.Update(
		r.Context(),
		middleware.SessionFrom(r.Context()),
		chi.URLParam(r, "listingID"),
		req,
	)
	if err != nil {
		core.Fail(w, err, "listing")
		return
	}

	core.OK(w, l)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.SessionFrom(r.Context()),
		chi.URLParam(r, "listingID"),
	)
	if err != nil {
		core.Fail(w, err, "listing")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ownerAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, userID, id string) (*Listing, error),
) {
	l, err := action(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "listingID"),
	)
	if err != nil {
		core.Fail(w, err, "listing")
		return
	}

	core.OK(w, l)
}

func (h *Handler) MarkSold(w http.ResponseWriter, r *http.Request) {
	h.ownerAction(w, r, h.service.MarkSold)
}

func (h *Handler) Hide(w http.ResponseWriter, r *http.Request) {
	h.ownerAction(w, r, h.service.Hide)
}

func (h *Handler) Unhide(w http.ResponseWriter, r *http.Request) {
	h.ownerAction(w, r, h.service.Unhide)
}

func (h *Handler) Push(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Push(
		r.Context(),
		middleware.SessionFrom(r.Context()),
		chi.URLParam(r, "listingID"),
	)
	if err != nil {
		core.Fail(w, err, "listing")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ListForModeration(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)
	status := r.URL.Query().Get("status")
	if status == "" {
		status = StatusPending
	}

	items, total, err := h.service.ListForModeration(r.Context(), status, page)
	if err != nil {
		core.Fail(w, err, "listing")
		return
	}

	core.Paginated(w, items, page.Page, page.PageSize, total)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.Approve(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		core.Fail(w, err, "listing")
		return
	}

	core.OK(w, l)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	l, err := h.service.Reject(r.Context(), chi.URLParam(r, "listingID"), req.Reason)
	if err != nil {
		core.Fail(w, err, "listing")
		return
	}

	core.OK(w, l)
}

func (h *Handler) AdminHide(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.AdminHide(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		core.Fail(w, err, "listing")
		return
	}

	core.OK(w, l)
}
