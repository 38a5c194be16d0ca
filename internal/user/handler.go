// AngelaMos | 2026
// handler.go

package user

import (
	"net/http"
	"strconv"

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
	r.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", h.PublicProfile)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.Me)
			r.Put("/me", h.UpdateMe)
			r.Delete("/me", h.DeleteMe)
		})
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/", h.List)
		r.Get("/{userID}", h.Get)
		r.Put("/{userID}", h.Update)
		r.Delete("/{userID}", h.Delete)
		r.Put("/{userID}/role", h.SetRole)
		r.Put("/{userID}/tier", h.SetTier)
		r.Put("/{userID}/ban", h.SetBanned)
		r.Put("/{userID}/verify", h.SetVerified)
	})
}

func respond[T any](w http.ResponseWriter, v *T, err error) {
	if err != nil {
		core.Fail(w, err, "user")
		return
	}
	core.OK(w, v)
}

func target(r *http.Request) string {
	return chi.URLParam(r, "userID")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, v, err)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}
	v, err := h.service.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), req)
	respond(w, v, err)
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetUserID(r.Context())
	if err := h.service.Remove(r.Context(), id, id, false); err != nil {
		core.Fail(w, err, "user")
		return
	}
	core.NoContent(w)
}

func (h *Handler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.PublicProfile(r.Context(), target(r))
	respond(w, v, err)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)
	q := r.URL.Query()

	params := ListUsersParams{
		Page:     page.Page,
		PageSize: page.PageSize,
		Search:   q.Get("search"),
		Role:     q.Get("role"),
		Tier:     q.Get("tier"),
	}
	if banned, err := strconv.ParseBool(q.Get("banned")); err == nil {
		params.Banned = &banned
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.Fail(w, err, "user")
		return
	}
	core.Paginated(w, users, params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(r.Context(), target(r))
	respond(w, v, err)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}
	v, err := h.service.UpdateProfile(r.Context(), target(r), req)
	respond(w, v, err)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Remove(r.Context(), middleware.GetUserID(r.Context()), target(r), true)
	if err != nil {
		core.Fail(w, err, "user")
		return
	}
	core.NoContent(w)
}

func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRoleRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}
	v, err := h.service.UpdateUserRole(r.Context(), target(r), req.Role)
	respond(w, v, err)
}

func (h *Handler) SetTier(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserTierRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}
	v, err := h.service.UpdateUserTier(r.Context(), target(r), req.Tier, req.ExpiresAt)
	respond(w, v, err)
}

func (h *Handler) SetBanned(w http.ResponseWriter, r *http.Request) {
	var req SetFlagRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}
	v, err := h.service.SetBanned(r.Context(),
		middleware.GetUserID(r.Context()), target(r), req.Value)
	respond(w, v, err)
}

func (h *Handler) SetVerified(w http.ResponseWriter, r *http.Request) {
	var req SetFlagRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}
	v, err := h.service.SetVerified(r.Context(), target(r), req.Value)
	respond(w, v, err)
}
