// AngelaMos | 2026
// handler.go

package settings

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/classifieds/internal/core"
)

const maxSettingBytes = 64 << 10

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.GetPublic)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/settings", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.GetPublic)
		r.Put("/{key}", h.Put)
	})
}

func (h *Handler) GetPublic(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Public(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, settings)
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSettingBytes))
	if err != nil || !json.Valid(body) {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.service.Put(r.Context(), chi.URLParam(r, "key"), body); err != nil {
		core.Fail(w, err, "setting")
		return
	}

	h.GetPublic(w, r)
}
