// AngelaMos | 2026
// handler.go

package screenshot

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type Request struct {
	URL string `json:"url" validate:"required,url"`
}

type Response struct {
	Success bool   `json:"success"`
	Base64  string `json:"base64"`
}

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

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.With(authenticator).Post("/screenshot", h.Take)
}

func (h *Handler) Take(w http.ResponseWriter, r *http.Request) {
	var req Request
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	img, err := h.service.Take(r.Context(), req.URL)
	if err != nil {
		core.Fail(w, err, "screenshot")
		return
	}

	core.JSON(w, http.StatusOK, Response{Success: true, Base64: img})
}
