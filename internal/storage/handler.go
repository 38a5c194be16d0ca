// AngelaMos | 2026
// handler.go

package storage

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/middleware"
)

type UploadRequest struct {
	Folder string `json:"folder" validate:"required,oneof=listings avatars kyc chat"`
	Data   string `json:"data"   validate:"required"`
}

type DeleteRequest struct {
	Key string `json:"key" validate:"required,max=512"`
}

type Handler struct {
	uploader  *Uploader
	validator *validator.Validate
	maxBody   int64
}

func NewHandler(uploader *Uploader) *Handler {
	return &Handler{
		uploader:  uploader,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		// base64 inflates by 4/3; leave room for the JSON envelope.
		maxBody: uploader.maxBytes*4/3 + 4096,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/uploads", func(r chi.Router) {
		r.Use(authenticator)
		r.Post("/", h.Upload)
		r.Delete("/", h.Delete)
	})
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req UploadRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.uploader.Upload(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req.Folder,
		req.Data,
	)
	if err != nil {
		core.Fail(w, err, "upload")
		return
	}

	core.Created(w, result)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	session := middleware.SessionFrom(r.Context())
	if err := h.uploader.Delete(r.Context(), session.UserID, req.Key, session.IsAdmin()); err != nil {
		core.Fail(w, err, "upload")
		return
	}

	core.NoContent(w)
}
