// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
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
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.SignUp)
		r.Post("/login", h.SignIn)
		r.Post("/google", h.GoogleSignIn)
		r.Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.Me)
			r.Post("/logout", h.SignOut)
			r.Post("/logout-all", h.SignOutEverywhere)
			r.Post("/change-password", h.ChangePassword)
			r.Get("/sessions", h.Devices)
			r.Delete("/sessions/{sessionID}", h.RevokeDevice)
		})
	})
}

func deviceOf(r *http.Request) device {
	return device{userAgent: r.UserAgent(), ip: middleware.ClientIP(r)}
}

// writeAuthError covers the sign-in failures that MapError does not know
// about. Anything else falls through to it.
func writeAuthError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		core.JSONError(w, core.UnauthorizedError("invalid email or password"))
	case errors.Is(err, ErrAccountBanned):
		core.Forbidden(w, "account suspended")
	case errors.Is(err, ErrEmailExists):
		core.JSONError(w, core.DuplicateError("email"))
	case errors.Is(err, ErrTokenReuse):
		core.JSONError(w, core.NewAppError(err,
			"refresh token already used, all sessions on this device family were revoked",
			http.StatusUnauthorized,
			"TOKEN_REUSE_DETECTED",
		))
	case errors.Is(err, ErrGoogleDisabled):
		core.JSONError(w, core.NewAppError(err,
			"google sign-in is not enabled",
			http.StatusNotImplemented,
			"NOT_IMPLEMENTED",
		))
	case errors.Is(err, ErrGoogleTokenInvalid), errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.Fail(w, err, resource)
	}
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	resp, err := h.service.SignUp(r.Context(), req, deviceOf(r))
	if err != nil {
		writeAuthError(w, err, "user")
		return
	}
	core.Created(w, resp)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	resp, err := h.service.SignIn(r.Context(), req, deviceOf(r))
	if err != nil {
		writeAuthError(w, err, "user")
		return
	}
	core.OK(w, resp)
}

func (h *Handler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req GoogleSignInRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	resp, err := h.service.SignInWithGoogle(r.Context(), req.IDToken, deviceOf(r))
	if err != nil {
		writeAuthError(w, err, "user")
		return
	}
	core.OK(w, resp)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken, deviceOf(r))
	if err != nil {
		writeAuthError(w, err, "session")
		return
	}
	core.OK(w, resp)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFrom(r.Context())
	if session == nil {
		core.Unauthorized(w, "")
		return
	}

	var req SignOutRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			core.BadRequest(w, "invalid request body")
			return
		}
	}

	if err := h.service.SignOut(r.Context(), session, req.RefreshToken); err != nil {
		writeAuthError(w, err, "session")
		return
	}
	core.NoContent(w)
}

func (h *Handler) SignOutEverywhere(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SignOutEverywhere(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		writeAuthError(w, err, "session")
		return
	}
	core.NoContent(w)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordChangeRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	err := h.service.ChangePassword(r.Context(), middleware.GetUserID(r.Context()), req)
	if errors.Is(err, ErrInvalidCredentials) {
		core.JSONError(w, core.UnauthorizedError("current password is incorrect"))
		return
	}
	if err != nil {
		writeAuthError(w, err, "user")
		return
	}
	core.NoContent(w)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	acct, err := h.service.Me(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.Fail(w, err, "user")
		return
	}
	core.OK(w, acct)
}

func (h *Handler) Devices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.service.Devices(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.Fail(w, err, "session")
		return
	}
	core.OK(w, DevicesResponse{Devices: devices})
}

func (h *Handler) RevokeDevice(w http.ResponseWriter, r *http.Request) {
	err := h.service.RevokeDevice(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "sessionID"))
	if err != nil {
		core.Fail(w, err, "session")
		return
	}
	core.NoContent(w)
}
