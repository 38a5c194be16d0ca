// AngelaMos | 2026
// handler.go

package wallet

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
	r.Route("/wallet", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.Balance)
		r.Get("/transactions", h.History)
		r.Get("/transactions/{transactionID}", h.Get)
		r.Post("/deposits", h.RequestDeposit)
		r.Post("/subscriptions/transfer", h.RequestSubscriptionTransfer)
		r.Post("/subscriptions/purchase", h.PurchaseSubscription)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/transactions", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.AdminList)
		r.Get("/{transactionID}", h.Get)
		r.Post("/{transactionID}/approve", h.Approve)
		r.Post("/{transactionID}/reject", h.Reject)
	})
}

func fail(w http.ResponseWriter, err error) {
	core.JSONError(w, toAppError(err))
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.Balance(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		fail(w, err)
		return
	}

	core.OK(w, balance)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)

	items, total, err := h.service.History(
		r.Context(),
		middleware.GetUserID(r.Context()),
		page,
	)
	if err != nil {
		fail(w, err)
		return
	}

	core.Paginated(w, items, page.Page, page.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(
		r.Context(),
		chi.URLParam(r, "transactionID"),
		middleware.GetUserID(r.Context()),
		middleware.IsAdmin(r.Context()),
	)
	if err != nil {
		fail(w, err)
		return
	}

	core.OK(w, t)
}

func (h *Handler) RequestDeposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	t, err := h.service.RequestDeposit(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req.Amount,
		req.Method,
		req.Reference,
	)
	if err != nil {
		fail(w, err)
		return
	}

	bank, err := h.service.BankInstructions(r.Context())
	if err != nil {
		fail(w, err)
		return
	}

	core.Created(w, DepositResponse{Transaction: t, Instructions: bank})
}

func (h *Handler) RequestSubscriptionTransfer(w http.ResponseWriter, r *http.Request) {
	var req SubscriptionTransferRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	t, err := h.service.RequestSubscriptionTransfer(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req.Tier,
		req.Price,
		req.Reference,
	)
	if err != nil {
		fail(w, err)
		return
	}

	bank, err := h.service.BankInstructions(r.Context())
	if err != nil {
		fail(w, err)
		return
	}

	core.Created(w, DepositResponse{Transaction: t, Instructions: bank})
}

func (h *Handler) PurchaseSubscription(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	t, err := h.service.PurchaseSubscription(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req.Tier,
	)
	if err != nil {
		fail(w, err)
		return
	}

	core.Created(w, t)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		UserID:     q.Get("user_id"),
		Status:     q.Get("status"),
		Type:       q.Get("type"),
		PageParams: core.PageFromRequest(r),
	}

	items, total, err := h.service.List(r.Context(), params)
	if err != nil {
		fail(w, err)
		return
	}

	core.Paginated(w, items, params.Page, params.PageSize, total)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.ApproveTransaction(
		r.Context(),
		chi.URLParam(r, "transactionID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		fail(w, err)
		return
	}

	core.OK(w, t)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if r.ContentLength != 0 && !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	t, err := h.service.RejectTransaction(
		r.Context(),
		chi.URLParam(r, "transactionID"),
		middleware.GetUserID(r.Context()),
		req.Note,
	)
	if err != nil {
		fail(w, err)
		return
	}

	core.OK(w, t)
}
