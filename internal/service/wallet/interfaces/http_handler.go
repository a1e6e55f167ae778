package interfaces

import (
	"errors"
	"net/http"

	"fundgate/internal/pkg/appctx"
	"fundgate/internal/pkg/httpx"
	"fundgate/internal/service/wallet/application"
	"fundgate/internal/service/wallet/domain"

	"github.com/go-chi/chi/v5"
)

// WalletHandler 封装了钱包与提现的 HTTP 处理器
type WalletHandler struct {
	service *application.WalletService
}

func NewWalletHandler(service *application.WalletService) *WalletHandler {
	return &WalletHandler{service: service}
}

// RegisterRoutes 注册需要登录的路由
func (h *WalletHandler) RegisterRoutes(r chi.Router, auth *appctx.Provider) {
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Get("/api/v1/wallet", h.getWallet)
		r.Put("/api/v1/wallet/bank-details", h.updateBankDetails)
		r.Get("/api/v1/withdrawals/quote", h.quote)
		r.Post("/api/v1/withdrawals", h.requestWithdrawal)
		r.Get("/api/v1/withdrawals", h.listWithdrawals)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrUnknownWalletType),
		errors.Is(err, domain.ErrBelowMinimum),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrBankDetailsMissing),
		errors.Is(err, domain.ErrBankDetailsIncomplete):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBankDetailsLocked):
		return http.StatusConflict
	}
	return 0
}

func (h *WalletHandler) getWallet(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())
	view, err := h.service.GetWallet(r.Context(), session)
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *WalletHandler) updateBankDetails(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())
	var req application.BankDetailsRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := h.service.UpdateBankDetails(r.Context(), session, &req)
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *WalletHandler) quote(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())
	req := &application.WithdrawRequest{
		Amount:     r.URL.Query().Get("amount"),
		WalletType: r.URL.Query().Get("wallet_type"),
	}
	view, err := h.service.QuoteWithdrawal(r.Context(), session, req)
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *WalletHandler) requestWithdrawal(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())
	var req application.WithdrawRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := h.service.RequestWithdrawal(r.Context(), session, &req)
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, view)
}

func (h *WalletHandler) listWithdrawals(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())
	views, err := h.service.ListWithdrawals(r.Context(), session)
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}
