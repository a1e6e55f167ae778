package interfaces

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"fundgate/internal/pkg/appctx"
	"fundgate/internal/pkg/httpx"
	"fundgate/internal/service/deposit/application"
	"fundgate/internal/service/deposit/application/saga"
	"fundgate/internal/service/deposit/domain"
	"fundgate/internal/service/deposit/domain/port"

	"github.com/go-chi/chi/v5"
)

const (
	maxProofSize = 10 << 20
	// formOverhead 留给其余表单字段与 multipart 边界
	formOverhead = 1 << 20
)

// DepositHandler 封装了充值与审核的 HTTP 处理器
type DepositHandler struct {
	service *application.DepositApplicationService
}

// NewDepositHandler 创建一个新的 HTTP 处理器实例
func NewDepositHandler(service *application.DepositApplicationService) *DepositHandler {
	return &DepositHandler{service: service}
}

// RegisterRoutes 注册需要登录的路由
func (h *DepositHandler) RegisterRoutes(r chi.Router, auth *appctx.Provider) {
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Post("/api/v1/deposits", h.submit)
		r.Get("/api/v1/deposits", h.listMine)
		r.Get("/api/v1/admin/deposits", h.listForReview)
		r.Post("/api/v1/admin/deposits/{id}/approve", h.approve)
		r.Post("/api/v1/admin/deposits/{id}/reject", h.reject)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrMissingField),
		errors.Is(err, domain.ErrRejectReasonRequired):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDepositNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPromoRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotPending),
		errors.Is(err, domain.ErrReviewInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUploadFailed),
		errors.Is(err, domain.ErrPromoRedemptionFailed):
		return http.StatusBadGateway
	}
	return 0
}

func (h *DepositHandler) submit(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxProofSize+formOverhead)
	if err := r.ParseMultipartForm(maxProofSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteError(w, http.StatusRequestEntityTooLarge, "proof of payment must be at most 10MB")
			return
		}
		httpx.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := &application.SubmitDepositRequest{
		Amount:          r.FormValue("amount"),
		BankName:        r.FormValue("bank_name"),
		AccountNumber:   r.FormValue("account_number"),
		DepositorName:   r.FormValue("depositor_name"),
		ReferenceNumber: r.FormValue("reference_number"),
		Notes:           r.FormValue("notes"),
		Narration:       r.FormValue("narration"),
	}

	// 缺少文件时交给领域校验返回 missing field
	if file, header, err := r.FormFile("proof"); err == nil {
		defer file.Close()
		if header.Size > maxProofSize {
			httpx.WriteError(w, http.StatusRequestEntityTooLarge, "proof of payment must be at most 10MB")
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "failed to read proof of payment")
			return
		}
		req.Proof = saga.ProofFile{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	// 只接收优惠码本身，折扣由服务端重新计算
	if code := strings.TrimSpace(r.FormValue("promo_code")); code != "" {
		req.Promo = &port.PromoRequest{
			Code:         code,
			PlanType:     r.FormValue("plan_type"),
			BillingCycle: r.FormValue("billing_cycle"),
		}
	}

	view, err := h.service.Submit(r.Context(), session, req)
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, view)
}

func (h *DepositHandler) listMine(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())
	views, err := h.service.ListMine(r.Context(), session)
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

func (h *DepositHandler) listForReview(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())
	views, err := h.service.ListForReview(r.Context(), session)
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

func (h *DepositHandler) approve(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())
	view, err := h.service.Approve(r.Context(), session, chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

type rejectBody struct {
	Reason string `json:"reason"`
}

func (h *DepositHandler) reject(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())
	var body rejectBody
	if err := httpx.Decode(r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := h.service.Reject(r.Context(), session, chi.URLParam(r, "id"), body.Reason)
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}
