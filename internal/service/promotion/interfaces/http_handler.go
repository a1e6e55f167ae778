package interfaces

import (
	"errors"
	"net/http"

	"fundgate/internal/pkg/appctx"
	"fundgate/internal/pkg/httpx"
	"fundgate/internal/service/promotion/application"
	"fundgate/internal/service/promotion/domain"

	"github.com/go-chi/chi/v5"
)

// PromotionHandler 封装了优惠码服务的 HTTP 处理器
type PromotionHandler struct {
	service *application.PromotionService
}

// NewPromotionHandler 创建一个新的 HTTP 处理器实例
func NewPromotionHandler(service *application.PromotionService) *PromotionHandler {
	return &PromotionHandler{service: service}
}

// RegisterRoutes 注册需要登录的路由
func (h *PromotionHandler) RegisterRoutes(r chi.Router, auth *appctx.Provider) {
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Post("/api/v1/promos/validate", h.validate)
		r.Get("/api/v1/admin/promos", h.list)
		r.Post("/api/v1/admin/promos", h.generate)
		r.Post("/api/v1/admin/promos/{id}/active", h.setActive)
	})
}

// 根据错误类型返回不同的 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCampaignNameRequired),
		errors.Is(err, domain.ErrDiscountOutOfRange),
		errors.Is(err, domain.ErrInvalidMaxUses),
		errors.Is(err, domain.ErrInvalidExpiry),
		errors.Is(err, domain.ErrEmptyCode),
		errors.Is(err, domain.ErrUnknownPlan):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPromoNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateCode):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPromoRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMalformedValidation):
		return http.StatusBadGateway
	}
	return 0
}

func (h *PromotionHandler) validate(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())
	var req application.ValidatePromoRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quote, err := h.service.Validate(r.Context(), session, &req)
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quote)
}

func (h *PromotionHandler) list(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())
	views, err := h.service.List(r.Context(), session)
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

func (h *PromotionHandler) generate(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())
	var req application.GeneratePromoRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := h.service.Generate(r.Context(), session, &req)
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, view)
}

type activeBody struct {
	Active *bool `json:"active"`
}

func (h *PromotionHandler) setActive(w http.ResponseWriter, r *http.Request) {
	session, _ := appctx.SessionFrom(r.Context())
	var body activeBody
	if err := httpx.Decode(r, &body); err != nil || body.Active == nil {
		httpx.WriteError(w, http.StatusBadRequest, "active flag is required")
		return
	}
	view, err := h.service.SetActive(r.Context(), session, chi.URLParam(r, "id"), *body.Active)
	if err != nil {
		httpx.Fail(w, r, err, statusFor)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}
