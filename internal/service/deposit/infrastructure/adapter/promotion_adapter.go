package adapter

import (
	"context"
	"errors"
	"fmt"

	"fundgate/internal/pkg/appctx"
	"fundgate/internal/service/deposit/domain"
	"fundgate/internal/service/deposit/domain/port"
	promoApp "fundgate/internal/service/promotion/application"
	promoDomain "fundgate/internal/service/promotion/domain"

	"github.com/shopspring/decimal"
)

// PromotionUsage 是 promotion 模块对外暴露的校验与核销能力，*application.PromotionService 满足该接口
type PromotionUsage interface {
	Validate(ctx context.Context, session *appctx.Session, req *promoApp.ValidatePromoRequest) (*promoApp.Quote, error)
	RecordUse(ctx context.Context, userID, promoCodeID string, discount decimal.Decimal, planType string) (string, error)
	DeleteUse(ctx context.Context, useID string) error
	IncrementUsage(ctx context.Context, promoCodeID string) error
}

// PromotionAdapter 实现了 port.PromoRedeemer 接口，进程内直接调用 promotion 模块
type PromotionAdapter struct {
	promotions PromotionUsage
}

func NewPromotionAdapter(promotions PromotionUsage) *PromotionAdapter {
	return &PromotionAdapter{promotions: promotions}
}

// Quote 走与结账页相同的校验逻辑，折扣金额取自报价而不是客户端
func (a *PromotionAdapter) Quote(ctx context.Context, userID string, req port.PromoRequest) (port.AppliedPromo, error) {
	quote, err := a.promotions.Validate(ctx, &appctx.Session{UserID: userID}, &promoApp.ValidatePromoRequest{
		Code:         req.Code,
		PlanType:     req.PlanType,
		BillingCycle: req.BillingCycle,
	})
	if err != nil {
		if isRejection(err) {
			return port.AppliedPromo{}, fmt.Errorf("%w: %s", domain.ErrPromoRejected, err.Error())
		}
		return port.AppliedPromo{}, err
	}
	discount, err := decimal.NewFromString(quote.DiscountAmount)
	if err != nil {
		return port.AppliedPromo{}, fmt.Errorf("parse quoted discount %q: %w", quote.DiscountAmount, err)
	}
	return port.AppliedPromo{
		PromoCodeID:    quote.PromoCodeID,
		Code:           quote.Code,
		DiscountAmount: discount,
		PlanType:       quote.PlanType,
		Applied:        quote.Applied,
	}, nil
}

func isRejection(err error) bool {
	return errors.Is(err, promoDomain.ErrPromoRejected) ||
		errors.Is(err, promoDomain.ErrEmptyCode) ||
		errors.Is(err, promoDomain.ErrUnknownPlan)
}

func (a *PromotionAdapter) RecordUse(ctx context.Context, userID string, promo port.AppliedPromo) (string, error) {
	return a.promotions.RecordUse(ctx, userID, promo.PromoCodeID, promo.DiscountAmount, promo.PlanType)
}

func (a *PromotionAdapter) DeleteUse(ctx context.Context, useID string) error {
	return a.promotions.DeleteUse(ctx, useID)
}

func (a *PromotionAdapter) IncrementUsage(ctx context.Context, promoCodeID string) error {
	return a.promotions.IncrementUsage(ctx, promoCodeID)
}
