package port

import (
	"context"

	"github.com/shopspring/decimal"
)

// PromoRequest 是用户结账时输入的优惠码，折扣一律由服务端重新计算
type PromoRequest struct {
	Code         string
	PlanType     string
	BillingCycle string
}

// AppliedPromo 是服务端校验后的核销内容
type AppliedPromo struct {
	PromoCodeID    string
	Code           string
	DiscountAmount decimal.Decimal
	PlanType       string
	// Applied 为 false 时优惠码有效，但本次结账不满足折扣条件
	Applied bool
}

// PromoRedeemer 是优惠码核销的出站端口，由 promotion 模块实现。
type PromoRedeemer interface {
	// Quote 重新校验优惠码并计算折扣；拒绝时返回包装了 domain.ErrPromoRejected 的错误。
	Quote(ctx context.Context, userID string, req PromoRequest) (AppliedPromo, error)

	// RecordUse 写入一条 promo_code_uses 记录并返回其 ID。
	RecordUse(ctx context.Context, userID string, promo AppliedPromo) (string, error)

	// DeleteUse 是 RecordUse 的补偿操作。
	DeleteUse(ctx context.Context, useID string) error

	// IncrementUsage 调用 increment_promo_usage；停用、过期或用尽时返回错误。
	IncrementUsage(ctx context.Context, promoCodeID string) error
}
