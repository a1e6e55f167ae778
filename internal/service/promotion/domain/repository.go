package domain

import (
	"context"
	"time"
)

// PromoRepository 定义了优惠码与核销记录的持久化接口
type PromoRepository interface {
	// Insert 在 code 冲突时返回 ErrDuplicateCode
	Insert(ctx context.Context, p *PromoCode) error
	FindByID(ctx context.Context, id string) (*PromoCode, error)
	// List 按创建时间倒序
	List(ctx context.Context) ([]*PromoCode, error)
	SetActive(ctx context.Context, id string, active bool, at time.Time) error

	RecordUse(ctx context.Context, use *PromoCodeUse) error
	DeleteUse(ctx context.Context, useID string) error
}

// PromoProcedures 对应服务端的三个存储过程
type PromoProcedures interface {
	// GenerateCode 对应 generate_promo_code(length)
	GenerateCode(ctx context.Context, length int) (string, error)
	// Validate 对应 validate_promo_code(code, user_id, plan_type)
	Validate(ctx context.Context, code, userID, planType string) (Validation, error)
	// IncrementUsage 对应 increment_promo_usage(promo_id)，停用、过期或用尽时返回 ErrPromoExhausted
	IncrementUsage(ctx context.Context, promoID string) error
}
