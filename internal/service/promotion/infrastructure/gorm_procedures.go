package infrastructure

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"fundgate/internal/service/promotion/domain"

	"gorm.io/gorm"
)

// 去掉了容易混淆的 0/O、1/I
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GormPromoProcedures 在自建后端上实现优惠码的三个存储过程
type GormPromoProcedures struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormPromoProcedures(db *gorm.DB) *GormPromoProcedures {
	return &GormPromoProcedures{db: db, now: time.Now}
}

// GenerateCode 生成随机 code，唯一性由 promo_codes.code 的唯一索引兜底
func (p *GormPromoProcedures) GenerateCode(_ context.Context, length int) (string, error) {
	if length <= 0 {
		return "", errors.New("code length must be positive")
	}
	radix := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// Validate 读取优惠码与该用户的核销记录，由领域对象给出判定
func (p *GormPromoProcedures) Validate(ctx context.Context, code, userID, planType string) (domain.Validation, error) {
	var model PromoCodeModel
	err := p.db.WithContext(ctx).Where("code = ?", domain.NormalizeCode(code)).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Invalid{Reason: "Invalid promo code"}, nil
	}
	if err != nil {
		return nil, err
	}

	var uses int64
	err = p.db.WithContext(ctx).Model(&PromoCodeUseModel{}).
		Where("promo_code_id = ? AND user_id = ?", model.ID, userID).
		Count(&uses).Error
	if err != nil {
		return nil, err
	}
	return ToDomainPromoCode(&model).Check(p.now(), planType, uses > 0), nil
}

// IncrementUsage 原子自增，条件里同时检查启用状态、过期时间和剩余次数。
// 没有命中说明优惠码已不可核销。
func (p *GormPromoProcedures) IncrementUsage(ctx context.Context, promoID string) error {
	now := p.now()
	res := p.db.WithContext(ctx).Model(&PromoCodeModel{}).
		Where("id = ? AND is_active = ? AND (expires_at IS NULL OR expires_at > ?) AND used_count < max_uses", promoID, true, now).
		Updates(map[string]interface{}{
			"used_count": gorm.Expr("used_count + ?", 1),
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPromoExhausted
	}
	return nil
}
