package infrastructure

import (
	"fundgate/internal/service/promotion/domain"

	"github.com/shopspring/decimal"
)

// ToDomainPromoCode 将数据库模型转换为领域实体
func ToDomainPromoCode(m *PromoCodeModel) *domain.PromoCode {
	return &domain.PromoCode{
		ID:                 m.ID,
		Code:               m.Code,
		CampaignName:       m.CampaignName,
		DiscountPercentage: m.DiscountPercentage,
		MaxUses:            m.MaxUses,
		UsedCount:          m.UsedCount,
		ExpiresAt:          m.ExpiresAt,
		IsActive:           m.IsActive,
		PlanType:           m.PlanType,
		CreatedBy:          m.CreatedBy,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// FromDomainPromoCode 将领域实体转换为数据库模型
func FromDomainPromoCode(p *domain.PromoCode) *PromoCodeModel {
	m := &PromoCodeModel{
		ID:                 p.ID,
		Code:               p.Code,
		CampaignName:       p.CampaignName,
		DiscountPercentage: p.DiscountPercentage,
		MaxUses:            p.MaxUses,
		UsedCount:          p.UsedCount,
		IsActive:           p.IsActive,
		PlanType:           p.PlanType,
		CreatedBy:          p.CreatedBy,
		CreatedAt:          p.CreatedAt.UTC(),
		UpdatedAt:          p.UpdatedAt.UTC(),
	}
	if p.ExpiresAt != nil {
		at := p.ExpiresAt.UTC()
		m.ExpiresAt = &at
	}
	return m
}

func toDomainPromoCodes(models []PromoCodeModel) []*domain.PromoCode {
	promos := make([]*domain.PromoCode, 0, len(models))
	for i := range models {
		promos = append(promos, ToDomainPromoCode(&models[i]))
	}
	return promos
}

// FromDomainPromoUse 金额在领域层以字符串保存，落库时转为 decimal
func FromDomainPromoUse(u *domain.PromoCodeUse) *PromoCodeUseModel {
	amount, err := decimal.NewFromString(u.DiscountAmount)
	if err != nil {
		amount = decimal.Zero
	}
	return &PromoCodeUseModel{
		ID:             u.ID,
		PromoCodeID:    u.PromoCodeID,
		UserID:         u.UserID,
		DiscountAmount: amount,
		PlanType:       u.PlanType,
		UsedAt:         u.UsedAt.UTC(),
	}
}
