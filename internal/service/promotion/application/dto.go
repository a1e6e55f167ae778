// internal/service/promotion/application/dto.go
package application

import (
	"time"

	"fundgate/internal/service/promotion/domain"
)

// GeneratePromoRequest 是管理员创建优惠码的请求体
type GeneratePromoRequest struct {
	CampaignName       string `json:"campaign_name"`
	DiscountPercentage int    `json:"discount_percentage"`
	MaxUses            int    `json:"max_uses"`
	ExpiryHours        string `json:"expiry_hours"`
	PlanType           string `json:"plan_type"`
}

func (r *GeneratePromoRequest) toIssueInput() domain.IssueInput {
	return domain.IssueInput{
		CampaignName:       r.CampaignName,
		DiscountPercentage: r.DiscountPercentage,
		MaxUses:            r.MaxUses,
		Expiry:             domain.ExpiryOffset(r.ExpiryHours),
		PlanType:           r.PlanType,
	}
}

// ValidatePromoRequest 是结账时校验优惠码的请求体
type ValidatePromoRequest struct {
	Code         string `json:"code"`
	PlanType     string `json:"plan_type"`
	BillingCycle string `json:"billing_cycle"`
}

// Quote 是校验通过后给前端展示的价格
type Quote struct {
	PromoCodeID     string `json:"promo_code_id"`
	Code            string `json:"code"`
	PlanType        string `json:"plan_type"`
	BillingCycle    string `json:"billing_cycle"`
	Percentage      int    `json:"discount_percentage"`
	BasePrice       string `json:"base_price"`
	DiscountedPrice string `json:"discounted_price"`
	DiscountAmount  string `json:"discount_amount"`
	// Applied 为 false 时优惠码有效但本次结账不满足折扣条件
	Applied bool `json:"applied"`
}

// PromoView 是管理后台列表中的一行
type PromoView struct {
	ID                 string        `json:"id"`
	Code               string        `json:"code"`
	CampaignName       string        `json:"campaign_name"`
	DiscountPercentage int           `json:"discount_percentage"`
	MaxUses            int           `json:"max_uses"`
	UsedCount          int           `json:"used_count"`
	RemainingUses      int           `json:"remaining_uses"`
	ExpiresAt          *time.Time    `json:"expires_at"`
	ExpiryLabel        string        `json:"expiry_label"`
	IsActive           bool          `json:"is_active"`
	Status             domain.Status `json:"status"`
	PlanType           string        `json:"plan_type"`
	CreatedBy          string        `json:"created_by"`
	CreatedAt          time.Time     `json:"created_at"`
}

// ToPromoView 从领域实体转换为输出 DTO，状态在 now 时刻推导
func ToPromoView(p *domain.PromoCode, now time.Time) *PromoView {
	return &PromoView{
		ID:                 p.ID,
		Code:               p.Code,
		CampaignName:       p.CampaignName,
		DiscountPercentage: p.DiscountPercentage,
		MaxUses:            p.MaxUses,
		UsedCount:          p.UsedCount,
		RemainingUses:      p.RemainingUses(),
		ExpiresAt:          p.ExpiresAt,
		ExpiryLabel:        p.ExpiryLabel(),
		IsActive:           p.IsActive,
		Status:             p.EffectiveStatus(now),
		PlanType:           p.PlanType,
		CreatedBy:          p.CreatedBy,
		CreatedAt:          p.CreatedAt,
	}
}
