// internal/service/promotion/domain/promo_code.go
package domain

import (
	"strings"
	"time"
)

// Status 是优惠码的展示状态，由字段推导得出，不落库
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusExpired  Status = "expired"
	StatusUsedUp   Status = "used_up"
)

// PlanAll 表示优惠码不限套餐
const PlanAll = "all"

// PromoCode 代表一次折扣活动
type PromoCode struct {
	ID                 string
	Code               string
	CampaignName       string
	DiscountPercentage int
	MaxUses            int
	UsedCount          int // 只增不减
	ExpiresAt          *time.Time
	IsActive           bool
	PlanType           string
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IssueInput 是管理员创建优惠码时提交的字段
type IssueInput struct {
	CampaignName       string
	DiscountPercentage int
	MaxUses            int
	Expiry             ExpiryOffset
	PlanType           string
}

// Validate 校验管理员输入，不发起任何远程调用
func (in IssueInput) Validate() error {
	if strings.TrimSpace(in.CampaignName) == "" {
		return ErrCampaignNameRequired
	}
	if in.DiscountPercentage < 1 || in.DiscountPercentage > 100 {
		return ErrDiscountOutOfRange
	}
	if in.MaxUses < 1 {
		return ErrInvalidMaxUses
	}
	if !in.Expiry.Valid() {
		return ErrInvalidExpiry
	}
	return nil
}

// 工厂函数: NewPromoCode 使用服务端生成的 code 创建优惠码
func NewPromoCode(id, code, createdBy string, in IssueInput, now time.Time) (*PromoCode, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	plan := strings.ToLower(strings.TrimSpace(in.PlanType))
	if plan == "" {
		plan = PlanAll
	}
	return &PromoCode{
		ID:                 id,
		Code:               NormalizeCode(code),
		CampaignName:       strings.TrimSpace(in.CampaignName),
		DiscountPercentage: in.DiscountPercentage,
		MaxUses:            in.MaxUses,
		ExpiresAt:          in.Expiry.ExpiresAt(now),
		IsActive:           true,
		PlanType:           plan,
		CreatedBy:          createdBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// NormalizeCode 去掉空白并转为大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EffectiveStatus 按 inactive > expired > used_up > active 的优先级推导状态
func (p *PromoCode) EffectiveStatus(now time.Time) Status {
	switch {
	case !p.IsActive:
		return StatusInactive
	case p.ExpiresAt != nil && !now.Before(*p.ExpiresAt):
		return StatusExpired
	case p.UsedCount >= p.MaxUses:
		return StatusUsedUp
	default:
		return StatusActive
	}
}

// ExpiryLabel 永不过期时显示 "Never"
func (p *PromoCode) ExpiryLabel() string {
	if p.ExpiresAt == nil {
		return "Never"
	}
	return p.ExpiresAt.UTC().Format(time.RFC3339)
}

// RemainingUses 剩余可用次数
func (p *PromoCode) RemainingUses() int {
	if p.UsedCount >= p.MaxUses {
		return 0
	}
	return p.MaxUses - p.UsedCount
}

// AppliesToPlan 判断优惠码是否适用于指定套餐
func (p *PromoCode) AppliesToPlan(plan string) bool {
	return p.PlanType == "" || p.PlanType == PlanAll || strings.EqualFold(p.PlanType, plan)
}

// Check 是 validate_promo_code 在自建后端上的判定逻辑，alreadyUsed 表示该用户已用过
func (p *PromoCode) Check(now time.Time, plan string, alreadyUsed bool) Validation {
	switch p.EffectiveStatus(now) {
	case StatusInactive:
		return Invalid{Reason: "This promo code is no longer active"}
	case StatusExpired:
		return Invalid{Reason: "This promo code has expired"}
	case StatusUsedUp:
		return Invalid{Reason: "This promo code has reached its usage limit"}
	}
	if !p.AppliesToPlan(plan) {
		return Invalid{Reason: "This promo code is not valid for the selected plan"}
	}
	if alreadyUsed {
		return Invalid{Reason: "You have already used this promo code"}
	}
	return Valid{DiscountPercentage: p.DiscountPercentage, PromoCodeID: p.ID}
}

// PromoCodeUse 记录一次核销
type PromoCodeUse struct {
	ID             string
	PromoCodeID    string
	UserID         string
	DiscountAmount string
	PlanType       string
	UsedAt         time.Time
}
