package infrastructure

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromoCodeModel 对应 promo_codes 表，json 标签给 PostgREST，gorm 标签给 MySQL
type PromoCodeModel struct {
	ID                 string     `json:"id" gorm:"primaryKey;type:char(36)"`
	Code               string     `json:"code" gorm:"type:varchar(32);uniqueIndex"`
	CampaignName       string     `json:"campaign_name"`
	DiscountPercentage int        `json:"discount_percentage"`
	MaxUses            int        `json:"max_uses"`
	UsedCount          int        `json:"used_count"`
	ExpiresAt          *time.Time `json:"expires_at"`
	IsActive           bool       `json:"is_active"`
	PlanType           string     `json:"plan_type" gorm:"type:varchar(32)"`
	CreatedBy          string     `json:"created_by" gorm:"type:char(36)"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TableName 指定 GORM 应该使用的表名
func (PromoCodeModel) TableName() string {
	return "promo_codes"
}

// PromoCodeUseModel 对应 promo_code_uses 表
type PromoCodeUseModel struct {
	ID             string          `json:"id" gorm:"primaryKey;type:char(36)"`
	PromoCodeID    string          `json:"promo_code_id" gorm:"type:char(36);index"`
	UserID         string          `json:"user_id" gorm:"type:char(36);index"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:decimal(18,2)"`
	PlanType       string          `json:"plan_type"`
	UsedAt         time.Time       `json:"used_at"`
}

func (PromoCodeUseModel) TableName() string {
	return "promo_code_uses"
}
