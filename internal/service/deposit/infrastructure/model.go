package infrastructure

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositRequestModel 对应 deposit_requests 表。
// 同一个结构同时服务 PostgREST（json 标签）和 GORM（gorm 标签）。
type DepositRequestModel struct {
	ID              string          `json:"id" gorm:"primaryKey;type:char(36)"`
	UserID          string          `json:"user_id" gorm:"type:char(36);index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(18,2)"`
	BankName        string          `json:"bank_name"`
	AccountNumber   *string         `json:"account_number"`
	DepositorName   string          `json:"depositor_name"`
	ReferenceNumber *string         `json:"reference_number"`
	ProofURL        string          `json:"proof_of_payment_url" gorm:"column:proof_of_payment_url"`
	UserNotes       *string         `json:"notes" gorm:"column:notes"`
	AdminNotes      *string         `json:"admin_notes"`
	Narration       *string         `json:"narration"`
	Status          string          `json:"status" gorm:"type:varchar(16);index"`
	CreatedAt       time.Time       `json:"created_at"`
	ProcessedAt     *time.Time      `json:"processed_at"`
	ProcessedBy     *string         `json:"processed_by" gorm:"type:char(36)"`
}

// TableName 指定 GORM 应该使用的表名
func (DepositRequestModel) TableName() string {
	return "deposit_requests"
}
