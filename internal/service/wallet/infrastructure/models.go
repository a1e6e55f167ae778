package infrastructure

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletModel 对应 wallets 表
type WalletModel struct {
	UserID            string          `json:"user_id" gorm:"primaryKey;type:char(36)"`
	Balance           decimal.Decimal `json:"balance" gorm:"type:decimal(18,2)"`
	Points            decimal.Decimal `json:"points" gorm:"type:decimal(18,2)"`
	EducatorEarnings  decimal.Decimal `json:"gfe_wallet_balance" gorm:"column:gfe_wallet_balance;type:decimal(18,2)"`
	BankName          *string         `json:"bank_name"`
	AccountNumber     *string         `json:"account_number"`
	AccountName       *string         `json:"account_name"`
	BankDetailsLocked bool            `json:"bank_details_locked"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName 指定 GORM 应该使用的表名
func (WalletModel) TableName() string {
	return "wallets"
}

// WithdrawalRequestModel 对应 withdrawal_requests 表，amount 为到账金额
type WithdrawalRequestModel struct {
	ID            string          `json:"id" gorm:"primaryKey;type:char(36)"`
	UserID        string          `json:"user_id" gorm:"type:char(36);index"`
	WalletType    string          `json:"wallet_type" gorm:"type:varchar(16)"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(18,2)"`
	GrossAmount   decimal.Decimal `json:"gross_amount" gorm:"type:decimal(18,2)"`
	FeeRate       decimal.Decimal `json:"fee_rate" gorm:"type:decimal(5,4)"`
	FeeAmount     decimal.Decimal `json:"fee_amount" gorm:"type:decimal(18,2)"`
	Status        string          `json:"status" gorm:"type:varchar(16)"`
	BankName      string          `json:"bank_name"`
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (WithdrawalRequestModel) TableName() string {
	return "withdrawal_requests"
}
