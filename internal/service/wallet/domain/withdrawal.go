// internal/service/wallet/domain/withdrawal.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const StatusPending = "pending"

// WithdrawalRequest 同时保存提现总额、费率、手续费与到账金额，便于对账
type WithdrawalRequest struct {
	ID         string
	UserID     string
	WalletType WalletType
	Amount     decimal.Decimal // 到账金额
	Gross      decimal.Decimal
	FeeRate    decimal.Decimal
	Fee        decimal.Decimal
	Status     string
	Bank       BankDetails
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// 工厂函数: NewWithdrawalRequest 校验钱包状态后生成待处理的提现申请
func NewWithdrawalRequest(w *Wallet, walletType WalletType, amount decimal.Decimal, tier string, now time.Time) (*WithdrawalRequest, Quote, error) {
	if err := CheckWithdrawal(w, walletType, amount); err != nil {
		return nil, Quote{}, err
	}
	if !w.HasBankDetails() {
		return nil, Quote{}, ErrBankDetailsMissing
	}
	q := QuoteWithdrawal(walletType, amount, tier)
	return &WithdrawalRequest{
		ID:         uuid.NewString(),
		UserID:     w.UserID,
		WalletType: walletType,
		Amount:     q.Net,
		Gross:      q.Gross,
		FeeRate:    q.Rate,
		Fee:        q.Fee,
		Status:     StatusPending,
		Bank:       w.Bank,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, q, nil
}
