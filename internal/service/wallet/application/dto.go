package application

import (
	"time"

	"fundgate/internal/service/wallet/domain"
)

// WithdrawRequest 是提现用例的输入
type WithdrawRequest struct {
	Amount     string `json:"amount"`
	WalletType string `json:"wallet_type"`
}

// BankDetailsRequest 是绑定收款账户的请求体
type BankDetailsRequest struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

// WalletView 是返回给接口层的钱包
type WalletView struct {
	UserID            string     `json:"user_id"`
	Balance           string     `json:"balance"`
	Points            string     `json:"points"`
	EducatorEarnings  string     `json:"educator_earnings"`
	BankName          string     `json:"bank_name,omitempty"`
	AccountNumber     string     `json:"account_number,omitempty"`
	AccountName       string     `json:"account_name,omitempty"`
	BankDetailsLocked bool       `json:"bank_details_locked"`
	Tier              string     `json:"tier"`
	FeeRate           string     `json:"withdrawal_fee_rate"`
	Minimum           string     `json:"minimum_withdrawal"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

func toWalletView(w *domain.Wallet, tier string) *WalletView {
	v := &WalletView{
		UserID:            w.UserID,
		Balance:           w.Balance.StringFixed(2),
		Points:            w.Points.String(),
		EducatorEarnings:  w.EducatorEarnings.StringFixed(2),
		BankName:          w.Bank.BankName,
		AccountNumber:     w.Bank.AccountNumber,
		AccountName:       w.Bank.AccountName,
		BankDetailsLocked: w.BankDetailsLocked,
		Tier:              tier,
		FeeRate:           domain.FeeRateFor(tier).String(),
		Minimum:           domain.MinimumWithdrawal.StringFixed(2),
	}
	if !w.UpdatedAt.IsZero() {
		at := w.UpdatedAt
		v.UpdatedAt = &at
	}
	return v
}

// QuoteView 是提现预览
type QuoteView struct {
	WalletType string `json:"wallet_type"`
	Gross      string `json:"gross_amount"`
	Rate       string `json:"fee_rate"`
	Fee        string `json:"fee_amount"`
	Net        string `json:"net_amount"`
	Balance    string `json:"balance"`
}

func toQuoteView(q domain.Quote, balance string) *QuoteView {
	return &QuoteView{
		WalletType: string(q.WalletType),
		Gross:      q.Gross.StringFixed(2),
		Rate:       q.Rate.String(),
		Fee:        q.Fee.StringFixed(2),
		Net:        q.Net.StringFixed(2),
		Balance:    balance,
	}
}

// WithdrawalView 是返回给接口层的提现申请
type WithdrawalView struct {
	ID         string    `json:"id"`
	WalletType string    `json:"wallet_type"`
	Amount     string    `json:"amount"`
	Gross      string    `json:"gross_amount"`
	FeeRate    string    `json:"fee_rate"`
	Fee        string    `json:"fee_amount"`
	Status     string    `json:"status"`
	BankName   string    `json:"bank_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToWithdrawalView 从领域实体转换为输出 DTO
func ToWithdrawalView(w *domain.WithdrawalRequest) *WithdrawalView {
	return &WithdrawalView{
		ID:         w.ID,
		WalletType: string(w.WalletType),
		Amount:     w.Amount.StringFixed(2),
		Gross:      w.Gross.StringFixed(2),
		FeeRate:    w.FeeRate.String(),
		Fee:        w.Fee.StringFixed(2),
		Status:     w.Status,
		BankName:   w.Bank.BankName,
		CreatedAt:  w.CreatedAt,
	}
}
