// internal/service/wallet/domain/wallet.go
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// WalletType 是可提现的钱包
type WalletType string

const (
	UserWallet WalletType = "user_wallet"
	// GFEWallet 是讲师收益钱包
	GFEWallet WalletType = "gfe_wallet"
)

// ParseWalletType 空值按 user_wallet 处理
func ParseWalletType(raw string) (WalletType, error) {
	switch WalletType(strings.ToLower(strings.TrimSpace(raw))) {
	case UserWallet, "":
		return UserWallet, nil
	case GFEWallet:
		return GFEWallet, nil
	}
	return "", ErrUnknownWalletType
}

// BankDetails 是绑定的收款账户
type BankDetails struct {
	BankName      string
	AccountNumber string
	AccountName   string
}

func (b BankDetails) complete() bool {
	return b.BankName != "" && b.AccountNumber != "" && b.AccountName != ""
}

func (b BankDetails) trimmed() BankDetails {
	return BankDetails{
		BankName:      strings.TrimSpace(b.BankName),
		AccountNumber: strings.TrimSpace(b.AccountNumber),
		AccountName:   strings.TrimSpace(b.AccountName),
	}
}

// Wallet 是用户的余额与收款账户。余额只由服务端存储过程修改。
type Wallet struct {
	UserID            string
	Balance           decimal.Decimal
	Points            decimal.Decimal // 积分，不可提现
	EducatorEarnings  decimal.Decimal
	Bank              BankDetails
	BankDetailsLocked bool
	UpdatedAt         time.Time
}

// BalanceFor 返回指定钱包的余额
func (w *Wallet) BalanceFor(t WalletType) (decimal.Decimal, error) {
	switch t {
	case UserWallet:
		return w.Balance, nil
	case GFEWallet:
		return w.EducatorEarnings, nil
	}
	return decimal.Zero, ErrUnknownWalletType
}

// HasBankDetails 是否已绑定完整的收款账户
func (w *Wallet) HasBankDetails() bool {
	return w.Bank.complete()
}

// UpdateBankDetails 锁定后不允许再修改
func (w *Wallet) UpdateBankDetails(details BankDetails, at time.Time) error {
	if w.BankDetailsLocked {
		return ErrBankDetailsLocked
	}
	details = details.trimmed()
	if !details.complete() {
		return ErrBankDetailsIncomplete
	}
	w.Bank = details
	w.UpdatedAt = at
	return nil
}
