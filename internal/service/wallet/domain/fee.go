package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MinimumWithdrawal 单笔最低提现金额
var MinimumWithdrawal = decimal.NewFromInt(5000)

var (
	rateExclusive = decimal.RequireFromString("0.05")
	ratePremium   = decimal.RequireFromString("0.10")
	rateDefault   = decimal.RequireFromString("0.15")
)

// FeeRateFor 按订阅等级返回手续费率：exclusive 5%，premium 10%，其他 15%
func FeeRateFor(tier string) decimal.Decimal {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "exclusive":
		return rateExclusive
	case "premium":
		return ratePremium
	}
	return rateDefault
}

// Quote 是一笔提现的金额拆分，Gross = Fee + Net
type Quote struct {
	WalletType WalletType
	Gross      decimal.Decimal
	Rate       decimal.Decimal
	Fee        decimal.Decimal
	Net        decimal.Decimal
}

// QuoteWithdrawal 计算手续费与到账金额，手续费保留两位小数
func QuoteWithdrawal(walletType WalletType, amount decimal.Decimal, tier string) Quote {
	rate := FeeRateFor(tier)
	fee := amount.Mul(rate).Round(2)
	return Quote{
		WalletType: walletType,
		Gross:      amount,
		Rate:       rate,
		Fee:        fee,
		Net:        amount.Sub(fee),
	}
}

// ParseAmount 解析金额，非数字或 <= 0 都视为非法
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// CheckWithdrawal 校验最低金额与余额
func CheckWithdrawal(w *Wallet, walletType WalletType, amount decimal.Decimal) error {
	balance, err := w.BalanceFor(walletType)
	if err != nil {
		return err
	}
	if amount.LessThan(MinimumWithdrawal) {
		return ErrBelowMinimum
	}
	if amount.GreaterThan(balance) {
		return ErrInsufficientBalance
	}
	return nil
}
