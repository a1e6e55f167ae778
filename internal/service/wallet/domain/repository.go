package domain

import (
	"context"
	"time"
)

// WalletRepository 定义了钱包的持久化接口，余额只读
type WalletRepository interface {
	// FindByUser 钱包行不存在时返回零余额钱包
	FindByUser(ctx context.Context, userID string) (*Wallet, error)
	// SaveBankDetails 只在未锁定时生效，否则返回 ErrBankDetailsLocked
	SaveBankDetails(ctx context.Context, userID string, details BankDetails, at time.Time) error
}

// WithdrawalRepository 定义了提现申请的持久化接口
type WithdrawalRepository interface {
	Create(ctx context.Context, w *WithdrawalRequest) error
	// ListByUser 按创建时间倒序
	ListByUser(ctx context.Context, userID string) ([]*WithdrawalRequest, error)
}
