package domain

import "time"

const EventWithdrawalRequested = "withdrawal.requested"

// WithdrawalEvent 是提现申请创建后发布的领域事件
type WithdrawalEvent struct {
	Type       string
	Withdrawal WithdrawalRequest
	OccurredAt time.Time
}
