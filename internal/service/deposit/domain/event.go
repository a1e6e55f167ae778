// internal/service/deposit/domain/event.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventDepositSubmitted = "deposit.submitted"
	EventDepositApproved  = "deposit.approved"
	EventDepositRejected  = "deposit.rejected"
)

// DepositEvent 是充值流程对外发布的领域事件
type DepositEvent struct {
	Type         string
	RequestID    string
	UserID       string
	Amount       decimal.Decimal
	Subscription bool
	Reason       string
	OccurredAt   time.Time
}

// NewDepositEvent 从聚合的当前状态构造事件
func NewDepositEvent(eventType string, d *DepositRequest, reason string, at time.Time) DepositEvent {
	return DepositEvent{
		Type:         eventType,
		RequestID:    d.ID,
		UserID:       d.UserID,
		Amount:       d.Amount,
		Subscription: d.IsSubscription(),
		Reason:       reason,
		OccurredAt:   at,
	}
}
