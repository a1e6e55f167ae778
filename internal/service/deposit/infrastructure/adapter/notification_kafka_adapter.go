package adapter

import (
	"context"
	"fmt"

	"fundgate/internal/pkg/events"
	"fundgate/internal/service/deposit/domain"
)

// EventPublisher 是通用的事件发布者，由 events.Publisher 实现
type EventPublisher interface {
	Publish(ctx context.Context, e events.Envelope) error
}

// NotificationKafkaAdapter 实现了 port.EventPublisher 接口。
type NotificationKafkaAdapter struct {
	publisher EventPublisher
}

// NewNotificationKafkaAdapter 创建一个新的通知生产者适配器。
func NewNotificationKafkaAdapter(publisher EventPublisher) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{publisher: publisher}
}

// PublishDepositEvent 把领域事件翻译成面向用户的通知文案
func (a *NotificationKafkaAdapter) PublishDepositEvent(ctx context.Context, e domain.DepositEvent) error {
	amount := e.Amount.StringFixed(2)
	var title, message string
	switch e.Type {
	case domain.EventDepositSubmitted:
		title = "Deposit submitted"
		message = fmt.Sprintf("Your deposit of %s has been received and is awaiting review.", amount)
	case domain.EventDepositApproved:
		title = "Deposit approved"
		message = fmt.Sprintf("Your deposit of %s has been approved and credited to your wallet.", amount)
		if e.Subscription {
			message = fmt.Sprintf("Your subscription payment of %s has been approved. Your plan is now active.", amount)
		}
	case domain.EventDepositRejected:
		title = "Deposit rejected"
		message = fmt.Sprintf("Your deposit of %s was rejected: %s", amount, e.Reason)
	default:
		return fmt.Errorf("unknown deposit event type %q", e.Type)
	}

	data := map[string]string{
		"request_id": e.RequestID,
		"amount":     e.Amount.String(),
	}
	if e.Reason != "" {
		data["reason"] = e.Reason
	}
	return a.publisher.Publish(ctx, events.New(e.Type, e.UserID, title, message, data, e.OccurredAt))
}
