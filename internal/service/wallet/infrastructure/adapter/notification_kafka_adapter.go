package adapter

import (
	"context"
	"fmt"

	"fundgate/internal/pkg/events"
	"fundgate/internal/service/wallet/domain"
)

// EventPublisher 由 events.Publisher 实现
type EventPublisher interface {
	Publish(ctx context.Context, e events.Envelope) error
}

// NotificationKafkaAdapter 实现了 port.EventPublisher 接口。
type NotificationKafkaAdapter struct {
	publisher EventPublisher
}

func NewNotificationKafkaAdapter(publisher EventPublisher) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{publisher: publisher}
}

// PublishWithdrawalEvent 把提现事件翻译成站内通知
func (a *NotificationKafkaAdapter) PublishWithdrawalEvent(ctx context.Context, e domain.WithdrawalEvent) error {
	if e.Type != domain.EventWithdrawalRequested {
		return fmt.Errorf("unknown withdrawal event type %q", e.Type)
	}
	w := e.Withdrawal
	message := fmt.Sprintf("Your withdrawal of %s (fee %s) to %s is being processed. You will receive %s.",
		w.Gross.StringFixed(2), w.Fee.StringFixed(2), w.Bank.BankName, w.Amount.StringFixed(2))
	data := map[string]string{
		"withdrawal_id": w.ID,
		"wallet_type":   string(w.WalletType),
		"gross_amount":  w.Gross.String(),
		"fee_amount":    w.Fee.String(),
		"net_amount":    w.Amount.String(),
	}
	return a.publisher.Publish(ctx, events.New(e.Type, w.UserID, "Withdrawal requested", message, data, e.OccurredAt))
}
