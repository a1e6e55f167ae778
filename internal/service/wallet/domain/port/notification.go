package port

import (
	"context"

	"fundgate/internal/service/wallet/domain"
)

// EventPublisher 是提现事件的出站端口
type EventPublisher interface {
	PublishWithdrawalEvent(ctx context.Context, e domain.WithdrawalEvent) error
}
