package port

import (
	"context"

	"fundgate/internal/service/deposit/domain"
)

// EventPublisher 是消息生产者的出站端口。
type EventPublisher interface {
	PublishDepositEvent(ctx context.Context, event domain.DepositEvent) error
}
