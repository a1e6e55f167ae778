package adapter

import (
	"context"
	"errors"

	"fundgate/internal/service/deposit/domain"
	"fundgate/internal/service/deposit/domain/port"
)

// FanoutPublisher 把同一个事件发给多个下游，所有下游都会被调用
type FanoutPublisher []port.EventPublisher

func (f FanoutPublisher) PublishDepositEvent(ctx context.Context, e domain.DepositEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishDepositEvent(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
