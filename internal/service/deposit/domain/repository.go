// internal/service/deposit/domain/repository.go
package domain

import (
	"context"
	"time"
)

// DepositRepository 定义了充值申请持久化的接口
type DepositRepository interface {
	Create(ctx context.Context, d *DepositRequest) error
	// FindByID 不存在时返回 ErrDepositNotFound
	FindByID(ctx context.Context, id string) (*DepositRequest, error)
	// ListAll 按创建时间倒序
	ListAll(ctx context.Context) ([]*DepositRequest, error)
	ListByUser(ctx context.Context, userID string) ([]*DepositRequest, error)
	// UpdateAdminNotes 只修改仍处于 pending 的申请
	UpdateAdminNotes(ctx context.Context, id, notes string) error
	// MarkVoided 只作废仍处于 pending 的申请
	MarkVoided(ctx context.Context, id, reason string, at time.Time) error
}
