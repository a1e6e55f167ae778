package infrastructure

import (
	"context"
	"errors"
	"time"

	"fundgate/internal/service/deposit/domain"

	"gorm.io/gorm"
)

// GormDepositRepository 是 DepositRepository 的 GORM 实现，用于自建 MySQL 后端
type GormDepositRepository struct {
	db *gorm.DB
}

// NewGormDepositRepository 创建一个新的 GORM 仓储实例
func NewGormDepositRepository(db *gorm.DB) *GormDepositRepository {
	return &GormDepositRepository{db: db}
}

func (r *GormDepositRepository) Create(ctx context.Context, d *domain.DepositRequest) error {
	return r.db.WithContext(ctx).Create(FromDomainDeposit(d)).Error
}

func (r *GormDepositRepository) FindByID(ctx context.Context, id string) (*domain.DepositRequest, error) {
	var model DepositRequestModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDepositNotFound
		}
		return nil, err
	}
	return ToDomainDeposit(&model), nil
}

func (r *GormDepositRepository) ListAll(ctx context.Context) ([]*domain.DepositRequest, error) {
	var models []DepositRequestModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainDeposits(models), nil
}

func (r *GormDepositRepository) ListByUser(ctx context.Context, userID string) ([]*domain.DepositRequest, error) {
	var models []DepositRequestModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainDeposits(models), nil
}

func (r *GormDepositRepository) UpdateAdminNotes(ctx context.Context, id, notes string) error {
	return r.updatePending(ctx, id, map[string]interface{}{"admin_notes": notes})
}

func (r *GormDepositRepository) MarkVoided(ctx context.Context, id, reason string, at time.Time) error {
	return r.updatePending(ctx, id, map[string]interface{}{
		"status":       string(domain.StatusVoided),
		"admin_notes":  "voided: " + reason,
		"processed_at": at,
	})
}

// updatePending 只更新仍为 pending 的行。
// MySQL 的 RowsAffected 不计值未变化的行，所以 0 行时要回读状态才能区分“已处理”与“重复写入相同的值”。
func (r *GormDepositRepository) updatePending(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&DepositRequestModel{}).
		Where("id = ? AND status = ?", id, string(domain.StatusPending)).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var statuses []string
	err := r.db.WithContext(ctx).Model(&DepositRequestModel{}).Where("id = ?", id).Pluck("status", &statuses).Error
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		return domain.ErrDepositNotFound
	}
	if statuses[0] != string(domain.StatusPending) {
		return domain.ErrNotPending
	}
	return nil
}
