package infrastructure

import (
	"context"
	"errors"
	"time"

	"fundgate/internal/service/promotion/domain"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// GormPromoRepository 是 PromoRepository 的 GORM 实现
type GormPromoRepository struct {
	db *gorm.DB
}

// NewGormPromoRepository 创建一个新的 GORM 仓储实例
func NewGormPromoRepository(db *gorm.DB) *GormPromoRepository {
	return &GormPromoRepository{db: db}
}

func (r *GormPromoRepository) Insert(ctx context.Context, p *domain.PromoCode) error {
	err := r.db.WithContext(ctx).Create(FromDomainPromoCode(p)).Error
	if isDuplicateEntry(err) {
		return domain.ErrDuplicateCode
	}
	return err
}

func (r *GormPromoRepository) FindByID(ctx context.Context, id string) (*domain.PromoCode, error) {
	var model PromoCodeModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPromoNotFound
		}
		return nil, err
	}
	return ToDomainPromoCode(&model), nil
}

func (r *GormPromoRepository) List(ctx context.Context) ([]*domain.PromoCode, error) {
	var models []PromoCodeModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainPromoCodes(models), nil
}

func (r *GormPromoRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&PromoCodeModel{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": active, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPromoNotFound
	}
	return nil
}

func (r *GormPromoRepository) RecordUse(ctx context.Context, use *domain.PromoCodeUse) error {
	return r.db.WithContext(ctx).Create(FromDomainPromoUse(use)).Error
}

func (r *GormPromoRepository) DeleteUse(ctx context.Context, useID string) error {
	return r.db.WithContext(ctx).Where("id = ?", useID).Delete(&PromoCodeUseModel{}).Error
}

func isDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
