package infrastructure

import (
	"context"
	"time"

	"fundgate/internal/service/wallet/domain"

	"gorm.io/gorm"
)

// GormWalletRepository 是 WalletRepository 的 GORM 实现
type GormWalletRepository struct {
	db *gorm.DB
}

func NewGormWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

func (r *GormWalletRepository) FindByUser(ctx context.Context, userID string) (*domain.Wallet, error) {
	var models []WalletModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&models).Error; err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return &domain.Wallet{UserID: userID}, nil
	}
	return ToDomainWallet(&models[0]), nil
}

// SaveBankDetails 在一个事务内完成：未锁定则更新，不存在则创建
func (r *GormWalletRepository) SaveBankDetails(ctx context.Context, userID string, details domain.BankDetails, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := bankFields(details)
		fields["updated_at"] = at
		res := tx.Model(&WalletModel{}).Where("user_id = ? AND bank_details_locked = ?", userID, false).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(&WalletModel{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrBankDetailsLocked
		}
		bank, number, name := details.BankName, details.AccountNumber, details.AccountName
		return tx.Create(&WalletModel{
			UserID:        userID,
			BankName:      &bank,
			AccountNumber: &number,
			AccountName:   &name,
			UpdatedAt:     at,
		}).Error
	})
}

// GormWithdrawalRepository 是 WithdrawalRepository 的 GORM 实现
type GormWithdrawalRepository struct {
	db *gorm.DB
}

func NewGormWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

func (r *GormWithdrawalRepository) Create(ctx context.Context, w *domain.WithdrawalRequest) error {
	return r.db.WithContext(ctx).Create(FromDomainWithdrawal(w)).Error
}

func (r *GormWithdrawalRepository) ListByUser(ctx context.Context, userID string) ([]*domain.WithdrawalRequest, error) {
	var models []WithdrawalRequestModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainWithdrawals(models), nil
}
