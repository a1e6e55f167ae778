package infrastructure

import (
	"context"
	"errors"
	"time"

	"fundgate/internal/service/deposit/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDepositProcessor 在自建后端上实现 process_deposit_request：
// 锁定申请行、流转状态、入账或激活订阅，全部在一个事务内完成。
type GormDepositProcessor struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormDepositProcessor(db *gorm.DB) *GormDepositProcessor {
	return &GormDepositProcessor{db: db, now: time.Now}
}

func (p *GormDepositProcessor) Process(ctx context.Context, requestID, adminID string, action domain.Action) (bool, error) {
	if !action.Valid() {
		return false, errors.New("unknown deposit action: " + string(action))
	}

	processed := false
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. SELECT ... FOR UPDATE 锁定申请行
		var model DepositRequestModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", requestID).First(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrDepositNotFound
		}
		if err != nil {
			return err
		}

		// 2. 领域对象负责判断能否流转
		deposit := ToDomainDeposit(&model)
		now := p.now()
		if action == domain.ActionApprove {
			err = deposit.Approve(adminID, now)
		} else {
			// 驳回原因已由调用方写入 admin notes
			err = deposit.Reject(adminID, rejectNote(deposit.AdminNotes), now)
		}
		if errors.Is(err, domain.ErrNotPending) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&DepositRequestModel{}).Where("id = ?", requestID).Updates(map[string]interface{}{
			"status":       string(deposit.Status),
			"processed_at": now,
			"processed_by": adminID,
		}).Error; err != nil {
			return err
		}

		// 3. 通过时入账或激活订阅
		if action == domain.ActionApprove {
			if err := applyApproval(tx, deposit, now); err != nil {
				return err
			}
		}
		processed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return processed, nil
}

func rejectNote(notes string) string {
	if domain.CanReject(notes) {
		return notes
	}
	return "rejected"
}

func applyApproval(tx *gorm.DB, d *domain.DepositRequest, now time.Time) error {
	if tier, cycle, ok := d.SubscriptionPlan(); ok {
		expires := now.AddDate(0, 1, 0)
		if cycle == "annual" {
			expires = now.AddDate(1, 0, 0)
		}
		return tx.Table("profiles").Where("id = ?", d.UserID).Updates(map[string]interface{}{
			"subscription_tier":       tier,
			"subscription_status":     "active",
			"subscription_expires_at": expires,
		}).Error
	}

	res := tx.Table("wallets").Where("user_id = ?", d.UserID).
		Update("balance", gorm.Expr("balance + ?", d.Amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Table("wallets").Create(map[string]interface{}{
			"user_id":    d.UserID,
			"balance":    d.Amount,
			"updated_at": now,
		}).Error
	}
	return nil
}
