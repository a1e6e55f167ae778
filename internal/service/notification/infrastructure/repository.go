package infrastructure

import (
	"context"
	"errors"

	"fundgate/internal/pkg/supabase"
	"fundgate/internal/service/notification/domain"

	"github.com/go-sql-driver/mysql"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// SupabaseNotificationRepository 写入 notifications 表，主键冲突说明已投递过
type SupabaseNotificationRepository struct {
	client *supabase.Client
}

func NewSupabaseNotificationRepository(client *supabase.Client) *SupabaseNotificationRepository {
	return &SupabaseNotificationRepository{client: client}
}

func (r *SupabaseNotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	_, err := r.client.From("notifications").ExecuteInsert(ctx, FromDomainNotification(n))
	if errors.Is(err, supabase.ErrUniqueViolation) {
		return nil
	}
	return pkgerrors.Wrap(err, "insert notification")
}

// GormNotificationRepository 是自建后端的实现
type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	err := r.db.WithContext(ctx).Create(FromDomainNotification(n)).Error
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return nil
	}
	return err
}
