package infrastructure

import (
	"time"

	"fundgate/internal/service/notification/domain"
)

// NotificationModel 对应 notifications 表，data 以 JSON 存储
type NotificationModel struct {
	ID        string            `json:"id" gorm:"primaryKey;type:char(36)"`
	UserID    string            `json:"user_id" gorm:"type:char(36);index"`
	Type      string            `json:"type" gorm:"type:varchar(64)"`
	Title     string            `json:"title"`
	Message   string            `json:"message" gorm:"type:text"`
	Data      map[string]string `json:"data" gorm:"serializer:json;type:json"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
}

// TableName 指定 GORM 应该使用的表名
func (NotificationModel) TableName() string {
	return "notifications"
}

func FromDomainNotification(n *domain.Notification) *NotificationModel {
	return &NotificationModel{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.UTC(),
	}
}
