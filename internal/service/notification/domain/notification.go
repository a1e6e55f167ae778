// internal/service/notification/domain/notification.go
package domain

import (
	"context"
	"time"

	"fundgate/internal/pkg/events"
)

// Notification 是一条站内通知，ID 与来源事件相同，重复投递不会产生重复通知
type Notification struct {
	ID        string
	UserID    string
	Type      string
	Title     string
	Message   string
	Data      map[string]string
	IsRead    bool
	CreatedAt time.Time
}

// FromEnvelope 把工作流事件转换为通知
func FromEnvelope(e events.Envelope) *Notification {
	title := e.Title
	if title == "" {
		title = e.Type
	}
	return &Notification{
		ID:        e.ID,
		UserID:    e.UserID,
		Type:      e.Type,
		Title:     title,
		Message:   e.Message,
		Data:      e.Data,
		CreatedAt: e.OccurredAt,
	}
}

// NotificationRepository 定义了通知的持久化接口
type NotificationRepository interface {
	// Save 对同一 ID 幂等
	Save(ctx context.Context, n *Notification) error
}
