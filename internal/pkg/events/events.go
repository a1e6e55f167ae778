// Package events 定义了工作流事件在 Kafka 上的统一信封格式，
// wallet-service 负责生产，notification-service 负责消费并落成站内通知。
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fundgate/internal/pkg/mq"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Envelope 是所有工作流事件共用的消息体
type Envelope struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	UserID     string            `json:"user_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// New 创建一个带唯一 ID 的事件
func New(eventType, userID, title, message string, data map[string]string, at time.Time) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		Title:      title,
		Message:    message,
		Data:       data,
		OccurredAt: at.UTC(),
	}
}

// Decode 解析消息体，缺少类型或用户的消息视为无效
func Decode(value []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(value, &e); err != nil {
		return Envelope{}, errors.Wrap(err, "decode event envelope")
	}
	if e.Type == "" || e.UserID == "" {
		return Envelope{}, fmt.Errorf("event envelope %q is missing type or user_id", e.ID)
	}
	return e, nil
}

// Publisher 把事件写入 Kafka，以 user_id 作为分区键保证同一用户的事件有序
type Publisher struct {
	writer mq.MessageWriter
}

func NewPublisher(writer mq.MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

func (p *Publisher) Publish(ctx context.Context, e Envelope) error {
	value, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event envelope")
	}
	return errors.Wrapf(mq.ProduceMessage(ctx, p.writer, []byte(e.UserID), value), "publish %s", e.Type)
}
