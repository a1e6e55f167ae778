// internal/service/notification/application/service.go
package application

import (
	"context"

	"fundgate/internal/pkg/events"
	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/metrics"
	"fundgate/internal/service/notification/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NotificationService 把工作流事件落成站内通知
type NotificationService struct {
	repo   domain.NotificationRepository
	tracer trace.Tracer
}

func NewNotificationService(repo domain.NotificationRepository, tracer trace.Tracer) *NotificationService {
	return &NotificationService{repo: repo, tracer: tracer}
}

// Deliver 由 Kafka 消费者调用
func (s *NotificationService) Deliver(ctx context.Context, e events.Envelope) (err error) {
	ctx, span := s.tracer.Start(ctx, "app.DeliverNotification")
	defer span.End()
	defer func() { metrics.NotificationsDelivered.WithLabelValues(e.Type, metrics.Result(err)).Inc() }()

	span.SetAttributes(
		attribute.String("event.id", e.ID),
		attribute.String("event.type", e.Type),
		attribute.String("user.id", e.UserID),
	)

	if err := s.repo.Save(ctx, domain.FromEnvelope(e)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save notification")
		return err
	}
	span.AddEvent("Notification stored")
	logger.Ctx(ctx).Info().Str("user", e.UserID).Str("type", e.Type).Msg("✅ Notification delivered")
	return nil
}
