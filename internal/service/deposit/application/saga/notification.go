package saga

import (
	"fundgate/internal/pkg/logger"
	"fundgate/internal/service/deposit/domain"

	"go.opentelemetry.io/otel/attribute"
)

// NotificationHandler 是 Saga 流程的最后一步，发送失败不影响提交结果
type NotificationHandler struct {
	NextHandler
}

func (h *NotificationHandler) Handle(submitCtx *SubmitContext) error {
	ctx, span := submitCtx.Tracer.Start(submitCtx.Ctx, "saga.Notification")
	defer span.End()

	span.SetAttributes(attribute.String("messaging.system", "kafka"))

	if submitCtx.Events != nil {
		event := domain.NewDepositEvent(domain.EventDepositSubmitted, submitCtx.Deposit, "", submitCtx.Now)
		if err := submitCtx.Events.PublishDepositEvent(ctx, event); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("deposit", submitCtx.Deposit.ID).Msg("Failed to publish deposit.submitted")
			span.RecordError(err)
		}
	}

	span.AddEvent("Saga process finalized and notification sent (or attempted).")
	return h.executeNext(submitCtx)
}
