package saga

import (
	"context"

	"fundgate/internal/pkg/logger"
	"fundgate/internal/service/deposit/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CreateDepositHandler 写入 pending 状态的充值申请
type CreateDepositHandler struct {
	NextHandler
}

func (h *CreateDepositHandler) Handle(submitCtx *SubmitContext) error {
	ctx, span := submitCtx.Tracer.Start(submitCtx.Ctx, "saga.CreateDeposit")
	defer span.End()

	deposit, err := domain.NewDepositRequest(submitCtx.UserID, submitCtx.Submission, submitCtx.ProofURL, submitCtx.Now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid deposit request")
		return err
	}
	span.SetAttributes(attribute.String("deposit.id", deposit.ID), attribute.String("deposit.amount", deposit.Amount.String()))

	if err := submitCtx.Repo.Create(ctx, deposit); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to insert deposit request")
		return err
	}
	submitCtx.Deposit = deposit

	submitCtx.AddCompensation(func(compCtx context.Context) {
		compCtx, compSpan := submitCtx.Tracer.Start(compCtx, "saga.compensation.VoidDeposit")
		defer compSpan.End()

		reason := "submission did not complete"
		if err := deposit.Void(reason, submitCtx.Now); err != nil {
			compSpan.RecordError(err)
			return
		}
		if err := submitCtx.Repo.MarkVoided(compCtx, deposit.ID, reason, submitCtx.Now); err != nil {
			compSpan.RecordError(err)
			logger.Ctx(compCtx).Error().Err(err).Str("deposit", deposit.ID).Msg("CRITICAL: failed to void deposit request after compensation")
		}
	})

	logger.Ctx(ctx).Info().Str("deposit", deposit.ID).Str("user", deposit.UserID).Msg("Deposit request created")
	return h.executeNext(submitCtx)
}
