package saga

import (
	"fmt"

	"fundgate/internal/pkg/logger"
	"fundgate/internal/service/deposit/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RedeemPromoHandler 记录优惠码使用并递增计数。
// 计数只增不减，所以只有 use 记录需要补偿。
type RedeemPromoHandler struct {
	NextHandler
}

func (h *RedeemPromoHandler) Handle(submitCtx *SubmitContext) error {
	if submitCtx.Promo == nil {
		return h.executeNext(submitCtx)
	}

	ctx, span := submitCtx.Tracer.Start(submitCtx.Ctx, "saga.RedeemPromo")
	defer span.End()

	promo := *submitCtx.Promo
	span.SetAttributes(attribute.String("promo.id", promo.PromoCodeID), attribute.String("promo.code", promo.Code))

	useID, err := submitCtx.Promos.RecordUse(ctx, submitCtx.UserID, promo)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to record promo use")
		return fmt.Errorf("%w: %s", domain.ErrPromoRedemptionFailed, err.Error())
	}

	if err := submitCtx.Promos.IncrementUsage(ctx, promo.PromoCodeID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to increment promo usage")
		if delErr := submitCtx.Promos.DeleteUse(ctx, useID); delErr != nil {
			logger.Ctx(ctx).Error().Err(delErr).Str("use", useID).Msg("Failed to delete promo use after increment failure")
		}
		return fmt.Errorf("%w: %s", domain.ErrPromoRedemptionFailed, err.Error())
	}
	submitCtx.PromoUseID = useID

	span.AddEvent("Promo code redeemed")
	return h.executeNext(submitCtx)
}
