// internal/service/promotion/application/service.go
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fundgate/internal/pkg/appctx"
	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/metrics"
	"fundgate/internal/service/promotion/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultCodeLength   = 8
	maxGenerateAttempts = 3
	defaultBillingCycle = "monthly"
)

// Dependencies 汇总优惠码用例依赖的出站端口
type Dependencies struct {
	Repo       domain.PromoRepository
	Procedures domain.PromoProcedures
	Rule       domain.EligibilityRule // 为空时折扣对所有结账生效
	Prices     domain.PriceBook
	CodeLength int // 为 0 时使用 8 位
	Tracer     trace.Tracer
}

// PromotionService 定义了优惠码服务提供的所有业务用例
type PromotionService struct {
	Dependencies
	now func() time.Time
}

// NewPromotionService 创建一个新的优惠码服务实例
func NewPromotionService(deps Dependencies) *PromotionService {
	if deps.CodeLength <= 0 {
		deps.CodeLength = defaultCodeLength
	}
	return &PromotionService{Dependencies: deps, now: time.Now}
}

// Generate 创建一个新的优惠码。code 由服务端生成，撞码时重新生成，最多尝试三次。
func (s *PromotionService) Generate(ctx context.Context, admin *appctx.Session, req *GeneratePromoRequest) (*PromoView, error) {
	ctx, span := s.Tracer.Start(ctx, "service.GeneratePromoCode")
	defer span.End()

	if err := appctx.RequireAdmin(admin); err != nil {
		return nil, err
	}
	input := req.toIssueInput()
	if err := input.Validate(); err != nil {
		span.SetStatus(codes.Error, "Invalid promo input")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("promo.campaign", input.CampaignName),
		attribute.Int("promo.discount_percentage", input.DiscountPercentage),
		attribute.String("promo.expiry", string(input.Expiry)),
	)

	var lastErr error
	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		code, err := s.Procedures.GenerateCode(ctx, s.CodeLength)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "generate_promo_code failed")
			return nil, err
		}

		promo, err := domain.NewPromoCode(uuid.NewString(), code, admin.UserID, input, s.now())
		if err != nil {
			return nil, err
		}
		err = s.Repo.Insert(ctx, promo)
		if err == nil {
			metrics.PromoCodesGenerated.Inc()
			logger.Ctx(ctx).Info().Str("code", promo.Code).Str("campaign", promo.CampaignName).Msg("✅ Promo code generated")
			return ToPromoView(promo, s.now()), nil
		}
		if !errors.Is(err, domain.ErrDuplicateCode) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to insert promo code")
			return nil, err
		}
		lastErr = err
		span.AddEvent("Generated code collided, retrying", trace.WithAttributes(attribute.Int("attempt", attempt)))
		logger.Ctx(ctx).Warn().Str("code", promo.Code).Int("attempt", attempt).Msg("Promo code collision")
	}
	span.SetStatus(codes.Error, "Exhausted promo code generation attempts")
	return nil, fmt.Errorf("after %d attempts: %w", maxGenerateAttempts, lastErr)
}

// Validate 在结账时校验优惠码并计算折后价。判定完全交给服务端，这里只做规范化与计价。
func (s *PromotionService) Validate(ctx context.Context, session *appctx.Session, req *ValidatePromoRequest) (quote *Quote, err error) {
	ctx, span := s.Tracer.Start(ctx, "service.ValidatePromoCode")
	defer span.End()

	outcome := "error"
	defer func() { metrics.PromoValidations.WithLabelValues(outcome).Inc() }()

	if err := appctx.RequireUser(session); err != nil {
		return nil, err
	}
	code := domain.NormalizeCode(req.Code)
	if code == "" {
		outcome = "invalid"
		return nil, domain.ErrEmptyCode
	}
	plan := strings.ToLower(strings.TrimSpace(req.PlanType))
	cycle := strings.ToLower(strings.TrimSpace(req.BillingCycle))
	if cycle == "" {
		cycle = defaultBillingCycle
	}
	price, err := s.Prices.Price(plan, cycle)
	if err != nil {
		outcome = "invalid"
		return nil, err
	}
	span.SetAttributes(attribute.String("promo.code", code), attribute.String("plan.type", plan), attribute.String("plan.cycle", cycle))

	result, err := s.Procedures.Validate(ctx, code, session.UserID, plan)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validate_promo_code failed")
		return nil, err
	}

	switch v := result.(type) {
	case domain.Invalid:
		outcome = "invalid"
		span.AddEvent("Promo code rejected", trace.WithAttributes(attribute.String("reason", v.Reason)))
		return nil, &domain.RejectedError{Reason: v.Reason}
	case domain.Valid:
		checkout := domain.Checkout{PlanType: plan, BillingCycle: cycle, Price: price}
		applied := true
		if s.Rule != nil {
			if applied, err = s.Rule.Applies(checkout); err != nil {
				span.RecordError(err)
				return nil, err
			}
		}
		discounted := price
		if applied {
			discounted = domain.DiscountedPrice(price, v.DiscountPercentage)
		}
		outcome = "valid"
		logger.Ctx(ctx).Info().Str("code", code).Bool("applied", applied).Msg("✅ Promo code validated")
		return &Quote{
			PromoCodeID:     v.PromoCodeID,
			Code:            code,
			PlanType:        plan,
			BillingCycle:    cycle,
			Percentage:      v.DiscountPercentage,
			BasePrice:       price.StringFixed(2),
			DiscountedPrice: discounted.StringFixed(2),
			DiscountAmount:  price.Sub(discounted).StringFixed(2),
			Applied:         applied,
		}, nil
	}
	return nil, domain.ErrMalformedValidation
}

// List 返回全部优惠码，最新的在前
func (s *PromotionService) List(ctx context.Context, admin *appctx.Session) ([]*PromoView, error) {
	ctx, span := s.Tracer.Start(ctx, "service.ListPromoCodes")
	defer span.End()

	if err := appctx.RequireAdmin(admin); err != nil {
		return nil, err
	}
	promos, err := s.Repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	now := s.now()
	views := make([]*PromoView, 0, len(promos))
	for _, p := range promos {
		views = append(views, ToPromoView(p, now))
	}
	return views, nil
}

// SetActive 启用或停用优惠码
func (s *PromotionService) SetActive(ctx context.Context, admin *appctx.Session, id string, active bool) (*PromoView, error) {
	ctx, span := s.Tracer.Start(ctx, "service.SetPromoActive")
	defer span.End()
	span.SetAttributes(attribute.String("promo.id", id), attribute.Bool("promo.active", active))

	if err := appctx.RequireAdmin(admin); err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.Repo.SetActive(ctx, id, active, now); err != nil {
		span.RecordError(err)
		return nil, err
	}
	promo, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("promo", id).Bool("active", active).Msg("✅ Promo code status changed")
	return ToPromoView(promo, now), nil
}

// RecordUse 记录一次核销，返回核销记录 id 供补偿使用
func (s *PromotionService) RecordUse(ctx context.Context, userID, promoCodeID string, discount decimal.Decimal, planType string) (string, error) {
	ctx, span := s.Tracer.Start(ctx, "service.RecordPromoUse")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("promo.id", promoCodeID))

	use := &domain.PromoCodeUse{
		ID:             uuid.NewString(),
		PromoCodeID:    promoCodeID,
		UserID:         userID,
		DiscountAmount: discount.StringFixed(2),
		PlanType:       planType,
		UsedAt:         s.now(),
	}
	if err := s.Repo.RecordUse(ctx, use); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to record promo use")
		return "", err
	}
	return use.ID, nil
}

// DeleteUse 是 RecordUse 的补偿方法
func (s *PromotionService) DeleteUse(ctx context.Context, useID string) error {
	ctx, span := s.Tracer.Start(ctx, "service.DeletePromoUse (Compensation)")
	defer span.End()

	if err := s.Repo.DeleteUse(ctx, useID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("compensation failed: %w", err)
	}
	logger.Ctx(ctx).Info().Str("use", useID).Msg("Compensation: promo code use deleted")
	span.AddEvent("Promo code use deleted")
	return nil
}

// IncrementUsage 调用 increment_promo_usage，used_count 只增不减
func (s *PromotionService) IncrementUsage(ctx context.Context, promoCodeID string) error {
	ctx, span := s.Tracer.Start(ctx, "service.IncrementPromoUsage")
	defer span.End()
	span.SetAttributes(attribute.String("promo.id", promoCodeID))

	if err := s.Procedures.IncrementUsage(ctx, promoCodeID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "increment_promo_usage failed")
		return err
	}
	return nil
}
