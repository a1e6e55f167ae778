package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"fundgate/internal/pkg/supabase"
	"fundgate/internal/service/promotion/domain"

	"github.com/pkg/errors"
)

const (
	promoTable    = "promo_codes"
	promoUseTable = "promo_code_uses"
)

// SupabasePromoRepository 是 PromoRepository 的 PostgREST 实现
type SupabasePromoRepository struct {
	client *supabase.Client
}

func NewSupabasePromoRepository(client *supabase.Client) *SupabasePromoRepository {
	return &SupabasePromoRepository{client: client}
}

func (r *SupabasePromoRepository) Insert(ctx context.Context, p *domain.PromoCode) error {
	_, err := r.client.From(promoTable).ExecuteInsert(ctx, FromDomainPromoCode(p))
	if errors.Is(err, supabase.ErrUniqueViolation) {
		return domain.ErrDuplicateCode
	}
	return errors.Wrap(err, "insert promo code")
}

func (r *SupabasePromoRepository) FindByID(ctx context.Context, id string) (*domain.PromoCode, error) {
	var row PromoCodeModel
	err := r.client.From(promoTable).Select("*").Eq("id", id).Single().ExecuteInto(ctx, &row)
	if errors.Is(err, supabase.ErrNoRows) {
		return nil, domain.ErrPromoNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select promo code")
	}
	return ToDomainPromoCode(&row), nil
}

func (r *SupabasePromoRepository) List(ctx context.Context) ([]*domain.PromoCode, error) {
	var rows []PromoCodeModel
	if err := r.client.From(promoTable).Select("*").Order("created_at", false).ExecuteInto(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "list promo codes")
	}
	return toDomainPromoCodes(rows), nil
}

func (r *SupabasePromoRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	resp, err := r.client.From(promoTable).Eq("id", id).ExecuteUpdate(ctx, map[string]any{
		"is_active":  active,
		"updated_at": at.UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "update promo code")
	}
	var rows []json.RawMessage
	if err := resp.JSON(&rows); err != nil {
		return errors.Wrap(err, "decode updated rows")
	}
	if len(rows) == 0 {
		return domain.ErrPromoNotFound
	}
	return nil
}

func (r *SupabasePromoRepository) RecordUse(ctx context.Context, use *domain.PromoCodeUse) error {
	_, err := r.client.From(promoUseTable).ExecuteInsert(ctx, FromDomainPromoUse(use))
	return errors.Wrap(err, "insert promo code use")
}

func (r *SupabasePromoRepository) DeleteUse(ctx context.Context, useID string) error {
	_, err := r.client.From(promoUseTable).Eq("id", useID).ExecuteDelete(ctx)
	return errors.Wrap(err, "delete promo code use")
}

// SupabasePromoProcedures 调用服务端的优惠码存储过程
type SupabasePromoProcedures struct {
	client *supabase.Client
}

func NewSupabasePromoProcedures(client *supabase.Client) *SupabasePromoProcedures {
	return &SupabasePromoProcedures{client: client}
}

func (p *SupabasePromoProcedures) GenerateCode(ctx context.Context, length int) (string, error) {
	resp, err := p.client.RPC(ctx, "generate_promo_code", map[string]int{"length": length})
	if err != nil {
		return "", errors.Wrap(err, "generate_promo_code")
	}
	var code string
	if err := resp.JSON(&code); err != nil {
		return "", errors.Wrap(err, "decode generate_promo_code result")
	}
	if code == "" {
		return "", errors.New("generate_promo_code returned an empty code")
	}
	return code, nil
}

func (p *SupabasePromoProcedures) Validate(ctx context.Context, code, userID, planType string) (domain.Validation, error) {
	resp, err := p.client.RPC(ctx, "validate_promo_code", map[string]string{
		"code":      code,
		"user_id":   userID,
		"plan_type": planType,
	})
	if err != nil {
		return nil, errors.Wrap(err, "validate_promo_code")
	}
	return domain.DecodeValidation(resp.Body)
}

func (p *SupabasePromoProcedures) IncrementUsage(ctx context.Context, promoID string) error {
	_, err := p.client.RPC(ctx, "increment_promo_usage", map[string]string{"promo_id": promoID})
	return errors.Wrap(err, "increment_promo_usage")
}
