package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"fundgate/internal/pkg/supabase"
	"fundgate/internal/service/deposit/domain"

	"github.com/pkg/errors"
)

const depositTable = "deposit_requests"

// SupabaseDepositRepository 是 DepositRepository 的 PostgREST 实现
type SupabaseDepositRepository struct {
	client *supabase.Client
}

func NewSupabaseDepositRepository(client *supabase.Client) *SupabaseDepositRepository {
	return &SupabaseDepositRepository{client: client}
}

func (r *SupabaseDepositRepository) Create(ctx context.Context, d *domain.DepositRequest) error {
	_, err := r.client.From(depositTable).ExecuteInsert(ctx, FromDomainDeposit(d))
	return errors.Wrap(err, "insert deposit request")
}

func (r *SupabaseDepositRepository) FindByID(ctx context.Context, id string) (*domain.DepositRequest, error) {
	var row DepositRequestModel
	err := r.client.From(depositTable).Select("*").Eq("id", id).Single().ExecuteInto(ctx, &row)
	if errors.Is(err, supabase.ErrNoRows) {
		return nil, domain.ErrDepositNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select deposit request")
	}
	return ToDomainDeposit(&row), nil
}

func (r *SupabaseDepositRepository) ListAll(ctx context.Context) ([]*domain.DepositRequest, error) {
	var rows []DepositRequestModel
	if err := r.client.From(depositTable).Select("*").Order("created_at", false).ExecuteInto(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "list deposit requests")
	}
	return toDomainDeposits(rows), nil
}

func (r *SupabaseDepositRepository) ListByUser(ctx context.Context, userID string) ([]*domain.DepositRequest, error) {
	var rows []DepositRequestModel
	err := r.client.From(depositTable).Select("*").Eq("user_id", userID).Order("created_at", false).ExecuteInto(ctx, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "list user deposit requests")
	}
	return toDomainDeposits(rows), nil
}

func (r *SupabaseDepositRepository) UpdateAdminNotes(ctx context.Context, id, notes string) error {
	return r.updatePending(ctx, id, map[string]any{"admin_notes": notes})
}

func (r *SupabaseDepositRepository) MarkVoided(ctx context.Context, id, reason string, at time.Time) error {
	return r.updatePending(ctx, id, map[string]any{
		"status":       string(domain.StatusVoided),
		"admin_notes":  "voided: " + reason,
		"processed_at": at.UTC(),
	})
}

// updatePending 只更新仍为 pending 的行，没有命中说明已被处理
func (r *SupabaseDepositRepository) updatePending(ctx context.Context, id string, fields map[string]any) error {
	resp, err := r.client.From(depositTable).
		Eq("id", id).
		Eq("status", string(domain.StatusPending)).
		ExecuteUpdate(ctx, fields)
	if err != nil {
		return errors.Wrap(err, "update deposit request")
	}
	var rows []json.RawMessage
	if err := resp.JSON(&rows); err != nil {
		return errors.Wrap(err, "decode updated rows")
	}
	if len(rows) == 0 {
		return domain.ErrNotPending
	}
	return nil
}

// SupabaseDepositProcessor 调用服务端存储过程 process_deposit_request
type SupabaseDepositProcessor struct {
	client *supabase.Client
}

func NewSupabaseDepositProcessor(client *supabase.Client) *SupabaseDepositProcessor {
	return &SupabaseDepositProcessor{client: client}
}

func (p *SupabaseDepositProcessor) Process(ctx context.Context, requestID, adminID string, action domain.Action) (bool, error) {
	resp, err := p.client.RPC(ctx, "process_deposit_request", map[string]string{
		"request_id": requestID,
		"admin_id":   adminID,
		"action":     string(action),
	})
	if err != nil {
		return false, errors.Wrap(err, "process_deposit_request")
	}
	var ok bool
	if err := resp.JSON(&ok); err != nil {
		return false, errors.Wrap(err, "decode process_deposit_request result")
	}
	return ok, nil
}
