package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"fundgate/internal/pkg/supabase"
	"fundgate/internal/service/wallet/domain"

	"github.com/pkg/errors"
)

const (
	walletTable     = "wallets"
	withdrawalTable = "withdrawal_requests"
)

// SupabaseWalletRepository 是 WalletRepository 的 PostgREST 实现
type SupabaseWalletRepository struct {
	client *supabase.Client
}

func NewSupabaseWalletRepository(client *supabase.Client) *SupabaseWalletRepository {
	return &SupabaseWalletRepository{client: client}
}

func (r *SupabaseWalletRepository) find(ctx context.Context, userID string) (*WalletModel, error) {
	var rows []WalletModel
	if err := r.client.From(walletTable).Select("*").Eq("user_id", userID).Limit(1).ExecuteInto(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "select wallet")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *SupabaseWalletRepository) FindByUser(ctx context.Context, userID string) (*domain.Wallet, error) {
	row, err := r.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return &domain.Wallet{UserID: userID}, nil
	}
	return ToDomainWallet(row), nil
}

// SaveBankDetails 先按未锁定条件更新；没有命中时区分"已锁定"与"钱包行不存在"
func (r *SupabaseWalletRepository) SaveBankDetails(ctx context.Context, userID string, details domain.BankDetails, at time.Time) error {
	fields := bankFields(details)
	fields["updated_at"] = at.UTC()
	resp, err := r.client.From(walletTable).
		Eq("user_id", userID).
		Is("bank_details_locked", false).
		ExecuteUpdate(ctx, fields)
	if err != nil {
		return errors.Wrap(err, "update bank details")
	}
	var rows []json.RawMessage
	if err := resp.JSON(&rows); err != nil {
		return errors.Wrap(err, "decode updated rows")
	}
	if len(rows) > 0 {
		return nil
	}

	existing, err := r.find(ctx, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrBankDetailsLocked
	}
	fields["user_id"] = userID
	_, err = r.client.From(walletTable).ExecuteInsert(ctx, fields)
	return errors.Wrap(err, "insert wallet")
}

// SupabaseWithdrawalRepository 是 WithdrawalRepository 的 PostgREST 实现
type SupabaseWithdrawalRepository struct {
	client *supabase.Client
}

func NewSupabaseWithdrawalRepository(client *supabase.Client) *SupabaseWithdrawalRepository {
	return &SupabaseWithdrawalRepository{client: client}
}

func (r *SupabaseWithdrawalRepository) Create(ctx context.Context, w *domain.WithdrawalRequest) error {
	_, err := r.client.From(withdrawalTable).ExecuteInsert(ctx, FromDomainWithdrawal(w))
	return errors.Wrap(err, "insert withdrawal request")
}

func (r *SupabaseWithdrawalRepository) ListByUser(ctx context.Context, userID string) ([]*domain.WithdrawalRequest, error) {
	var rows []WithdrawalRequestModel
	err := r.client.From(withdrawalTable).Select("*").Eq("user_id", userID).Order("created_at", false).ExecuteInto(ctx, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "list withdrawal requests")
	}
	return toDomainWithdrawals(rows), nil
}
