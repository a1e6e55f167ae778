package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fundgate/internal/pkg/supabase"
	"fundgate/internal/service/wallet/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

var details = domain.BankDetails{BankName: "First Bank", AccountNumber: "0123456789", AccountName: "Ada Obi"}

func TestGormSaveBankDetailsRefusesLockedWallet(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET .* WHERE user_id = \\? AND bank_details_locked = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `wallets`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := NewGormWalletRepository(db).SaveBankDetails(context.Background(), "user-1", details, time.Now())
	assert.ErrorIs(t, err, domain.ErrBankDetailsLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSaveBankDetailsCreatesMissingWallet(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `wallets`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `wallets`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := NewGormWalletRepository(db).SaveBankDetails(context.Background(), "user-1", details, time.Now())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormFindByUserWithoutWallet(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `wallets` WHERE user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "balance"}))

	w, err := NewGormWalletRepository(db).FindByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", w.UserID)
	assert.True(t, w.Balance.IsZero())
}

func TestGormCreateWithdrawalStoresGrossAndFee(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO `withdrawal_requests` .*`gross_amount`.*`fee_rate`.*`fee_amount`").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := &domain.WithdrawalRequest{
		ID: "w-1", UserID: "user-1", WalletType: domain.UserWallet,
		Amount: decimal.NewFromInt(9000), Gross: decimal.NewFromInt(10000),
		FeeRate: decimal.RequireFromString("0.10"), Fee: decimal.NewFromInt(1000),
		Status: domain.StatusPending, Bank: details, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, NewGormWithdrawalRepository(db).Create(context.Background(), w))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSupabaseWalletRepository(t *testing.T) {
	var inserted map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("user_id") == "eq.user-1" {
				w.Write([]byte(`[{"user_id":"user-1","balance":"20000.00","points":"120","gfe_wallet_balance":"0","bank_name":"First Bank","account_number":"0123456789","account_name":"Ada Obi","bank_details_locked":true}]`))
				return
			}
			w.Write([]byte(`[]`))
		case http.MethodPatch:
			assert.Equal(t, "is.false", r.URL.Query().Get("bank_details_locked"))
			w.Write([]byte(`[]`))
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&inserted))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()
	client, err := supabase.New(supabase.Config{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)
	repo := NewSupabaseWalletRepository(client)
	ctx := context.Background()

	w, err := repo.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "20000", w.Balance.String())
	assert.True(t, w.HasBankDetails())
	assert.True(t, w.BankDetailsLocked)

	// 已锁定的钱包不会被覆盖
	assert.ErrorIs(t, repo.SaveBankDetails(ctx, "user-1", details, time.Now()), domain.ErrBankDetailsLocked)

	// 没有钱包行时新建
	require.NoError(t, repo.SaveBankDetails(ctx, "user-2", details, time.Now()))
	assert.Equal(t, "user-2", inserted["user_id"])
	assert.Equal(t, "First Bank", inserted["bank_name"])
}
