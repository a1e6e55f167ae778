// internal/service/wallet/application/service.go
package application

import (
	"context"
	"time"

	"fundgate/internal/pkg/appctx"
	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/metrics"
	"fundgate/internal/service/wallet/domain"
	"fundgate/internal/service/wallet/domain/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// WalletService 编排钱包查询、收款账户绑定与提现申请
type WalletService struct {
	wallets     domain.WalletRepository
	withdrawals domain.WithdrawalRepository
	events      port.EventPublisher
	tracer      trace.Tracer
	now         func() time.Time
}

func NewWalletService(wallets domain.WalletRepository, withdrawals domain.WithdrawalRepository, events port.EventPublisher, tracer trace.Tracer) *WalletService {
	return &WalletService{wallets: wallets, withdrawals: withdrawals, events: events, tracer: tracer, now: time.Now}
}

// GetWallet 返回当前用户的钱包与其手续费率
func (s *WalletService) GetWallet(ctx context.Context, session *appctx.Session) (*WalletView, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetWallet")
	defer span.End()

	if err := appctx.RequireUser(session); err != nil {
		return nil, err
	}
	w, err := s.wallets.FindByUser(ctx, session.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toWalletView(w, session.Tier()), nil
}

// QuoteWithdrawal 预览一笔提现，与真正提交时使用同样的校验
func (s *WalletService) QuoteWithdrawal(ctx context.Context, session *appctx.Session, req *WithdrawRequest) (*QuoteView, error) {
	ctx, span := s.tracer.Start(ctx, "app.QuoteWithdrawal")
	defer span.End()

	w, walletType, amount, err := s.prepare(ctx, session, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := domain.CheckWithdrawal(w, walletType, amount); err != nil {
		return nil, err
	}
	balance, _ := w.BalanceFor(walletType)
	return toQuoteView(domain.QuoteWithdrawal(walletType, amount, session.Tier()), balance.StringFixed(2)), nil
}

// RequestWithdrawal 创建提现申请。余额扣减由后台处理，这里只校验并记录。
func (s *WalletService) RequestWithdrawal(ctx context.Context, session *appctx.Session, req *WithdrawRequest) (view *WithdrawalView, err error) {
	ctx, span := s.tracer.Start(ctx, "app.RequestWithdrawal")
	defer span.End()

	walletLabel := "unknown"
	defer func() { metrics.WithdrawalsRequested.WithLabelValues(walletLabel, metrics.Result(err)).Inc() }()

	w, walletType, amount, err := s.prepare(ctx, session, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	walletLabel = string(walletType)
	span.SetAttributes(attribute.String("user.id", session.UserID), attribute.String("wallet.type", walletLabel))

	withdrawal, _, err := domain.NewWithdrawalRequest(w, walletType, amount, session.Tier(), s.now())
	if err != nil {
		span.SetStatus(codes.Error, "Withdrawal rejected")
		return nil, err
	}
	if err := s.withdrawals.Create(ctx, withdrawal); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save withdrawal request")
		return nil, err
	}

	// 通知是尽力而为的，失败只记录日志
	event := domain.WithdrawalEvent{Type: domain.EventWithdrawalRequested, Withdrawal: *withdrawal, OccurredAt: withdrawal.CreatedAt}
	if err := s.events.PublishWithdrawalEvent(ctx, event); err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Warn().Err(err).Str("withdrawal", withdrawal.ID).Msg("Failed to publish withdrawal event")
	}

	logger.Ctx(ctx).Info().
		Str("withdrawal", withdrawal.ID).
		Str("gross", withdrawal.Gross.String()).
		Str("net", withdrawal.Amount.String()).
		Msg("✅ Withdrawal requested")
	return ToWithdrawalView(withdrawal), nil
}

func (s *WalletService) prepare(ctx context.Context, session *appctx.Session, req *WithdrawRequest) (*domain.Wallet, domain.WalletType, decimal.Decimal, error) {
	if err := appctx.RequireUser(session); err != nil {
		return nil, "", decimal.Zero, err
	}
	walletType, err := domain.ParseWalletType(req.WalletType)
	if err != nil {
		return nil, "", decimal.Zero, err
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return nil, "", decimal.Zero, err
	}
	w, err := s.wallets.FindByUser(ctx, session.UserID)
	if err != nil {
		return nil, "", decimal.Zero, err
	}
	return w, walletType, amount, nil
}

// ListWithdrawals 返回当前用户的提现记录，最新的在前
func (s *WalletService) ListWithdrawals(ctx context.Context, session *appctx.Session) ([]*WithdrawalView, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListWithdrawals")
	defer span.End()

	if err := appctx.RequireUser(session); err != nil {
		return nil, err
	}
	list, err := s.withdrawals.ListByUser(ctx, session.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	views := make([]*WithdrawalView, 0, len(list))
	for _, w := range list {
		views = append(views, ToWithdrawalView(w))
	}
	return views, nil
}

// UpdateBankDetails 绑定或修改收款账户，锁定后拒绝修改
func (s *WalletService) UpdateBankDetails(ctx context.Context, session *appctx.Session, req *BankDetailsRequest) (*WalletView, error) {
	ctx, span := s.tracer.Start(ctx, "app.UpdateBankDetails")
	defer span.End()

	if err := appctx.RequireUser(session); err != nil {
		return nil, err
	}
	w, err := s.wallets.FindByUser(ctx, session.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	now := s.now()
	details := domain.BankDetails{BankName: req.BankName, AccountNumber: req.AccountNumber, AccountName: req.AccountName}
	if err := w.UpdateBankDetails(details, now); err != nil {
		return nil, err
	}
	if err := s.wallets.SaveBankDetails(ctx, session.UserID, w.Bank, now); err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("user", session.UserID).Msg("✅ Bank details updated")
	return toWalletView(w, session.Tier()), nil
}
