package adapter

import (
	"context"
	"testing"
	"time"

	"fundgate/internal/pkg/events"
	"fundgate/internal/service/wallet/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	got []events.Envelope
}

func (c *capturePublisher) Publish(_ context.Context, e events.Envelope) error {
	c.got = append(c.got, e)
	return nil
}

func TestWithdrawalNotification(t *testing.T) {
	pub := &capturePublisher{}
	a := NewNotificationKafkaAdapter(pub)

	w := domain.WithdrawalRequest{
		ID: "w-1", UserID: "user-1", WalletType: domain.GFEWallet,
		Amount: decimal.NewFromInt(8500), Gross: decimal.NewFromInt(10000), Fee: decimal.NewFromInt(1500),
		Bank: domain.BankDetails{BankName: "First Bank"},
	}
	err := a.PublishWithdrawalEvent(context.Background(), domain.WithdrawalEvent{Type: domain.EventWithdrawalRequested, Withdrawal: w, OccurredAt: time.Now()})
	require.NoError(t, err)

	require.Len(t, pub.got, 1)
	e := pub.got[0]
	assert.Equal(t, "user-1", e.UserID)
	assert.Equal(t, domain.EventWithdrawalRequested, e.Type)
	assert.Equal(t, "Your withdrawal of 10000.00 (fee 1500.00) to First Bank is being processed. You will receive 8500.00.", e.Message)
	assert.Equal(t, "gfe_wallet", e.Data["wallet_type"])

	assert.Error(t, a.PublishWithdrawalEvent(context.Background(), domain.WithdrawalEvent{Type: "withdrawal.paid"}))
}
