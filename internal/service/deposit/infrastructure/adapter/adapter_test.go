package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"fundgate/internal/pkg/appctx"
	"fundgate/internal/pkg/events"
	"fundgate/internal/pkg/supabase"
	"fundgate/internal/service/deposit/domain"
	"fundgate/internal/service/deposit/domain/port"
	promoApp "fundgate/internal/service/promotion/application"
	promoDomain "fundgate/internal/service/promotion/domain"

	"github.com/go-zookeeper/zk"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageAdapterMapsMissingBucket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/deposit-proofs/") {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"statusCode":"404","error":"Bucket not found","message":"Bucket not found"}`))
			return
		}
		w.Write([]byte(`{"Key":"payment-proofs/u/p.png"}`))
	}))
	defer srv.Close()
	client, err := supabase.New(supabase.Config{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)
	a := NewSupabaseStorageAdapter(client)

	_, err = a.Upload(context.Background(), "deposit-proofs", "u/p.png", []byte("x"), "image/png")
	assert.ErrorIs(t, err, port.ErrBucketNotFound)

	url, err := a.Upload(context.Background(), "payment-proofs", "u/p.png", []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/payment-proofs/u/p.png", url)
}

type capturePublisher struct {
	got []events.Envelope
	err error
}

func (c *capturePublisher) Publish(ctx context.Context, e events.Envelope) error {
	c.got = append(c.got, e)
	return c.err
}

func TestNotificationAdapterBuildsMessages(t *testing.T) {
	pub := &capturePublisher{}
	a := NewNotificationKafkaAdapter(pub)
	at := time.Now()

	ev := domain.DepositEvent{Type: domain.EventDepositRejected, RequestID: "d-1", UserID: "user-1", Amount: decimal.NewFromInt(5000), Reason: "blurry", OccurredAt: at}
	require.NoError(t, a.PublishDepositEvent(context.Background(), ev))

	ev.Type, ev.Reason, ev.Subscription = domain.EventDepositApproved, "", true
	require.NoError(t, a.PublishDepositEvent(context.Background(), ev))

	require.Len(t, pub.got, 2)
	assert.Equal(t, "Your deposit of 5000.00 was rejected: blurry", pub.got[0].Message)
	assert.Equal(t, "blurry", pub.got[0].Data["reason"])
	assert.Contains(t, pub.got[1].Message, "subscription")
	assert.Equal(t, "user-1", pub.got[1].UserID)

	ev.Type = "deposit.unknown"
	assert.Error(t, a.PublishDepositEvent(context.Background(), ev))
}

type stubPublisher struct {
	calls int
	err   error
}

func (s *stubPublisher) PublishDepositEvent(ctx context.Context, e domain.DepositEvent) error {
	s.calls++
	return s.err
}

func TestFanoutCallsEveryPublisher(t *testing.T) {
	failing := &stubPublisher{err: errors.New("kafka down")}
	ok := &stubPublisher{}
	err := FanoutPublisher{failing, ok}.PublishDepositEvent(context.Background(), domain.DepositEvent{})
	assert.Error(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
}

// zkConn 是内存版的节点树
type zkConn struct {
	mu    sync.Mutex
	nodes map[string]bool
	seq   int
}

func (f *zkConn) Exists(path string) (bool, *zk.Stat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nodes[path], &zk.Stat{}, nil
}

func (f *zkConn) Create(path string, data []byte, flags int32, acl []zk.ACL) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes[path] = true
	return path, nil
}

func (f *zkConn) CreateProtectedEphemeralSequential(path string, data []byte, acl []zk.ACL) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	node := fmt.Sprintf("%s%010d", path, f.seq)
	f.seq++
	f.nodes[node] = true
	return node, nil
}

func (f *zkConn) Children(path string) ([]string, *zk.Stat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for node := range f.nodes {
		rest := strings.TrimPrefix(node, path+"/")
		if rest != node && !strings.Contains(rest, "/") {
			out = append(out, rest)
		}
	}
	return out, &zk.Stat{}, nil
}

func (f *zkConn) Delete(path string, version int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.nodes, path)
	return nil
}

func TestZookeeperGuardIsExclusivePerRequest(t *testing.T) {
	guard := NewZookeeperReviewGuardAdapter(&zkConn{nodes: map[string]bool{}})
	ctx := context.Background()

	release, ok, err := guard.Acquire(ctx, "d-1")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = guard.Acquire(ctx, "d-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = guard.Acquire(ctx, "d-2")
	require.NoError(t, err)
	assert.True(t, ok)

	release(ctx)
	_, ok, err = guard.Acquire(ctx, "d-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

type fakeUsage struct {
	quote    *promoApp.Quote
	quoteErr error
	sessions []string
	recorded []string
	deleted  []string
	bumped   []string
}

func (f *fakeUsage) Validate(_ context.Context, session *appctx.Session, req *promoApp.ValidatePromoRequest) (*promoApp.Quote, error) {
	f.sessions = append(f.sessions, session.UserID+"|"+req.Code+"|"+req.PlanType+"|"+req.BillingCycle)
	return f.quote, f.quoteErr
}

func (f *fakeUsage) RecordUse(_ context.Context, userID, promoCodeID string, discount decimal.Decimal, planType string) (string, error) {
	f.recorded = append(f.recorded, fmt.Sprintf("%s|%s|%s|%s", userID, promoCodeID, discount.StringFixed(2), planType))
	return "use-1", nil
}

func (f *fakeUsage) DeleteUse(_ context.Context, useID string) error {
	f.deleted = append(f.deleted, useID)
	return nil
}

func (f *fakeUsage) IncrementUsage(_ context.Context, promoCodeID string) error {
	f.bumped = append(f.bumped, promoCodeID)
	return nil
}

func TestPromotionAdapterDelegates(t *testing.T) {
	usage := &fakeUsage{}
	a := NewPromotionAdapter(usage)
	ctx := context.Background()

	id, err := a.RecordUse(ctx, "user-1", port.AppliedPromo{
		PromoCodeID:    "promo-1",
		Code:           "SAVE20",
		DiscountAmount: decimal.NewFromInt(1000),
		PlanType:       "premium",
	})
	require.NoError(t, err)
	assert.Equal(t, "use-1", id)
	require.NoError(t, a.IncrementUsage(ctx, "promo-1"))
	require.NoError(t, a.DeleteUse(ctx, id))

	assert.Equal(t, []string{"user-1|promo-1|1000.00|premium"}, usage.recorded)
	assert.Equal(t, []string{"promo-1"}, usage.bumped)
	assert.Equal(t, []string{"use-1"}, usage.deleted)
}

func TestPromotionAdapterQuoteUsesServerDiscount(t *testing.T) {
	usage := &fakeUsage{quote: &promoApp.Quote{
		PromoCodeID:    "promo-1",
		Code:           "SAVE20",
		PlanType:       "premium",
		DiscountAmount: "12000.00",
		Applied:        true,
	}}
	a := NewPromotionAdapter(usage)

	got, err := a.Quote(context.Background(), "user-1", port.PromoRequest{Code: "save20", PlanType: "premium", BillingCycle: "annual"})
	require.NoError(t, err)
	assert.Equal(t, "promo-1", got.PromoCodeID)
	assert.Equal(t, "12000", got.DiscountAmount.String())
	assert.True(t, got.Applied)
	assert.Equal(t, []string{"user-1|save20|premium|annual"}, usage.sessions)
}

func TestPromotionAdapterQuoteMapsRejections(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		rejected bool
	}{
		{"inactive", &promoDomain.RejectedError{Reason: "This promo code is no longer active"}, true},
		{"expired", &promoDomain.RejectedError{Reason: "This promo code has expired"}, true},
		{"empty", promoDomain.ErrEmptyCode, true},
		{"unknown plan", promoDomain.ErrUnknownPlan, true},
		{"transport", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := NewPromotionAdapter(&fakeUsage{quoteErr: tc.err})
			_, err := a.Quote(context.Background(), "user-1", port.PromoRequest{Code: "X"})
			require.Error(t, err)
			assert.Equal(t, tc.rejected, errors.Is(err, domain.ErrPromoRejected))
			assert.Contains(t, err.Error(), tc.err.Error())
		})
	}
}
