package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func promo(active bool, expiresAt *time.Time, used, maxUses int) *PromoCode {
	return &PromoCode{ID: "promo-1", Code: "SAVE20", DiscountPercentage: 20, MaxUses: maxUses, UsedCount: used, ExpiresAt: expiresAt, IsActive: active, PlanType: PlanAll}
}

func TestEffectiveStatusPrecedence(t *testing.T) {
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		p    *PromoCode
		want Status
	}{
		{"inactive wins over everything", promo(false, &past, 5, 5), StatusInactive},
		{"expired wins over used up", promo(true, &past, 5, 5), StatusExpired},
		{"used up", promo(true, &future, 5, 5), StatusUsedUp},
		{"active", promo(true, &future, 4, 5), StatusActive},
		{"expires exactly now", promo(true, &now, 0, 5), StatusExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.p.EffectiveStatus(now))
		})
	}
}

func TestCheckRejectsOnceUsageLimitReached(t *testing.T) {
	p := promo(true, nil, 1, 2)
	assert.Equal(t, Valid{DiscountPercentage: 20, PromoCodeID: "promo-1"}, p.Check(now, "premium", false))

	p.UsedCount = 2
	got := p.Check(now, "premium", false)
	require.IsType(t, Invalid{}, got)
	assert.Contains(t, got.(Invalid).Reason, "usage limit")
}

func TestCheckPlanAndRepeatUse(t *testing.T) {
	p := promo(true, nil, 0, 10)
	p.PlanType = "premium"

	assert.IsType(t, Invalid{}, p.Check(now, "exclusive", false))
	assert.IsType(t, Valid{}, p.Check(now, "PREMIUM", false))
	assert.Equal(t, Invalid{Reason: "You have already used this promo code"}, p.Check(now, "premium", true))
}

func TestNeverExpiringCode(t *testing.T) {
	in := IssueInput{CampaignName: "Launch", DiscountPercentage: 50, MaxUses: 3, Expiry: ExpiryNever}
	p, err := NewPromoCode("promo-1", " launch50 ", "admin-1", in, now)
	require.NoError(t, err)

	assert.Equal(t, "LAUNCH50", p.Code)
	assert.Equal(t, PlanAll, p.PlanType)
	assert.Nil(t, p.ExpiresAt)
	assert.Equal(t, "Never", p.ExpiryLabel())
	assert.Equal(t, StatusActive, p.EffectiveStatus(now.AddDate(50, 0, 0)))
}

func TestExpiryOffsets(t *testing.T) {
	cases := map[ExpiryOffset]time.Duration{
		Expiry1Hour:   time.Hour,
		Expiry24Hours: 24 * time.Hour,
		Expiry72Hours: 72 * time.Hour,
		Expiry1Week:   168 * time.Hour,
		Expiry30Days:  720 * time.Hour,
	}
	for offset, d := range cases {
		at := offset.ExpiresAt(now)
		require.NotNil(t, at, offset)
		assert.Equal(t, now.Add(d), *at)
	}
	assert.False(t, ExpiryOffset("2w").Valid())
}

func TestIssueInputValidation(t *testing.T) {
	base := IssueInput{CampaignName: "Launch", DiscountPercentage: 10, MaxUses: 1, Expiry: Expiry24Hours}
	require.NoError(t, base.Validate())

	cases := []struct {
		mutate func(*IssueInput)
		want   error
	}{
		{func(in *IssueInput) { in.CampaignName = "  " }, ErrCampaignNameRequired},
		{func(in *IssueInput) { in.DiscountPercentage = 0 }, ErrDiscountOutOfRange},
		{func(in *IssueInput) { in.DiscountPercentage = 101 }, ErrDiscountOutOfRange},
		{func(in *IssueInput) { in.MaxUses = 0 }, ErrInvalidMaxUses},
		{func(in *IssueInput) { in.Expiry = "" }, ErrInvalidExpiry},
	}
	for _, tc := range cases {
		in := base
		tc.mutate(&in)
		assert.ErrorIs(t, in.Validate(), tc.want)
	}
}

func TestDiscountedPrice(t *testing.T) {
	price := decimal.NewFromInt(12000)
	assert.Equal(t, "12000.00", DiscountedPrice(price, 0).StringFixed(2))
	assert.Equal(t, "9600.00", DiscountedPrice(price, 20).StringFixed(2))
	assert.Equal(t, "0.00", DiscountedPrice(price, 100).StringFixed(2))
	assert.Equal(t, "0.00", DiscountedPrice(price, 150).StringFixed(2))
}

func TestPriceBook(t *testing.T) {
	book, err := NewPriceBook(map[string]map[string]string{"Premium": {"Annual": "50000", "monthly": "5000"}})
	require.NoError(t, err)

	price, err := book.Price("premium", "ANNUAL")
	require.NoError(t, err)
	assert.Equal(t, "50000", price.String())

	_, err = book.Price("exclusive", "annual")
	assert.ErrorIs(t, err, ErrUnknownPlan)

	_, err = NewPriceBook(map[string]map[string]string{"premium": {"annual": "-1"}})
	assert.Error(t, err)
}

func TestDecodeValidation(t *testing.T) {
	v, err := DecodeValidation([]byte(`{"valid":true,"discount_percentage":20,"promo_code_id":"promo-1"}`))
	require.NoError(t, err)
	assert.Equal(t, Valid{DiscountPercentage: 20, PromoCodeID: "promo-1"}, v)

	v, err = DecodeValidation([]byte(` [{"valid":false,"message":"This promo code has expired"}]`))
	require.NoError(t, err)
	assert.Equal(t, Invalid{Reason: "This promo code has expired"}, v)

	v, err = DecodeValidation([]byte(`{"valid":false}`))
	require.NoError(t, err)
	assert.Equal(t, Invalid{Reason: defaultInvalidReason}, v)

	malformed := []string{
		`{"discount_percentage":20,"promo_code_id":"promo-1"}`,
		`{"valid":true,"discount_percentage":20}`,
		`{"valid":true,"discount_percentage":12.5,"promo_code_id":"promo-1"}`,
		`{"valid":true,"discount_percentage":120,"promo_code_id":"promo-1"}`,
		`[]`,
		`"SAVE20"`,
		`not json`,
	}
	for _, raw := range malformed {
		_, err := DecodeValidation([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedValidation, raw)
	}
}

func TestRejectedErrorCarriesReasonVerbatim(t *testing.T) {
	var err error = &RejectedError{Reason: "This promo code has expired"}
	assert.True(t, errors.Is(err, ErrPromoRejected))
	assert.Equal(t, "This promo code has expired", err.Error())
}
