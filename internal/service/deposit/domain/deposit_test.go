package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() Submission {
	return Submission{
		Amount:        "5000",
		BankName:      "First Bank",
		DepositorName: "Ada Obi",
		ProofFilename: "receipt.png",
		ProofSize:     128,
		Narration:     "Premium subscription - annual",
	}
}

func TestParseAmount(t *testing.T) {
	for _, raw := range []string{"", "abc", "0", "-10", "1e", "NaN"} {
		_, err := ParseAmount(raw)
		assert.ErrorIs(t, err, ErrInvalidAmount, raw)
	}
	amount, err := ParseAmount(" 2500.50 ")
	require.NoError(t, err)
	assert.Equal(t, "2500.5", amount.String())
}

func TestSubmissionValidateRequiresFields(t *testing.T) {
	cases := map[string]func(*Submission){
		"bank_name":        func(s *Submission) { s.BankName = "  " },
		"depositor_name":   func(s *Submission) { s.DepositorName = "" },
		"proof_of_payment": func(s *Submission) { s.ProofSize = 0 },
	}
	for field, mutate := range cases {
		s := validSubmission()
		mutate(&s)
		_, err := s.Validate()
		require.ErrorIs(t, err, ErrMissingField, field)

		var mf *MissingFieldError
		require.ErrorAs(t, err, &mf)
		assert.Equal(t, field, mf.Field)
	}

	s := validSubmission()
	s.AccountNumber, s.ReferenceNumber = "", ""
	_, err := s.Validate()
	assert.NoError(t, err)
}

func TestNewDepositRequestStartsPending(t *testing.T) {
	now := time.Now()
	d, err := NewDepositRequest("user-1", validSubmission(), "https://cdn/proof.png", now)
	require.NoError(t, err)

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, StatusPending, d.Status)
	assert.Nil(t, d.ProcessedAt)
	assert.Equal(t, []Action{ActionApprove, ActionReject}, d.AvailableActions())

	_, err = NewDepositRequest("user-1", validSubmission(), "", now)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestRejectKeepsUserNotes(t *testing.T) {
	at := time.Now()
	sub := validSubmission()
	sub.Notes = "  paid from my joint account  "
	d, err := NewDepositRequest("user-1", sub, "https://cdn/proof.png", at)
	require.NoError(t, err)
	assert.Equal(t, "paid from my joint account", d.UserNotes)
	assert.Empty(t, d.AdminNotes)

	require.NoError(t, d.Reject("admin-1", "amount mismatch", at))
	assert.Equal(t, "paid from my joint account", d.UserNotes)
	assert.Equal(t, "amount mismatch", d.AdminNotes)
}

func TestTerminalStatesNeverChange(t *testing.T) {
	at := time.Now()
	d, err := NewDepositRequest("user-1", validSubmission(), "https://cdn/proof.png", at)
	require.NoError(t, err)

	require.NoError(t, d.Approve("admin-1", at))
	assert.Equal(t, StatusApproved, d.Status)
	require.NotNil(t, d.ProcessedAt)
	assert.Equal(t, "admin-1", d.ProcessedBy)
	assert.Empty(t, d.AvailableActions())

	assert.ErrorIs(t, d.Approve("admin-2", at), ErrNotPending)
	assert.ErrorIs(t, d.Reject("admin-2", "dup", at), ErrNotPending)
	assert.ErrorIs(t, d.Void("late", at), ErrNotPending)
	assert.Equal(t, StatusApproved, d.Status)
	assert.Equal(t, "admin-1", d.ProcessedBy)
}

func TestRejectRequiresReason(t *testing.T) {
	at := time.Now()
	d, err := NewDepositRequest("user-1", validSubmission(), "https://cdn/proof.png", at)
	require.NoError(t, err)

	assert.False(t, CanReject("   "))
	assert.ErrorIs(t, d.Reject("admin-1", "  ", at), ErrRejectReasonRequired)
	assert.Equal(t, StatusPending, d.Status)

	require.NoError(t, d.Reject("admin-1", "blurry receipt", at))
	assert.Equal(t, StatusRejected, d.Status)
	assert.Equal(t, "blurry receipt", d.AdminNotes)
}

func TestSubscriptionNarration(t *testing.T) {
	d := &DepositRequest{Narration: "Premium subscription - annual"}
	assert.True(t, d.IsSubscription())
	tier, cycle, ok := d.SubscriptionPlan()
	require.True(t, ok)
	assert.Equal(t, "premium", tier)
	assert.Equal(t, "annual", cycle)

	d.Narration = "Exclusive Subscription"
	tier, cycle, ok = d.SubscriptionPlan()
	require.True(t, ok)
	assert.Equal(t, "exclusive", tier)
	assert.Equal(t, "monthly", cycle)

	d.Narration = "wallet top-up"
	assert.False(t, d.IsSubscription())
	_, _, ok = d.SubscriptionPlan()
	assert.False(t, ok)
}

func TestEvidenceKindOf(t *testing.T) {
	assert.Equal(t, EvidenceImage, EvidenceKindOf("https://x/u/proof-of-payment_1.JPG"))
	assert.Equal(t, EvidencePDF, EvidenceKindOf("https://x/u/proof-of-payment_1.pdf"))
	assert.Equal(t, EvidenceNone, EvidenceKindOf(""))
	assert.Equal(t, EvidenceNone, EvidenceKindOf("https://x/u/file.docx"))
}

func TestProofPath(t *testing.T) {
	at := time.UnixMilli(1718000000123)
	assert.Equal(t, "user-1/proof-of-payment_1718000000123.pdf", ProofPath("user-1", at, "Receipt.PDF"))
	assert.Equal(t, "user-1/proof-of-payment_1718000000123.bin", ProofPath("user-1", at, "receipt"))
}
