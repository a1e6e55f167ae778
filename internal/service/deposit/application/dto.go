// internal/service/deposit/application/dto.go
package application

import (
	"time"

	"fundgate/internal/service/deposit/application/saga"
	"fundgate/internal/service/deposit/domain"
	"fundgate/internal/service/deposit/domain/port"
)

const (
	UnknownUserName  = "Unknown User"
	UnknownUserEmail = "N/A"
)

// SubmitDepositRequest 是提交充值用例的输入数据
type SubmitDepositRequest struct {
	Amount          string
	BankName        string
	AccountNumber   string
	DepositorName   string
	ReferenceNumber string
	Notes           string
	Narration       string
	Proof           saga.ProofFile
	Promo           *port.PromoRequest // 只携带用户输入，折扣由服务端计算
}

func (r *SubmitDepositRequest) toSubmission() domain.Submission {
	return domain.Submission{
		Amount:          r.Amount,
		BankName:        r.BankName,
		AccountNumber:   r.AccountNumber,
		DepositorName:   r.DepositorName,
		ReferenceNumber: r.ReferenceNumber,
		Notes:           r.Notes,
		Narration:       r.Narration,
		ProofFilename:   r.Proof.Filename,
		ProofSize:       len(r.Proof.Data),
	}
}

// DepositView 是返回给接口层的充值申请
type DepositView struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	UserName        string              `json:"user_name,omitempty"`
	UserEmail       string              `json:"user_email,omitempty"`
	Amount          string              `json:"amount"`
	BankName        string              `json:"bank_name"`
	AccountNumber   string              `json:"account_number,omitempty"`
	DepositorName   string              `json:"depositor_name"`
	ReferenceNumber string              `json:"reference_number,omitempty"`
	ProofURL        string              `json:"proof_of_payment_url"`
	Evidence        domain.EvidenceKind `json:"evidence"`
	Notes           string              `json:"notes,omitempty"`
	AdminNotes      string              `json:"admin_notes,omitempty"`
	Narration       string              `json:"narration,omitempty"`
	Subscription    bool                `json:"is_subscription"`
	Status          domain.Status       `json:"status"`
	Actions         []domain.Action     `json:"available_actions"`
	CreatedAt       time.Time           `json:"created_at"`
	ProcessedAt     *time.Time          `json:"processed_at,omitempty"`
	ProcessedBy     string              `json:"processed_by,omitempty"`
}

// ToDepositView 从领域实体转换为输出 DTO
func ToDepositView(d *domain.DepositRequest) *DepositView {
	actions := d.AvailableActions()
	if actions == nil {
		actions = []domain.Action{}
	}
	return &DepositView{
		ID:              d.ID,
		UserID:          d.UserID,
		Amount:          d.Amount.String(),
		BankName:        d.BankName,
		AccountNumber:   d.AccountNumber,
		DepositorName:   d.DepositorName,
		ReferenceNumber: d.ReferenceNumber,
		ProofURL:        d.ProofURL,
		Evidence:        domain.EvidenceKindOf(d.ProofURL),
		Notes:           d.UserNotes,
		AdminNotes:      d.AdminNotes,
		Narration:       d.Narration,
		Subscription:    d.IsSubscription(),
		Status:          d.Status,
		Actions:         actions,
		CreatedAt:       d.CreatedAt,
		ProcessedAt:     d.ProcessedAt,
		ProcessedBy:     d.ProcessedBy,
	}
}
