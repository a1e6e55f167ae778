package infrastructure

import (
	"fundgate/internal/service/deposit/domain"
)

// ToDomainDeposit 将数据库模型转换为领域模型
func ToDomainDeposit(m *DepositRequestModel) *domain.DepositRequest {
	if m == nil {
		return nil
	}
	return &domain.DepositRequest{
		ID:              m.ID,
		UserID:          m.UserID,
		Amount:          m.Amount,
		BankName:        m.BankName,
		AccountNumber:   deref(m.AccountNumber),
		DepositorName:   m.DepositorName,
		ReferenceNumber: deref(m.ReferenceNumber),
		ProofURL:        m.ProofURL,
		UserNotes:       deref(m.UserNotes),
		AdminNotes:      deref(m.AdminNotes),
		Narration:       deref(m.Narration),
		Status:          domain.Status(m.Status),
		CreatedAt:       m.CreatedAt,
		ProcessedAt:     m.ProcessedAt,
		ProcessedBy:     deref(m.ProcessedBy),
	}
}

// FromDomainDeposit 将领域模型转换为数据库模型，可选字段为空时写入 NULL
func FromDomainDeposit(d *domain.DepositRequest) *DepositRequestModel {
	if d == nil {
		return nil
	}
	return &DepositRequestModel{
		ID:              d.ID,
		UserID:          d.UserID,
		Amount:          d.Amount,
		BankName:        d.BankName,
		AccountNumber:   nullable(d.AccountNumber),
		DepositorName:   d.DepositorName,
		ReferenceNumber: nullable(d.ReferenceNumber),
		ProofURL:        d.ProofURL,
		UserNotes:       nullable(d.UserNotes),
		AdminNotes:      nullable(d.AdminNotes),
		Narration:       nullable(d.Narration),
		Status:          string(d.Status),
		CreatedAt:       d.CreatedAt,
		ProcessedAt:     d.ProcessedAt,
		ProcessedBy:     nullable(d.ProcessedBy),
	}
}

func toDomainDeposits(models []DepositRequestModel) []*domain.DepositRequest {
	out := make([]*domain.DepositRequest, len(models))
	for i := range models {
		out[i] = ToDomainDeposit(&models[i])
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
