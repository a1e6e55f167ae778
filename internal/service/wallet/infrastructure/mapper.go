package infrastructure

import (
	"fundgate/internal/service/wallet/domain"
)

func ToDomainWallet(m *WalletModel) *domain.Wallet {
	return &domain.Wallet{
		UserID:           m.UserID,
		Balance:          m.Balance,
		Points:           m.Points,
		EducatorEarnings: m.EducatorEarnings,
		Bank: domain.BankDetails{
			BankName:      deref(m.BankName),
			AccountNumber: deref(m.AccountNumber),
			AccountName:   deref(m.AccountName),
		},
		BankDetailsLocked: m.BankDetailsLocked,
		UpdatedAt:         m.UpdatedAt,
	}
}

func ToDomainWithdrawal(m *WithdrawalRequestModel) *domain.WithdrawalRequest {
	return &domain.WithdrawalRequest{
		ID:         m.ID,
		UserID:     m.UserID,
		WalletType: domain.WalletType(m.WalletType),
		Amount:     m.Amount,
		Gross:      m.GrossAmount,
		FeeRate:    m.FeeRate,
		Fee:        m.FeeAmount,
		Status:     m.Status,
		Bank: domain.BankDetails{
			BankName:      m.BankName,
			AccountNumber: m.AccountNumber,
			AccountName:   m.AccountName,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func FromDomainWithdrawal(w *domain.WithdrawalRequest) *WithdrawalRequestModel {
	return &WithdrawalRequestModel{
		ID:            w.ID,
		UserID:        w.UserID,
		WalletType:    string(w.WalletType),
		Amount:        w.Amount,
		GrossAmount:   w.Gross,
		FeeRate:       w.FeeRate,
		FeeAmount:     w.Fee,
		Status:        w.Status,
		BankName:      w.Bank.BankName,
		AccountNumber: w.Bank.AccountNumber,
		AccountName:   w.Bank.AccountName,
		CreatedAt:     w.CreatedAt.UTC(),
		UpdatedAt:     w.UpdatedAt.UTC(),
	}
}

func toDomainWithdrawals(models []WithdrawalRequestModel) []*domain.WithdrawalRequest {
	out := make([]*domain.WithdrawalRequest, 0, len(models))
	for i := range models {
		out = append(out, ToDomainWithdrawal(&models[i]))
	}
	return out
}

func bankFields(details domain.BankDetails) map[string]interface{} {
	return map[string]interface{}{
		"bank_name":      details.BankName,
		"account_number": details.AccountNumber,
		"account_name":   details.AccountName,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
