package domain

import "errors"

var (
	ErrInvalidAmount         = errors.New("amount must be a positive number")
	ErrUnknownWalletType     = errors.New("wallet type must be user_wallet or gfe_wallet")
	ErrBelowMinimum          = errors.New("amount is below the minimum withdrawal")
	ErrInsufficientBalance   = errors.New("amount exceeds the available wallet balance")
	ErrBankDetailsMissing    = errors.New("link a bank account before requesting a withdrawal")
	ErrBankDetailsIncomplete = errors.New("bank name, account number and account name are required")
	ErrBankDetailsLocked     = errors.New("bank details are locked and can no longer be changed")
)
