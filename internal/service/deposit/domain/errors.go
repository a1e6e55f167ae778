package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount         = errors.New("amount must be a positive number")
	ErrDepositNotFound       = errors.New("deposit request not found")
	ErrNotPending            = errors.New("deposit request has already been processed")
	ErrRejectReasonRequired  = errors.New("a reason is required to reject a deposit")
	ErrReviewInProgress      = errors.New("deposit request is being reviewed by another action")
	ErrUploadFailed          = errors.New("failed to upload proof of payment")
	ErrPromoRedemptionFailed = errors.New("failed to redeem promo code")
	ErrPromoRejected         = errors.New("promo code rejected")
)

// MissingFieldError 表示某个必填字段缺失
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// ErrMissingField 作为 errors.Is 的判定目标
var ErrMissingField = errors.New("missing required field")

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

func missing(field string) error {
	return &MissingFieldError{Field: field}
}
