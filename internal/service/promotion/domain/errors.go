package domain

import "errors"

var (
	ErrCampaignNameRequired = errors.New("campaign name is required")
	ErrDiscountOutOfRange   = errors.New("discount percentage must be between 1 and 100")
	ErrInvalidMaxUses       = errors.New("max uses must be at least 1")
	ErrInvalidExpiry        = errors.New("expiry must be one of 1h, 24h, 72h, 1w, 30d, never")
	ErrEmptyCode            = errors.New("promo code is required")
	ErrPromoNotFound        = errors.New("promo code not found")
	ErrDuplicateCode        = errors.New("promo code already exists")
	ErrPromoExhausted       = errors.New("promo code can no longer be redeemed")
	ErrUnknownPlan          = errors.New("unknown plan or billing cycle")
	ErrMalformedValidation  = errors.New("malformed promo validation result")
	ErrPromoRejected        = errors.New("promo code rejected")
)

// RejectedError 携带服务端返回的拒绝原因，Error() 原样返回该原因
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrPromoRejected
}
