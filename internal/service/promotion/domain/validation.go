package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation 是 validate_promo_code 的结果：Valid 或 Invalid 二选一
type Validation interface {
	isValidation()
}

// Valid 表示优惠码可用
type Valid struct {
	DiscountPercentage int
	PromoCodeID        string
}

// Invalid 表示优惠码不可用，Reason 是服务端给出的原因
type Invalid struct {
	Reason string
}

func (Valid) isValidation()   {}
func (Invalid) isValidation() {}

const defaultInvalidReason = "Invalid promo code"

type validationPayload struct {
	Valid              *bool            `json:"valid"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	PromoCodeID        *string          `json:"promo_code_id"`
	Message            string           `json:"message"`
}

// DecodeValidation 在边界处把 RPC 返回的 JSON 解析成判别联合，字段不全的结果直接拒绝。
// 存储过程以表形式返回时结果是单元素数组，这里一并兼容。
func DecodeValidation(raw []byte) (Validation, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var rows []json.RawMessage
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedValidation, err)
		}
		if len(rows) != 1 {
			return nil, fmt.Errorf("%w: expected one row, got %d", ErrMalformedValidation, len(rows))
		}
		raw = rows[0]
	}

	var p validationPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedValidation, err)
	}
	if p.Valid == nil {
		return nil, fmt.Errorf("%w: missing valid flag", ErrMalformedValidation)
	}
	if !*p.Valid {
		reason := p.Message
		if reason == "" {
			reason = defaultInvalidReason
		}
		return Invalid{Reason: reason}, nil
	}

	if p.PromoCodeID == nil || *p.PromoCodeID == "" {
		return nil, fmt.Errorf("%w: missing promo_code_id", ErrMalformedValidation)
	}
	if p.DiscountPercentage == nil || !p.DiscountPercentage.IsInteger() {
		return nil, fmt.Errorf("%w: missing or fractional discount_percentage", ErrMalformedValidation)
	}
	pct := p.DiscountPercentage.IntPart()
	if pct < 0 || pct > 100 {
		return nil, fmt.Errorf("%w: discount_percentage %d out of range", ErrMalformedValidation, pct)
	}
	return Valid{DiscountPercentage: int(pct), PromoCodeID: *p.PromoCodeID}, nil
}
