package domain

import "time"

// ExpiryOffset 是创建优惠码时可选的有效期
type ExpiryOffset string

const (
	Expiry1Hour   ExpiryOffset = "1h"
	Expiry24Hours ExpiryOffset = "24h"
	Expiry72Hours ExpiryOffset = "72h"
	Expiry1Week   ExpiryOffset = "1w"
	Expiry30Days  ExpiryOffset = "30d"
	ExpiryNever   ExpiryOffset = "never"
)

var expiryDurations = map[ExpiryOffset]time.Duration{
	Expiry1Hour:   time.Hour,
	Expiry24Hours: 24 * time.Hour,
	Expiry72Hours: 72 * time.Hour,
	Expiry1Week:   7 * 24 * time.Hour,
	Expiry30Days:  30 * 24 * time.Hour,
}

// Valid 是否是枚举中的值
func (o ExpiryOffset) Valid() bool {
	if o == ExpiryNever {
		return true
	}
	_, ok := expiryDurations[o]
	return ok
}

// ExpiresAt 返回 now + offset，never 返回 nil
func (o ExpiryOffset) ExpiresAt(now time.Time) *time.Time {
	d, ok := expiryDurations[o]
	if !ok {
		return nil
	}
	at := now.Add(d)
	return &at
}
