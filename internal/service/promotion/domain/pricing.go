package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountedPrice = max(0, price - price*pct/100)
func DiscountedPrice(price decimal.Decimal, pct int) decimal.Decimal {
	discounted := price.Sub(price.Mul(decimal.NewFromInt(int64(pct))).Div(hundred))
	if discounted.IsNegative() {
		return decimal.Zero
	}
	return discounted
}

// PriceBook 是套餐价格表：plan -> billing cycle -> price
type PriceBook map[string]map[string]decimal.Decimal

// NewPriceBook 从配置里的字符串价格表构造
func NewPriceBook(raw map[string]map[string]string) (PriceBook, error) {
	book := make(PriceBook, len(raw))
	for plan, cycles := range raw {
		book[strings.ToLower(plan)] = make(map[string]decimal.Decimal, len(cycles))
		for cycle, s := range cycles {
			price, err := decimal.NewFromString(s)
			if err != nil || price.IsNegative() {
				return nil, fmt.Errorf("invalid price %q for %s/%s", s, plan, cycle)
			}
			book[strings.ToLower(plan)][strings.ToLower(cycle)] = price
		}
	}
	return book, nil
}

// Price 查询价格
func (b PriceBook) Price(plan, cycle string) (decimal.Decimal, error) {
	price, ok := b[strings.ToLower(plan)][strings.ToLower(cycle)]
	if !ok {
		return decimal.Zero, ErrUnknownPlan
	}
	return price, nil
}

// Checkout 是评估折扣资格时的事实
type Checkout struct {
	PlanType     string          `json:"plan_type"`
	BillingCycle string          `json:"billing_cycle"`
	Price        decimal.Decimal `json:"price"`
}

// EligibilityRule 决定某次结账能否享受折扣
type EligibilityRule interface {
	Applies(c Checkout) (bool, error)
}
