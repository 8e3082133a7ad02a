package util

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// 金额上限：一千万
var maxAmount = decimal.NewFromInt(10_000_000)

// ParseAmountCent 把请求里的金额字符串解析为分。
// 要求：正数、最多两位小数、不超过上限。
func ParseAmountCent(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("amount must be positive, got %s", s)
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return 0, fmt.Errorf("amount too large, got %s", s)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("amount must have at most 2 decimal places, got %s", s)
	}
	return d.Shift(2).IntPart(), nil
}

// FormatCent 把分转成两位小数的金额字符串。
func FormatCent(cent int64) string {
	return decimal.New(cent, -2).StringFixed(2)
}
