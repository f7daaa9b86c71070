package util

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DateLayout is the accepted calendar date format for query parameters.
const DateLayout = "2006-01-02"

var maxPrice = decimal.NewFromInt(100000000)

// ValidatePrice checks that a price is >= 0, has at most two decimals and is below the upper bound.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("price must be zero or positive, got %s", price)
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("price too large, got %s", price)
	}
	if !price.Equal(price.Round(2)) {
		return fmt.Errorf("price has more than two decimals, got %s", price)
	}
	return nil
}

// ValidateStock checks an on-hand quantity (zero allowed).
func ValidateStock(qty int) error {
	if qty < 0 {
		return fmt.Errorf("quantity must be zero or positive, got %d", qty)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date in local time.
func ParseDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	t, err := time.ParseInLocation(DateLayout, dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	return t, nil
}

// ParseDateTime accepts either RFC 3339 or YYYY-MM-DD.
func ParseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return ParseDate(s)
}

// ValidateName checks a required display name of at most max characters.
func ValidateName(field, name string, max int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(name) > max {
		return fmt.Errorf("%s too long, max %d characters", field, max)
	}
	return nil
}
