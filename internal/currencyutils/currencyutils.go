// Package currencyutils parses the amounts users type and formats money for
// messages and reports.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyNoise = regexp.MustCompile(`[€$£¥₣₤₹₩₽\s]|USD|EUR|CHF`)

var hundred = decimal.NewFromInt(100)

// ParseAmount parses a typed amount such as "12.5", "$1,234.56" or "12,50".
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// ParsePositiveAmount is ParseAmount restricted to values above zero.
func ParsePositiveAmount(amountStr string) (decimal.Decimal, error) {
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be greater than zero: %s", amountStr)
	}
	return amount, nil
}

// StandardizeAmount strips currency markers and normalizes separators so the
// result can be read by decimal.NewFromString. "1.234,56" and "1,234.56"
// both become "1234.56"; a lone comma followed by one or two digits is a
// decimal separator.
func StandardizeAmount(amountStr string) string {
	s := currencyNoise.ReplaceAllString(strings.TrimSpace(amountStr), "")
	s = strings.ReplaceAll(s, "'", "")

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ".") < strings.LastIndex(s, ",") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Contains(s, ","):
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return s
}

// FormatAmount renders amount with two decimals behind symbol: "$12.30",
// "-$4.00". An empty symbol yields the bare number.
func FormatAmount(amount decimal.Decimal, symbol string) string {
	rounded := amount.Round(2)
	if rounded.IsNegative() {
		return "-" + symbol + rounded.Neg().StringFixed(2)
	}
	return symbol + rounded.StringFixed(2)
}

// Percent returns part/total*100 with one decimal, "0.0" when total is zero.
func Percent(part, total decimal.Decimal) string {
	if total.IsZero() {
		return "0.0"
	}
	return part.Div(total).Mul(hundred).StringFixed(1)
}
