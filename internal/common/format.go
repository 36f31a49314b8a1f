package common

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice renders v with at most two decimal places and thousands
// separators, trimming trailing zeros: 64230.5 -> "64,230.5", 1234.567 -> "1,234.57".
func FormatPrice(v float64) string {
	s := decimal.NewFromFloat(v).Round(2).String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	return sign + groupThousands(intPart) + frac
}

// FormatMoney renders v as dollars with exactly two decimals: "$1,234.50".
func FormatMoney(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	i := strings.IndexByte(s, '.')
	return sign + "$" + groupThousands(s[:i]) + s[i:]
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
