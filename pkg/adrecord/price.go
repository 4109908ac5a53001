package adrecord

import (
	"strings"
	"unicode"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"KRW": "₩",
	"INR": "₹",
}

// FormatPrice renders a price for display. A price that already carries a
// symbol or text is returned as is. A bare number gets thousands separators
// and the currency symbol (or code) in front.
func FormatPrice(price, currency string) string {
	price = strings.TrimSpace(price)
	if price == "" || !isNumber(price) {
		return price
	}

	intPart, frac := price, ""
	if i := strings.IndexByte(price, '.'); i >= 0 {
		intPart, frac = price[:i], price[i:]
	}
	formatted := groupThousands(intPart) + frac

	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return formatted
	}
	if sym, ok := currencySymbols[code]; ok {
		return sym + formatted
	}
	return code + " " + formatted
}

func isNumber(s string) bool {
	dots := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case !unicode.IsDigit(r):
			return false
		}
	}
	return dots <= 1 && s != "."
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
