package utils

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// CurrencySymbol is the only currency prefix the gateway renders.
	CurrencySymbol = "$"
	// MinorUnitPlaces is the number of decimal places of the currency minor unit (cents)
	MinorUnitPlaces = 2
)

// currencyTokens are stripped from price strings before parsing.
// Rupiah prefixes still arrive from older backend records.
var currencyTokens = []string{"Rp.", "Rp", "RP", "rp", "IDR", "USD", "$", " ", " "}

// RoundMoney rounds a value to the currency minor unit, half away from zero
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnitPlaces)
}

// ParsePrice converts a loosely typed wire value into a decimal amount.
// Numbers pass through unchanged. Strings may carry a currency symbol and
// thousands separators. Anything that cannot be parsed yields zero.
func ParsePrice(value interface{}) decimal.Decimal {
	switch v := value.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero
		}
		return *v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(v)
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromInt(int64(v))
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		return parsePriceString(v)
	default:
		return decimal.Zero
	}
}

func parsePriceString(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	for _, token := range currencyTokens {
		s = strings.ReplaceAll(s, token, "")
	}
	if s == "" {
		return decimal.Zero
	}

	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// normalizeSeparators rewrites grouping and decimal separators so that the
// result only contains '.' as decimal point.
//
// Both ',' and '.' present: the right-most one is the decimal separator.
// One kind repeated: grouping. One occurrence followed by exactly three
// digits: grouping. Otherwise it is the decimal separator.
func normalizeSeparators(s string) string {
	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")

	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case commas == 0 && dots == 0:
		return s
	}

	sep := "."
	count := dots
	if commas > 0 {
		sep = ","
		count = commas
	}

	if count > 1 {
		return strings.ReplaceAll(s, sep, "")
	}

	idx := strings.Index(s, sep)
	if len(s)-idx-1 == 3 {
		return strings.Replace(s, sep, "", 1)
	}
	return strings.Replace(s, sep, ".", 1)
}

// FormatPrice renders an amount as "$1,234.50" (negative amounts as "-$1,234.50")
func FormatPrice(value decimal.Decimal) string {
	rounded := RoundMoney(value)
	fixed := rounded.Abs().StringFixed(MinorUnitPlaces)

	intPart, fracPart := fixed, ""
	if idx := strings.IndexByte(fixed, '.'); idx >= 0 {
		intPart, fracPart = fixed[:idx], fixed[idx:]
	}

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(CurrencySymbol)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(fracPart)
	return b.String()
}
