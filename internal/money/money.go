package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse reads a pt-BR style amount ("1.234,56", "R$ 3,00", "10") and returns
// zero for anything it cannot read. It never fails.
//
// Everything but digits, ',', '.' and '-' is dropped, dots are thousands
// separators, and the first comma becomes the decimal point. The longest
// numeric prefix of what remains is used, so "12,5abc" reads as 12.5.
func Parse(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := strings.Replace(b.String(), ",", ".", 1)
	prefix := numericPrefix(cleaned)
	if prefix == "" {
		return decimal.Zero
	}
	if strings.HasPrefix(prefix, ".") {
		prefix = "0" + prefix
	} else if strings.HasPrefix(prefix, "-.") {
		prefix = "-0" + prefix[1:]
	}
	value, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero
	}
	return value
}

// ParseFloat is Parse for callers that store plain float64 values.
func ParseFloat(raw string) float64 {
	return Parse(raw).InexactFloat64()
}

// FromFloat converts a stored float64 amount into a decimal. NaN and
// infinities read as zero.
func FromFloat(v float64) decimal.Decimal {
	if !Finite(v) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// Sanitize returns v, or zero when v is NaN or an infinity.
func Sanitize(v float64) float64 {
	if !Finite(v) {
		return 0
	}
	return v
}

// Finite reports whether v is neither NaN nor an infinity.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Float converts back to the float64 stored in documents.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func numericPrefix(s string) string {
	end := 0
	digits := false
	dot := false
	for i, r := range s {
		switch {
		case r == '-' && i == 0:
		case r >= '0' && r <= '9':
			digits = true
			end = i + 1
			continue
		case r == '.' && !dot:
			dot = true
		default:
			if digits {
				return s[:end]
			}
			return ""
		}
	}
	if !digits {
		return ""
	}
	return s[:end]
}
