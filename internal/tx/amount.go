package tx

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseDecimalAmount converts a decimal string such as "0.001" into the
// chain's smallest unit using exact integer arithmetic. Binary floating point
// is never involved, so "0.001" at 18 decimals is exactly 10^15 wei.
func ParseDecimalAmount(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("negative amount %q", s)
	}

	whole := s
	frac := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole, frac = s[:idx], s[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}

	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, fmt.Errorf("malformed amount %q", s)
	}
	if len(frac) > decimals {
		return nil, fmt.Errorf("amount %q has more than %d fractional digits", s, decimals)
	}

	// whole*10^decimals + frac padded to `decimals` digits.
	padded := whole + frac + strings.Repeat("0", decimals-len(frac))
	value, ok := new(big.Int).SetString(padded, 10)
	if !ok {
		return nil, fmt.Errorf("malformed amount %q", s)
	}
	return value, nil
}

// FormatDecimalAmount renders a smallest-unit value back as a decimal string,
// trimming trailing fractional zeros. The inverse of ParseDecimalAmount.
func FormatDecimalAmount(v *big.Int, decimals int) string {
	s := v.String()
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	whole := s[:len(s)-decimals]
	frac := strings.TrimRight(s[len(s)-decimals:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
