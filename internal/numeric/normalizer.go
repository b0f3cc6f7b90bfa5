// Package numeric turns an ambiguous price token — possibly carrying a
// currency marker and either European or US digit-group punctuation — into
// an exact decimal value.
package numeric

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencyMarkers = []string{"$", "USD", "EUR"}

// Normalize parses a price token into a strictly positive decimal value.
// The separator role (decimal vs thousands) is decided from the structure
// of the token, not from a locale setting, matching the mixed-locale
// supplier files this ingests.
func Normalize(token string) (decimal.Decimal, bool) {
	val := strings.TrimSpace(token)
	for _, marker := range currencyMarkers {
		val = strings.ReplaceAll(val, marker, "")
	}
	val = strings.TrimSpace(val)
	if val == "" {
		return decimal.Zero, false
	}

	commaCount := strings.Count(val, ",")
	dotCount := strings.Count(val, ".")

	switch {
	case commaCount >= 1 && dotCount >= 1:
		if strings.LastIndex(val, ",") > strings.LastIndex(val, ".") {
			val = strings.ReplaceAll(val, ".", "")
			val = strings.Replace(val, ",", ".", 1)
		} else {
			val = strings.ReplaceAll(val, ",", "")
		}
	case commaCount >= 1:
		val = strings.Replace(val, ",", ".", 1)
	case dotCount >= 1:
		parts := strings.Split(val, ".")
		if len(parts) > 1 && len(parts[len(parts)-1]) == 3 {
			val = strings.ReplaceAll(val, ".", "")
		}
	}

	d, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false
	}
	if !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}
