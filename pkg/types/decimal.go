package types

import "github.com/shopspring/decimal"

func init() {
	// Prices leave the API as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Money parses a price literal, returning ok=false for garbage.
func Money(raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
