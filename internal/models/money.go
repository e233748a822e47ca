package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are written to data files and AI prompts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// RoundMoney rounds to cents. Aggregates are summed exactly and only
// rounded when shown or returned.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// SumPrices adds up item prices.
func SumPrices(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total
}
