package models

import "github.com/shopspring/decimal"

// RecurringExpense is a fixed monthly charge applied as a receipt on the
// first of each month.
type RecurringExpense struct {
	Store       string          `json:"store"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
}

// Matches reports whether receipt r is the materialization of e.
func (e RecurringExpense) Matches(r Receipt) bool {
	return r.IsRecurring && r.Store == e.Store && r.Amount.Equal(e.Amount)
}
