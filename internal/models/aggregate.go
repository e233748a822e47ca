package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount is one labelled bucket of a report breakdown.
type CategoryAmount struct {
	Label  string          `json:"label" yaml:"label" csv:"category"`
	Amount decimal.Decimal `json:"amount" yaml:"amount" csv:"amount"`
}

// DayTotal is the amount spent on one local day.
type DayTotal struct {
	Day    time.Time       `json:"day" yaml:"day"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
}
