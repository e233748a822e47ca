package models

import (
	"encoding/json"
	"fmt"
	"time"

	"fjacquet/receipt-bot/internal/dateutils"

	"github.com/shopspring/decimal"
)

// Item is one purchased line on a receipt. Category holds a category key.
type Item struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

// Receipt is a single purchase event. Amount is always the sum of item prices.
type Receipt struct {
	Date        time.Time       `json:"date"`
	Store       string          `json:"store"`
	Amount      decimal.Decimal `json:"amount"`
	Items       []Item          `json:"items"`
	IsRecurring bool            `json:"isRecurring,omitempty"`
}

type receiptJSON struct {
	Date        string          `json:"date"`
	Store       string          `json:"store"`
	Amount      decimal.Decimal `json:"amount"`
	Items       []Item          `json:"items"`
	IsRecurring bool            `json:"isRecurring,omitempty"`
}

// MarshalJSON writes the date as a UTC millisecond timestamp.
func (r Receipt) MarshalJSON() ([]byte, error) {
	items := r.Items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(receiptJSON{
		Date:        dateutils.FormatUTC(r.Date),
		Store:       r.Store,
		Amount:      r.Amount,
		Items:       items,
		IsRecurring: r.IsRecurring,
	})
}

// UnmarshalJSON accepts both zoned and zone-less stored timestamps.
func (r *Receipt) UnmarshalJSON(data []byte) error {
	var raw receiptJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var date time.Time
	if raw.Date != "" {
		parsed, err := dateutils.ParseStoredTimestamp(raw.Date)
		if err != nil {
			return fmt.Errorf("invalid receipt date: %w", err)
		}
		date = parsed
	}
	*r = Receipt{
		Date:        date,
		Store:       raw.Store,
		Amount:      raw.Amount,
		Items:       raw.Items,
		IsRecurring: raw.IsRecurring,
	}
	return nil
}

// WithComputedAmount returns a copy whose Amount equals the sum of its items.
func (r Receipt) WithComputedAmount() Receipt {
	r.Amount = SumPrices(r.Items)
	return r
}

// ReceiptRef locates a stored receipt: the local day it is filed under and
// its position in that day's list.
type ReceiptRef struct {
	Day   string
	Index int
}

func (r ReceiptRef) String() string {
	return fmt.Sprintf("%s#%d", r.Day, r.Index)
}

// RecentReceipt pairs a receipt with the reference needed to delete it.
type RecentReceipt struct {
	Receipt Receipt
	Ref     ReceiptRef
}
