package report

import (
	"sort"
	"time"

	"fjacquet/receipt-bot/internal/models"

	"github.com/shopspring/decimal"
)

// Kind identifies the period a report covers.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
	KindYearly  Kind = "yearly"
)

// ParseKind accepts the lower-case kind names used on the command line.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindDaily, KindWeekly, KindMonthly, KindYearly:
		return Kind(s), true
	}
	return "", false
}

// NoExpensesMessage is returned by the daily report for a day with nothing recorded.
const NoExpensesMessage = "No expenses recorded today"

// DayEntry is the per-day slice of a report.
type DayEntry struct {
	Day        time.Time               `json:"day" yaml:"day"`
	Total      decimal.Decimal         `json:"total" yaml:"total"`
	Categories []models.CategoryAmount `json:"categories" yaml:"categories"`
}

// Charts holds the rendered PNG images. Either may be nil.
type Charts struct {
	Category []byte
	Daily    []byte
}

// Report is the aggregated view over a date range.
//
// For yearly reports Total and Categories cover non-recurring receipts only
// and the recurring part is reported separately. For the other kinds the
// recurring amounts are already merged into Total and Categories.
type Report struct {
	Kind                Kind                    `json:"kind" yaml:"kind"`
	Start               time.Time               `json:"start" yaml:"start"`
	End                 time.Time               `json:"end" yaml:"end"`
	Total               decimal.Decimal         `json:"total" yaml:"total"`
	TotalRecurring      decimal.Decimal         `json:"total_recurring" yaml:"total_recurring"`
	Categories          []models.CategoryAmount `json:"categories" yaml:"categories"`
	RecurringCategories []models.CategoryAmount `json:"recurring_categories,omitempty" yaml:"recurring_categories,omitempty"`
	Days                []DayEntry              `json:"days,omitempty" yaml:"days,omitempty"`
	Message             string                  `json:"message,omitempty" yaml:"message,omitempty"`
	English             string                  `json:"english,omitempty" yaml:"english,omitempty"`
	Charts              Charts                  `json:"-" yaml:"-"`
}

// Empty reports whether the report carries only a message.
func (r *Report) Empty() bool {
	return r.Message != ""
}

// GrandTotal is everything spent in the range, recurring included.
func (r *Report) GrandTotal() decimal.Decimal {
	if r.Kind == KindYearly {
		return r.Total.Add(r.TotalRecurring)
	}
	return r.Total
}

// Category returns the amount for a label in the primary breakdown.
func (r *Report) Category(label string) (decimal.Decimal, bool) {
	for _, c := range r.Categories {
		if c.Label == label {
			return c.Amount, true
		}
	}
	return decimal.Zero, false
}

// DayTotals flattens Days for the bar chart and the CLI.
func (r *Report) DayTotals() []models.DayTotal {
	out := make([]models.DayTotal, 0, len(r.Days))
	for _, d := range r.Days {
		out = append(out, models.DayTotal{Day: d.Day, Amount: d.Total})
	}
	return out
}

// breakdown accumulates amounts per label, remembering first-seen order.
type breakdown struct {
	order   []string
	amounts map[string]decimal.Decimal
}

func newBreakdown() *breakdown {
	return &breakdown{amounts: make(map[string]decimal.Decimal)}
}

func (b *breakdown) add(label string, amount decimal.Decimal) {
	current, ok := b.amounts[label]
	if !ok {
		b.order = append(b.order, label)
	}
	b.amounts[label] = current.Add(amount)
}

func (b *breakdown) merge(other *breakdown) {
	for _, label := range other.order {
		b.add(label, other.amounts[label])
	}
}

func (b *breakdown) clone() *breakdown {
	c := newBreakdown()
	c.merge(b)
	return c
}

// sorted returns the buckets by descending amount, ties in first-seen order.
func (b *breakdown) sorted() []models.CategoryAmount {
	out := make([]models.CategoryAmount, 0, len(b.order))
	for _, label := range b.order {
		out = append(out, models.CategoryAmount{Label: label, Amount: models.RoundMoney(b.amounts[label])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}
