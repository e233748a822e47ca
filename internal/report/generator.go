// Package report aggregates stored receipts into daily, weekly, monthly and
// yearly summaries with optional chart images.
package report

import (
	"fmt"
	"time"

	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"

	"github.com/shopspring/decimal"
)

// ReceiptSource reads the receipts of one local day.
type ReceiptSource interface {
	GetReceiptsByDate(date time.Time) ([]models.Receipt, error)
}

// ChartRenderer turns breakdowns into PNG images. A nil slice without error
// means there was nothing to draw.
type ChartRenderer interface {
	CategoryPie(title string, slices []models.CategoryAmount) ([]byte, error)
	DailyBars(title string, days []models.DayTotal) ([]byte, error)
}

const (
	categoryChartTitle = "Spending by category"
	dailyChartTitle    = "Daily spending"
)

// Generator builds reports. charts may be nil to skip rendering.
type Generator struct {
	source  ReceiptSource
	charts  ChartRenderer
	catalog *models.CategoryCatalog
	loc     *time.Location
	symbol  string
	logger  logging.Logger
}

// NewGenerator creates a Generator bound to loc for day bucketing.
func NewGenerator(source ReceiptSource, charts ChartRenderer, catalog *models.CategoryCatalog, loc *time.Location, symbol string, logger logging.Logger) *Generator {
	if catalog == nil {
		catalog = models.NewCategoryCatalog(models.DefaultCategories())
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Generator{
		source:  source,
		charts:  charts,
		catalog: catalog,
		loc:     loc,
		symbol:  symbol,
		logger:  logger.WithField(logging.FieldComponent, "report"),
	}
}

// Symbol is the currency symbol used by the text formatters.
func (g *Generator) Symbol() string { return g.symbol }

// Generate dispatches on kind.
func (g *Generator) Generate(kind Kind, date time.Time) (*Report, error) {
	switch kind {
	case KindDaily:
		return g.DailyReport(date)
	case KindWeekly:
		return g.WeeklyReport(date)
	case KindMonthly:
		return g.MonthlyReport(date)
	case KindYearly:
		return g.YearlyReport(date)
	default:
		return nil, fmt.Errorf("unsupported report kind: %s", kind)
	}
}

// DailyReport covers the local day of date. A day without spending yields a
// report carrying only NoExpensesMessage.
func (g *Generator) DailyReport(date time.Time) (*Report, error) {
	rep, err := g.build(KindDaily, date, date, true)
	if err != nil {
		return nil, err
	}
	if rep.Total.IsZero() {
		return &Report{
			Kind:       KindDaily,
			Start:      rep.Start,
			End:        rep.End,
			Total:      decimal.Zero,
			Categories: []models.CategoryAmount{},
			Message:    NoExpensesMessage,
		}, nil
	}
	rep.Days = nil
	g.render(rep, false)
	return rep, nil
}

// WeeklyReport covers the seven local days ending on date.
func (g *Generator) WeeklyReport(date time.Time) (*Report, error) {
	rep, err := g.build(KindWeekly, date.In(g.loc).AddDate(0, 0, -6), date, true)
	if err != nil {
		return nil, err
	}
	g.render(rep, true)
	return rep, nil
}

// MonthlyReport covers the calendar month containing date.
func (g *Generator) MonthlyReport(date time.Time) (*Report, error) {
	rep, err := g.build(KindMonthly, dateutils.StartOfMonth(date, g.loc), dateutils.EndOfMonth(date, g.loc), true)
	if err != nil {
		return nil, err
	}
	g.render(rep, true)
	return rep, nil
}

// YearlyReport covers the calendar year containing date and keeps recurring
// expenses out of the primary breakdown.
func (g *Generator) YearlyReport(date time.Time) (*Report, error) {
	rep, err := g.build(KindYearly, dateutils.StartOfYear(date, g.loc), dateutils.EndOfYear(date, g.loc), false)
	if err != nil {
		return nil, err
	}
	g.render(rep, false)
	return rep, nil
}

// YearlyDetailReport is YearlyReport plus the plain-English summary.
func (g *Generator) YearlyDetailReport(date time.Time) (*Report, error) {
	rep, err := g.YearlyReport(date)
	if err != nil {
		return nil, err
	}
	rep.English = EnglishReport(rep, g.symbol)
	return rep, nil
}

func (g *Generator) build(kind Kind, start, end time.Time, includeRecurring bool) (*Report, error) {
	total, totalRecurring := decimal.Zero, decimal.Zero
	categories, recurringCategories := newBreakdown(), newBreakdown()
	warned := make(map[string]bool)

	label := func(raw string) string {
		l, known := g.catalog.DisplayLabel(raw)
		if !known && !warned[raw] {
			warned[raw] = true
			g.logger.Warn("Unknown category in stored receipt", logging.F(logging.FieldCategory, raw))
		}
		return l
	}

	days := dateutils.Days(start, end, g.loc)
	entries := make([]DayEntry, 0, len(days))
	for _, day := range days {
		receipts, err := g.source.GetReceiptsByDate(day)
		if err != nil {
			return nil, fmt.Errorf("error reading receipts for %s: %w", dateutils.DayKey(day, g.loc), err)
		}

		dayTotal := decimal.Zero
		dayCategories := newBreakdown()
		for _, r := range receipts {
			counted := !r.IsRecurring || includeRecurring
			bucket := categories
			if r.IsRecurring {
				totalRecurring = totalRecurring.Add(r.Amount)
				bucket = recurringCategories
			} else {
				total = total.Add(r.Amount)
			}
			if counted {
				dayTotal = dayTotal.Add(r.Amount)
			}
			for _, item := range r.Items {
				l := label(item.Category)
				bucket.add(l, item.Price)
				if counted {
					dayCategories.add(l, item.Price)
				}
			}
		}
		entries = append(entries, DayEntry{
			Day:        day,
			Total:      models.RoundMoney(dayTotal),
			Categories: dayCategories.sorted(),
		})
	}

	rep := &Report{
		Kind:                kind,
		Start:               dateutils.StartOfDay(start, g.loc),
		End:                 dateutils.EndOfDay(end, g.loc),
		TotalRecurring:      models.RoundMoney(totalRecurring),
		RecurringCategories: recurringCategories.sorted(),
		Days:                entries,
	}
	if includeRecurring {
		merged := categories.clone()
		merged.merge(recurringCategories)
		rep.Total = models.RoundMoney(total.Add(totalRecurring))
		rep.Categories = merged.sorted()
	} else {
		rep.Total = models.RoundMoney(total)
		rep.Categories = categories.sorted()
	}

	g.logger.Debug("Report aggregated",
		logging.F(logging.FieldReport, string(kind)),
		logging.F(logging.FieldStartDate, dateutils.DayKey(start, g.loc)),
		logging.F(logging.FieldEndDate, dateutils.DayKey(end, g.loc)),
		logging.F(logging.FieldAmount, rep.Total.String()))
	return rep, nil
}

// render attaches chart images. Rendering failures are logged and the chart
// is left out.
func (g *Generator) render(rep *Report, withDaily bool) {
	if g.charts == nil {
		return
	}
	pie, err := g.charts.CategoryPie(categoryChartTitle, rep.Categories)
	if err != nil {
		g.logger.WithError(err).Warn("Failed to render category chart", logging.F(logging.FieldReport, string(rep.Kind)))
	} else {
		rep.Charts.Category = pie
	}
	if !withDaily {
		return
	}
	bars, err := g.charts.DailyBars(dailyChartTitle, rep.DayTotals())
	if err != nil {
		g.logger.WithError(err).Warn("Failed to render daily chart", logging.F(logging.FieldReport, string(rep.Kind)))
		return
	}
	rep.Charts.Daily = bars
}
