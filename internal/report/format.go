package report

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"fjacquet/receipt-bot/internal/currencyutils"
	"fjacquet/receipt-bot/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Title is the heading used for a report kind in chat messages.
func Title(kind Kind) string {
	switch kind {
	case KindDaily:
		return "Daily Report"
	case KindWeekly:
		return "Weekly Report"
	case KindMonthly:
		return "Monthly Report"
	case KindYearly:
		return "Yearly Report"
	}
	return "Report"
}

func writeBreakdown(b *strings.Builder, lines []models.CategoryAmount, total decimal.Decimal, symbol string, escape bool) {
	for _, c := range lines {
		label := c.Label
		if escape {
			label = html.EscapeString(label)
		}
		fmt.Fprintf(b, "%s: %s (%s%%)\n", label, currencyutils.FormatAmount(c.Amount, symbol), currencyutils.Percent(c.Amount, total))
	}
}

// FormatSummary renders a daily, weekly or monthly report as plain text.
func FormatSummary(rep *Report, symbol string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s\n\n", Title(rep.Kind))
	if rep.Empty() {
		b.WriteString(rep.Message)
		return b.String()
	}
	fmt.Fprintf(&b, "💰 Total: %s\n", currencyutils.FormatAmount(rep.Total, symbol))
	if len(rep.Categories) > 0 {
		b.WriteString("\n📈 Categories:\n")
		writeBreakdown(&b, rep.Categories, rep.Total, symbol, false)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatYearly renders a yearly report as Telegram HTML.
func FormatYearly(rep *Report, symbol string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Yearly Report %d</b>\n\n", rep.Start.Year())
	fmt.Fprintf(&b, "Total: %s\n", currencyutils.FormatAmount(rep.GrandTotal(), symbol))
	fmt.Fprintf(&b, "- Regular: %s\n", currencyutils.FormatAmount(rep.Total, symbol))
	fmt.Fprintf(&b, "- Recurring: %s\n\n", currencyutils.FormatAmount(rep.TotalRecurring, symbol))
	b.WriteString("Regular expenses:\n")
	writeBreakdown(&b, rep.Categories, rep.Total, symbol, true)
	b.WriteString("\nRecurring expenses:\n")
	writeBreakdown(&b, rep.RecurringCategories, rep.TotalRecurring, symbol, true)
	return strings.TrimRight(b.String(), "\n")
}

// EnglishReport is the plain-text annual summary meant to be pasted into an
// AI assistant for analysis.
func EnglishReport(rep *Report, symbol string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Annual Expense Report %d\n\n", rep.Start.Year())
	fmt.Fprintf(&b, "Total Annual Expenses: %s\n", currencyutils.FormatAmount(rep.GrandTotal(), symbol))
	fmt.Fprintf(&b, "- Regular Expenses: %s\n", currencyutils.FormatAmount(rep.Total, symbol))
	fmt.Fprintf(&b, "- Recurring Expenses: %s\n\n", currencyutils.FormatAmount(rep.TotalRecurring, symbol))
	b.WriteString("Regular Expense Categories:\n")
	writeBreakdown(&b, rep.Categories, rep.Total, symbol, false)
	b.WriteString("\nRecurring Expense Categories:\n")
	writeBreakdown(&b, rep.RecurringCategories, rep.TotalRecurring, symbol, false)
	return b.String()
}

// Encode serializes a report as "json" or "yaml". Chart images are not included.
func Encode(rep *Report, format string) ([]byte, error) {
	switch format {
	case "json":
		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
		}
		return out, nil
	case "yaml":
		out, err := yaml.Marshal(rep)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}
