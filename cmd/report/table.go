package report

import (
	"fmt"
	"io"
	"time"

	"fjacquet/receipt-bot/internal/currencyutils"
	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/report"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

// WriteTable renders rep as console tables.
func WriteTable(w io.Writer, rep *report.Report, symbol string, loc *time.Location) {
	period := dateutils.DateRange{Start: rep.Start.In(loc), End: rep.End.In(loc)}
	fmt.Fprintf(w, "%s (%s)\n", report.Title(rep.Kind), period)

	if rep.Empty() {
		fmt.Fprintln(w, rep.Message)
		return
	}

	if rep.Kind == report.KindYearly {
		fmt.Fprintf(w, "Total: %s\n", currencyutils.FormatAmount(rep.GrandTotal(), symbol))
		fmt.Fprintln(w, "\nRegular expenses")
		categoryTable(w, rep.Categories, rep.Total, symbol)
		fmt.Fprintln(w, "\nRecurring expenses")
		categoryTable(w, rep.RecurringCategories, rep.TotalRecurring, symbol)
		return
	}

	categoryTable(w, rep.Categories, rep.Total, symbol)
	if len(rep.Days) > 0 {
		fmt.Fprintln(w)
		dayTable(w, rep.Days, symbol, loc)
	}
}

func categoryTable(w io.Writer, lines []models.CategoryAmount, total decimal.Decimal, symbol string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Category", "Amount", "Share"})
	for _, c := range lines {
		t.AppendRow(table.Row{c.Label, currencyutils.FormatAmount(c.Amount, symbol), currencyutils.Percent(c.Amount, total) + "%"})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"Total", currencyutils.FormatAmount(total, symbol), ""})
	style(t)
	t.Render()
}

func dayTable(w io.Writer, days []report.DayEntry, symbol string, loc *time.Location) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Day", "Total"})
	for _, d := range days {
		t.AppendRow(table.Row{dateutils.DayKey(d.Day, loc), currencyutils.FormatAmount(d.Total, symbol)})
	}
	style(t)
	t.Render()
}

func style(t table.Writer) {
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
}
