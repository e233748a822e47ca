package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	reportcmd "fjacquet/receipt-bot/cmd/report"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestReportCommand_Metadata(t *testing.T) {
	assert.Equal(t, "report [day|week|month|year|year-detail]", reportcmd.Cmd.Use)
	assert.Contains(t, reportcmd.Cmd.Long, "Example")
	assert.NotNil(t, reportcmd.Cmd.Flags().Lookup("date"))
	assert.NotNil(t, reportcmd.Cmd.Flags().Lookup("format"))
	assert.NotNil(t, reportcmd.Cmd.Flags().Lookup("charts-dir"))
	assert.Error(t, reportcmd.Cmd.Args(reportcmd.Cmd, []string{"decade"}))
	assert.NoError(t, reportcmd.Cmd.Args(reportcmd.Cmd, []string{"week"}))
}

func TestKindForPeriod(t *testing.T) {
	tests := []struct {
		period string
		want   report.Kind
	}{
		{"day", report.KindDaily},
		{"week", report.KindWeekly},
		{"month", report.KindMonthly},
		{"year", report.KindYearly},
		{"year-detail", report.KindYearly},
	}
	for _, tt := range tests {
		got, err := reportcmd.KindForPeriod(tt.period)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := reportcmd.KindForPeriod("decade")
	assert.Error(t, err)
}

func TestWriteTable_Weekly(t *testing.T) {
	day := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	rep := &report.Report{
		Kind:  report.KindWeekly,
		Start: day.AddDate(0, 0, -6),
		End:   day,
		Total: dec("60"),
		Categories: []models.CategoryAmount{
			{Label: "Groceries", Amount: dec("45")},
			{Label: "Dining", Amount: dec("15")},
		},
		Days: []report.DayEntry{{Day: day, Total: dec("60")}},
	}

	var buf bytes.Buffer
	reportcmd.WriteTable(&buf, rep, "$", time.UTC)
	out := buf.String()
	assert.Contains(t, out, "Weekly Report (2024-02-08 to 2024-02-14)")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "$45.00")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "$60.00")
	assert.Contains(t, out, "2024-02-14")
}

func TestWriteTable_EmptyDaily(t *testing.T) {
	day := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	rep := &report.Report{Kind: report.KindDaily, Start: day, End: day, Message: report.NoExpensesMessage}

	var buf bytes.Buffer
	reportcmd.WriteTable(&buf, rep, "$", time.UTC)
	assert.Equal(t, "Daily Report (2024-02-14)\n"+report.NoExpensesMessage+"\n", buf.String())
}

func TestWriteTable_Yearly(t *testing.T) {
	rep := &report.Report{
		Kind:                report.KindYearly,
		Start:               time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:                 time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Total:               dec("100"),
		TotalRecurring:      dec("1200"),
		Categories:          []models.CategoryAmount{{Label: "Groceries", Amount: dec("100")}},
		RecurringCategories: []models.CategoryAmount{{Label: "Housing", Amount: dec("1200")}},
	}

	var buf bytes.Buffer
	reportcmd.WriteTable(&buf, rep, "$", time.UTC)
	out := buf.String()
	assert.Contains(t, out, "Total: $1300.00")
	assert.Contains(t, out, "Regular expenses")
	assert.Contains(t, out, "Recurring expenses")
	assert.Contains(t, out, "Housing")
}

func TestWriteCharts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	rep := &report.Report{
		Kind:   report.KindMonthly,
		Start:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Charts: report.Charts{Category: []byte("pie"), Daily: []byte("bars")},
	}

	files, err := reportcmd.WriteCharts(dir, rep)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	data, err := os.ReadFile(filepath.Join(dir, "monthly-2024-02-01-categories.png"))
	require.NoError(t, err)
	assert.Equal(t, "pie", string(data))
	assert.FileExists(t, filepath.Join(dir, "monthly-2024-02-01-daily.png"))

	files, err = reportcmd.WriteCharts(dir, &report.Report{Kind: report.KindDaily})
	require.NoError(t, err)
	assert.Empty(t, files)
}
