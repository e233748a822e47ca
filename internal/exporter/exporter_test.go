package exporter

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReceipts() []models.Receipt {
	return []models.Receipt{
		{
			Date:  time.Date(2024, 2, 14, 18, 0, 0, 0, time.UTC),
			Store: "Costco",
			Items: []models.Item{
				{Name: "Milk", Price: decimal.RequireFromString("3.5"), Category: "GROCERIES"},
				{Name: "Toy", Price: decimal.RequireFromString("12"), Category: "KIDS"},
			},
			Amount: decimal.RequireFromString("15.5"),
		},
		{
			Date:        time.Date(2024, 2, 1, 6, 0, 0, 0, time.UTC),
			Store:       "Landlord",
			Items:       []models.Item{{Name: "Rent", Price: decimal.RequireFromString("1200"), Category: "HOUSING"}},
			Amount:      decimal.RequireFromString("1200"),
			IsRecurring: true,
		},
	}
}

func newTestExporter(t *testing.T) (*Exporter, *logging.MockLogger) {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	logger := logging.NewMockLogger()
	return New(nil, loc, 0, logger), logger
}

func TestItemRows(t *testing.T) {
	e, _ := newTestExporter(t)
	rows := e.ItemRows(sampleReceipts())
	require.Len(t, rows, 3)
	assert.Equal(t, ItemRow{Date: "2024-02-14 12:00", Store: "Costco", Item: "Milk", Category: "Groceries", Price: "3.50"}, rows[0])
	assert.Equal(t, "Housing", rows[2].Category)
	assert.True(t, rows[2].Recurring)
}

func TestReceiptRows(t *testing.T) {
	e, _ := newTestExporter(t)
	rows := e.ReceiptRows(sampleReceipts())
	require.Len(t, rows, 2)
	assert.Equal(t, 15.5, rows[0].Amount)
	assert.Equal(t, 2, rows[0].Items)
	assert.Equal(t, "2024-02-01 00:00", rows[1].Date)
}

func TestWriteCSV(t *testing.T) {
	e, _ := newTestExporter(t)
	var buf bytes.Buffer
	require.NoError(t, e.WriteCSV(&buf, sampleReceipts()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "date,store,item,category,price,recurring", lines[0])
	assert.Equal(t, "2024-02-14 12:00,Costco,Milk,Groceries,3.50,false", lines[1])
	assert.Equal(t, "2024-02-01 00:00,Landlord,Rent,Housing,1200.00,true", lines[3])
}

func TestWriteCSV_Delimiter(t *testing.T) {
	e := New(nil, time.UTC, ';', nil)
	var buf bytes.Buffer
	require.NoError(t, e.WriteCSV(&buf, sampleReceipts()[:1]))
	assert.True(t, strings.HasPrefix(buf.String(), "date;store;item;category;price;recurring"))
}

func TestWriteXLSX(t *testing.T) {
	e, _ := newTestExporter(t)
	var buf bytes.Buffer
	require.NoError(t, e.WriteXLSX(&buf, sampleReceipts()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetReceipts, SheetItems}, f.GetSheetList())

	receipts, err := f.GetRows(SheetReceipts)
	require.NoError(t, err)
	require.Len(t, receipts, 3)
	assert.Equal(t, "Store", receipts[0][1])
	assert.Equal(t, "Costco", receipts[1][1])

	items, err := f.GetRows(SheetItems)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "Rent", items[3][2])
	assert.Equal(t, "Housing", items[3][3])
}

func TestWriteFile(t *testing.T) {
	e, logger := newTestExporter(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "out", "receipts.csv")
	require.NoError(t, e.WriteFile(path, "CSV", sampleReceipts()))
	assert.FileExists(t, path)
	assert.True(t, logger.HasEntry("INFO", "Exported receipts"))

	xlsx := filepath.Join(dir, "receipts.xlsx")
	require.NoError(t, e.WriteFile(xlsx, FormatXLSX, sampleReceipts()))
	assert.FileExists(t, xlsx)

	err := e.WriteFile(filepath.Join(dir, "x.pdf"), "pdf", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}
