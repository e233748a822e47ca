// Package exporter writes stored receipts out as CSV or XLSX files.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// Supported export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Sheet names in the XLSX workbook.
const (
	SheetReceipts = "Receipts"
	SheetItems    = "Items"
)

// ItemRow is one purchased item, flattened with its receipt's fields.
type ItemRow struct {
	Date      string `csv:"date"`
	Store     string `csv:"store"`
	Item      string `csv:"item"`
	Category  string `csv:"category"`
	Price     string `csv:"price"`
	Recurring bool   `csv:"recurring"`
}

// ReceiptRow summarizes one receipt.
type ReceiptRow struct {
	Date      string
	Store     string
	Amount    float64
	Items     int
	Recurring bool
}

// Exporter renders receipts with local dates and category labels.
type Exporter struct {
	catalog   *models.CategoryCatalog
	loc       *time.Location
	delimiter rune
	logger    logging.Logger
}

// New creates an Exporter. A zero delimiter means comma.
func New(catalog *models.CategoryCatalog, loc *time.Location, delimiter rune, logger logging.Logger) *Exporter {
	if catalog == nil {
		catalog = models.NewCategoryCatalog(models.DefaultCategories())
	}
	if loc == nil {
		loc = time.UTC
	}
	if delimiter == 0 {
		delimiter = ','
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Exporter{
		catalog:   catalog,
		loc:       loc,
		delimiter: delimiter,
		logger:    logger.WithField(logging.FieldComponent, "exporter"),
	}
}

// ItemRows flattens receipts into one row per item.
func (e *Exporter) ItemRows(receipts []models.Receipt) []ItemRow {
	rows := make([]ItemRow, 0, len(receipts))
	for _, r := range receipts {
		date := dateutils.FormatLocal(r.Date, e.loc)
		for _, item := range r.Items {
			label, _ := e.catalog.DisplayLabel(item.Category)
			rows = append(rows, ItemRow{
				Date:      date,
				Store:     r.Store,
				Item:      item.Name,
				Category:  label,
				Price:     item.Price.StringFixed(2),
				Recurring: r.IsRecurring,
			})
		}
	}
	return rows
}

// ReceiptRows summarizes each receipt.
func (e *Exporter) ReceiptRows(receipts []models.Receipt) []ReceiptRow {
	rows := make([]ReceiptRow, 0, len(receipts))
	for _, r := range receipts {
		rows = append(rows, ReceiptRow{
			Date:      dateutils.FormatLocal(r.Date, e.loc),
			Store:     r.Store,
			Amount:    models.RoundMoney(r.Amount).InexactFloat64(),
			Items:     len(r.Items),
			Recurring: r.IsRecurring,
		})
	}
	return rows
}

// WriteCSV writes the item rows as CSV with a header line.
func (e *Exporter) WriteCSV(w io.Writer, receipts []models.Receipt) error {
	writer := csv.NewWriter(w)
	writer.Comma = e.delimiter
	if err := gocsv.MarshalCSV(e.ItemRows(receipts), gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a Receipts sheet and an Items sheet.
func (e *Exporter) WriteXLSX(w io.Writer, receipts []models.Receipt) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("Failed to close workbook", logging.F(logging.FieldError, err.Error()))
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetReceipts); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetItems); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("error creating number style: %w", err)
	}

	receiptRows := [][]interface{}{{"Date", "Store", "Amount", "Items", "Recurring"}}
	for _, r := range e.ReceiptRows(receipts) {
		receiptRows = append(receiptRows, []interface{}{r.Date, r.Store, r.Amount, r.Items, r.Recurring})
	}
	if err := writeSheet(f, SheetReceipts, receiptRows, header, money, "C"); err != nil {
		return err
	}

	itemRows := [][]interface{}{{"Date", "Store", "Item", "Category", "Price", "Recurring"}}
	for _, r := range receipts {
		date := dateutils.FormatLocal(r.Date, e.loc)
		for _, item := range r.Items {
			label, _ := e.catalog.DisplayLabel(item.Category)
			itemRows = append(itemRows, []interface{}{date, r.Store, item.Name, label, models.RoundMoney(item.Price).InexactFloat64(), r.IsRecurring})
		}
	}
	if err := writeSheet(f, SheetItems, itemRows, header, money, "E"); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle, moneyStyle int, moneyCol string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("error writing %s row %d: %w", sheet, i+1, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("error styling %s header: %w", sheet, err)
	}
	if len(rows) > 1 {
		if err := f.SetCellStyle(sheet, moneyCol+"2", fmt.Sprintf("%s%d", moneyCol, len(rows)), moneyStyle); err != nil {
			return fmt.Errorf("error styling %s amounts: %w", sheet, err)
		}
	}
	return f.SetColWidth(sheet, "A", "B", 20)
}

// WriteFile writes receipts to path in format, creating parent directories.
func (e *Exporter) WriteFile(path, format string, receipts []models.Receipt) error {
	format = strings.ToLower(format)
	if format != FormatCSV && format != FormatXLSX {
		return fmt.Errorf("unsupported export format: %s", format)
	}
	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating export file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			e.logger.Warn("Failed to close file", logging.F(logging.FieldFile, path))
		}
	}()

	if format == FormatCSV {
		err = e.WriteCSV(file, receipts)
	} else {
		err = e.WriteXLSX(file, receipts)
	}
	if err != nil {
		return err
	}
	e.logger.Info("Exported receipts",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(receipts)))
	return nil
}
