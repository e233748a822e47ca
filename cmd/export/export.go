// Package export writes stored receipts to CSV or XLSX files
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/receipt-bot/cmd/root"
	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/exporter"
	"fjacquet/receipt-bot/internal/validation"

	"github.com/spf13/cobra"
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export receipts to CSV or XLSX",
	Long: `Export the receipts recorded between two dates.

CSV output has one row per item. XLSX output has a Receipts sheet with one
row per receipt and an Items sheet with one row per item.

Example:
  receipt-bot export --from 2024-01-01 --to 2024-03-31 --format xlsx -o q1.xlsx`,
	Args: cobra.NoArgs,
	RunE: exportFunc,
}

var (
	fromFlag   string
	toFlag     string
	formatFlag string
	outputFlag string
)

func init() {
	Cmd.Flags().StringVar(&fromFlag, "from", "", "First day to export (YYYY-MM-DD, default first of this month)")
	Cmd.Flags().StringVar(&toFlag, "to", "", "Last day to export (YYYY-MM-DD, default today)")
	Cmd.Flags().StringVarP(&formatFlag, "format", "f", exporter.FormatCSV, "Output format: csv or xlsx")
	Cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file (default receipts-<from>-<to>.<format>)")
}

// ResolveRange parses the --from/--to values. Missing values default to the
// first of now's month and now's day.
func ResolveRange(from, to string, now time.Time, loc *time.Location) (dateutils.DateRange, error) {
	r := dateutils.DateRange{
		Start: dateutils.StartOfMonth(now, loc),
		End:   dateutils.EndOfDay(now, loc),
	}
	if from != "" {
		t, err := dateutils.ParseUserDate(from, loc)
		if err != nil {
			return r, fmt.Errorf("invalid --from: %w", err)
		}
		r.Start = dateutils.StartOfDay(t, loc)
	}
	if to != "" {
		t, err := dateutils.ParseUserDate(to, loc)
		if err != nil {
			return r, fmt.Errorf("invalid --to: %w", err)
		}
		r.End = dateutils.EndOfDay(t, loc)
	}
	if r.End.Before(r.Start) {
		return r, fmt.Errorf("--to must not be before --from")
	}
	return r, nil
}

// DefaultOutput names the export file after the range and format.
func DefaultOutput(r dateutils.DateRange, format string, loc *time.Location) string {
	return fmt.Sprintf("receipts-%s-%s.%s", dateutils.DayKey(r.Start, loc), dateutils.DayKey(r.End, loc), format)
}

func exportFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	if err := validation.IsValidOutputFormat(formatFlag, exporter.FormatCSV, exporter.FormatXLSX); err != nil {
		return err
	}
	format := strings.ToLower(formatFlag)
	loc := c.GetLocation()

	r, err := ResolveRange(fromFlag, toFlag, time.Now(), loc)
	if err != nil {
		return err
	}

	receipts, err := c.GetReceiptStore().GetReceiptsByDateRange(r.Start, r.End)
	if err != nil {
		return err
	}

	output := outputFlag
	if output == "" {
		output = DefaultOutput(r, format, loc)
	}
	if err := c.GetExporter().WriteFile(output, format, receipts); err != nil {
		return err
	}
	abs, _ := filepath.Abs(output)
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d receipt(s) to %s\n", len(receipts), abs)
	return nil
}
