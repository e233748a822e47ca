// Package report prints spending reports from the command line
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/receipt-bot/cmd/root"
	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/fileutils"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/report"
	"fjacquet/receipt-bot/internal/validation"

	"github.com/spf13/cobra"
)

// Period names accepted on the command line.
const (
	PeriodDay        = "day"
	PeriodWeek       = "week"
	PeriodMonth      = "month"
	PeriodYear       = "year"
	PeriodYearDetail = "year-detail"
)

// Cmd represents the report command
var Cmd = &cobra.Command{
	Use:       "report [day|week|month|year|year-detail]",
	Short:     "Print a spending report",
	ValidArgs: []string{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodYearDetail},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Long: `Print the same reports the bot sends, as tables or as JSON/YAML.

The week report covers the seven days ending on --date. Month and year
reports cover the calendar month or year containing --date. Yearly reports
keep recurring expenses separate; year-detail adds the plain-English summary.

Example:
  receipt-bot report month --date 2024-02-14 --charts-dir ./charts`,
	RunE: reportFunc,
}

var (
	dateFlag   string
	formatFlag string
	chartsDir  string
)

func init() {
	Cmd.Flags().StringVar(&dateFlag, "date", "", "Report date (YYYY-MM-DD, default today)")
	Cmd.Flags().StringVarP(&formatFlag, "format", "f", "text", "Output format: text, json or yaml")
	Cmd.Flags().StringVar(&chartsDir, "charts-dir", "", "Write chart PNG files to this directory")
}

// KindForPeriod maps a period name to the report kind it produces.
func KindForPeriod(period string) (report.Kind, error) {
	switch period {
	case PeriodDay:
		return report.KindDaily, nil
	case PeriodWeek:
		return report.KindWeekly, nil
	case PeriodMonth:
		return report.KindMonthly, nil
	case PeriodYear, PeriodYearDetail:
		return report.KindYearly, nil
	}
	return "", fmt.Errorf("unknown report period: %s", period)
}

func reportFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	if err := validation.IsValidOutputFormat(formatFlag, "text", "json", "yaml"); err != nil {
		return err
	}
	format := strings.ToLower(formatFlag)

	kind, err := KindForPeriod(args[0])
	if err != nil {
		return err
	}

	at := time.Now()
	if dateFlag != "" {
		at, err = dateutils.ParseUserDate(dateFlag, c.GetLocation())
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	gen := c.GetReportGenerator()
	var rep *report.Report
	if args[0] == PeriodYearDetail {
		rep, err = gen.YearlyDetailReport(at)
	} else {
		rep, err = gen.Generate(kind, at)
	}
	if err != nil {
		return err
	}

	if chartsDir != "" {
		files, err := WriteCharts(chartsDir, rep)
		if err != nil {
			return err
		}
		for _, f := range files {
			c.GetLogger().Info("Chart written", logging.F(logging.FieldOutputFile, f))
		}
	}

	out := cmd.OutOrStdout()
	if format != "text" {
		data, err := report.Encode(rep, format)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	WriteTable(out, rep, gen.Symbol(), c.GetLocation())
	if rep.English != "" {
		fmt.Fprintln(out)
		fmt.Fprint(out, rep.English)
	}
	return nil
}

// WriteCharts saves the report's chart images under dir and returns the
// paths written.
func WriteCharts(dir string, rep *report.Report) ([]string, error) {
	if err := fileutils.EnsureDirectoryExists(dir, models.PermissionDirectory); err != nil {
		return nil, fmt.Errorf("error creating charts directory: %w", err)
	}
	base := fmt.Sprintf("%s-%s", rep.Kind, rep.Start.Format(dateutils.DateLayoutISO))
	charts := []struct {
		suffix string
		image  []byte
	}{
		{"categories", rep.Charts.Category},
		{"daily", rep.Charts.Daily},
	}
	var written []string
	for _, ch := range charts {
		if len(ch.image) == 0 {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s-%s.png", base, ch.suffix))
		if err := fileutils.WriteFileAtomic(path, ch.image, models.PermissionDataFile); err != nil {
			return written, fmt.Errorf("error writing chart: %w", err)
		}
		written = append(written, path)
	}
	return written, nil
}
