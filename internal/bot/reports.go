package bot

import (
	"fmt"
	"html"
	"time"

	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/report"
)

// ReportActions builds the messages for a report of kind covering at. The
// scheduler uses it to post periodic reports.
func (d *Dispatcher) ReportActions(kind report.Kind, at time.Time) ([]Action, error) {
	if kind == report.KindYearly {
		rep, err := d.reports.YearlyReport(at)
		if err != nil {
			return nil, err
		}
		return d.yearlyActions(rep), nil
	}

	var (
		rep *report.Report
		err error
	)
	switch kind {
	case report.KindDaily:
		rep, err = d.reports.DailyReport(at)
	case report.KindWeekly:
		rep, err = d.reports.WeeklyReport(at)
	case report.KindMonthly:
		rep, err = d.reports.MonthlyReport(at)
	default:
		return nil, fmt.Errorf("unsupported report kind: %s", kind)
	}
	if err != nil {
		return nil, err
	}

	var actions []Action
	if !rep.Empty() {
		if rep.Charts.Category != nil {
			actions = append(actions, SendPhoto{Image: rep.Charts.Category})
		}
		if rep.Charts.Daily != nil {
			actions = append(actions, SendPhoto{Image: rep.Charts.Daily, Caption: msgDailyTrendCaption})
		}
	}
	return append(actions, say(report.FormatSummary(rep, d.opts.CurrencySymbol))), nil
}

func (d *Dispatcher) yearlyActions(rep *report.Report) []Action {
	var actions []Action
	if rep.Charts.Category != nil {
		actions = append(actions, SendPhoto{Image: rep.Charts.Category, Caption: msgYearlyChartCaption})
	}
	return append(actions,
		SendText{Text: report.FormatYearly(rep, d.opts.CurrencySymbol), ParseMode: ParseModeHTML},
		SendText{
			Text:   msgYearlyDetailOffer,
			Inline: InlineKeyboard{{{Text: "📄 Generate detailed yearly report", Data: cbYearlyDetail}}},
		},
	)
}

func (d *Dispatcher) onYearlyDetail(chatID int64, log logging.Logger) []Action {
	rep, err := d.reports.YearlyDetailReport(d.opts.Now())
	if err != nil {
		return d.fail(chatID, err, log)
	}
	return []Action{SendText{
		Text:      msgYearlyDetailHeader + html.EscapeString(rep.English) + "\n\n" + msgAnalysisPrompt,
		ParseMode: ParseModeHTML,
	}}
}
