// Package chart renders report charts as PNG images.
package chart

import (
	"bytes"
	"fmt"
	"strings"

	"fjacquet/receipt-bot/internal/currencyutils"
	"fjacquet/receipt-bot/internal/models"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Options styles the rendered charts. Colors are "#rrggbb" strings.
type Options struct {
	Width           int
	Height          int
	BackgroundColor string
	TextColor       string
	Palette         []string
	CurrencySymbol  string
}

// Renderer draws category pies and daily bar charts.
type Renderer struct {
	width   int
	height  int
	bg      drawing.Color
	text    drawing.Color
	palette []drawing.Color
	symbol  string
}

// NewRenderer builds a Renderer, falling back to sane defaults for
// missing or malformed options.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		width:  opts.Width,
		height: opts.Height,
		bg:     parseColor(opts.BackgroundColor, drawing.ColorBlack),
		text:   parseColor(opts.TextColor, drawing.ColorWhite),
		symbol: opts.CurrencySymbol,
	}
	if r.width <= 0 {
		r.width = 800
	}
	if r.height <= 0 {
		r.height = 600
	}
	for _, c := range opts.Palette {
		r.palette = append(r.palette, parseColor(c, drawing.ColorBlue))
	}
	if len(r.palette) == 0 {
		r.palette = []drawing.Color{drawing.ColorBlue, drawing.ColorRed, drawing.ColorGreen}
	}
	return r
}

func parseColor(hex string, fallback drawing.Color) drawing.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 3 && len(hex) != 6 {
		return fallback
	}
	for _, c := range strings.ToLower(hex) {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return fallback
		}
	}
	return drawing.ColorFromHex(hex)
}

func (r *Renderer) color(i int) drawing.Color {
	return r.palette[i%len(r.palette)]
}

// CategoryPie renders one slice per category. Non-positive amounts are
// skipped; it returns nil when nothing is left to draw.
func (r *Renderer) CategoryPie(title string, slices []models.CategoryAmount) ([]byte, error) {
	var values []gochart.Value
	for _, s := range slices {
		if !s.Amount.IsPositive() {
			continue
		}
		amount, _ := s.Amount.Float64()
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s %s", s.Label, currencyutils.FormatAmount(s.Amount, r.symbol)),
			Value: amount,
			Style: gochart.Style{
				FillColor:   r.color(len(values)),
				StrokeColor: r.bg,
				StrokeWidth: 2,
				FontColor:   drawing.ColorBlack,
				FontSize:    11,
			},
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := gochart.PieChart{
		Title:      title,
		TitleStyle: gochart.Style{FontColor: r.text, FontSize: 16},
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{FillColor: r.bg, Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		Canvas:     gochart.Style{FillColor: r.bg},
		Values:     values,
	}

	var buf bytes.Buffer
	if err := pie.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("error rendering pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

// DailyBars renders one bar per day. It returns nil when there are no days
// or every day is zero.
func (r *Renderer) DailyBars(title string, days []models.DayTotal) ([]byte, error) {
	if len(days) == 0 {
		return nil, nil
	}
	anyPositive := false
	maxAmount := 0.0
	labelLayout := "01/02"
	if len(days) > 7 {
		labelLayout = "2"
	}

	bars := make([]gochart.Value, 0, len(days))
	for i, d := range days {
		if d.Amount.IsPositive() {
			anyPositive = true
		}
		amount, _ := d.Amount.Float64()
		if amount > maxAmount {
			maxAmount = amount
		}
		bars = append(bars, gochart.Value{
			Label: d.Day.Format(labelLayout),
			Value: amount,
			Style: gochart.Style{FillColor: r.color(i), StrokeColor: r.color(i)},
		})
	}
	if !anyPositive {
		return nil, nil
	}

	spacing := 4
	barWidth := (r.width-120)/len(bars) - spacing
	if barWidth < 4 {
		barWidth = 4
	}

	axisStyle := gochart.Style{FontColor: r.text, StrokeColor: r.text, FontSize: 9}
	bar := gochart.BarChart{
		Title:      title,
		TitleStyle: gochart.Style{FontColor: r.text, FontSize: 16},
		Width:      r.width,
		Height:     r.height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: gochart.Style{FillColor: r.bg, Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		Canvas:     gochart.Style{FillColor: r.bg},
		XAxis:      axisStyle,
		// The Y axis starts at zero so a series of equal totals still has a range.
		YAxis: gochart.YAxis{
			Style:          axisStyle,
			Range:          &gochart.ContinuousRange{Min: 0, Max: maxAmount * 1.1},
			ValueFormatter: func(v interface{}) string { return r.symbol + gochart.FloatValueFormatter(v) },
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bar.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("error rendering bar chart: %w", err)
	}
	return buf.Bytes(), nil
}
