package render

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"gradecalc/internal/model"
)

type ChartFormat string

const (
	ChartPNG ChartFormat = "png"
	ChartSVG ChartFormat = "svg"
)

func (f ChartFormat) ContentType() string {
	if f == ChartSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

var barColor = drawing.ColorFromHex("87ceeb")

// BarChart builds one bar per chart point with the point's value printed
// above it.
func BarChart(data model.ChartData) chart.BarChart {
	bars := make([]chart.Value, 0, len(data.Points))
	for _, p := range data.Points {
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: p.Value,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor, StrokeWidth: 1},
		})
	}

	bc := chart.BarChart{
		Title:      data.Title,
		Width:      640,
		Height:     380,
		BarWidth:   60,
		BarSpacing: 40,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 12}},
		YAxis: chart.YAxis{
			Name:  "Marks",
			Range: &chart.ContinuousRange{Min: data.YMin, Max: data.YMax},
		},
		Bars: bars,
	}
	bc.Elements = []chart.Renderable{valueLabels(bc, data)}
	return bc
}

// valueLabels draws each bar's value just above it, centred on the bar.
func valueLabels(bc chart.BarChart, data model.ChartData) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		n := len(data.Points)
		if n == 0 || data.YMax <= data.YMin {
			return
		}

		font := defaults.Font
		if font == nil {
			f, err := chart.GetDefaultFont()
			if err != nil {
				return
			}
			font = f
		}
		r.SetFont(font)
		r.SetFontSize(10)
		r.SetFontColor(drawing.ColorBlack)

		centres := barCentres(box, n, bc.GetBarWidth(), bc.GetBarSpacing())
		yr := chart.ContinuousRange{Min: data.YMin, Max: data.YMax, Domain: box.Height()}
		for i, p := range data.Points {
			label := fmt.Sprintf("%.0f", p.Value)
			tb := r.MeasureText(label)
			y := box.Bottom - yr.Translate(p.Value) - 4
			r.Text(label, centres[i]-tb.Width()/2, y)
		}
	}
}

// barCentres returns the x centre of each of n bars in box, laid out the way
// chart.BarChart draws them: when the bars do not fit, spacing shrinks first
// and then bar width.
func barCentres(box chart.Box, n, barWidth, barSpacing int) []int {
	spacing := barSpacing
	if n*(barWidth+spacing) > box.Width() {
		spacing = 0
		if rest := box.Width() - n*barWidth; rest > 0 {
			spacing = int(math.Ceil(float64(rest) / float64(n)))
		}
	}
	width := barWidth
	if n*(width+spacing) > box.Width() {
		width = 0
		if rest := box.Width() - n*spacing; rest > 0 {
			width = int(math.Ceil(float64(rest) / float64(n)))
		}
	}

	centres := make([]int, n)
	x := box.Left
	for i := range centres {
		centres[i] = x + spacing/2 + width/2
		x += width + spacing
	}
	return centres
}

// Chart renders data as a PNG or SVG image onto w.
func Chart(w io.Writer, data model.ChartData, format ChartFormat) error {
	provider := chart.PNG
	if format == ChartSVG {
		provider = chart.SVG
	}
	if err := BarChart(data).Render(provider, w); err != nil {
		return fmt.Errorf("render chart %q: %w", data.Title, err)
	}
	return nil
}
