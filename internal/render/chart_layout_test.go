package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"gradecalc/internal/model"
)

func TestBarCentres(t *testing.T) {
	tests := []struct {
		name string
		box  chart.Box
		want []int
	}{
		{
			name: "bars fit with full spacing",
			box:  chart.Box{Left: 50, Right: 581},
			want: []int{100, 200, 300, 400, 500},
		},
		{
			name: "spacing squeezed out",
			box:  chart.Box{Left: 10, Right: 310},
			want: []int{40, 100, 160, 220, 280},
		},
		{
			name: "spacing shrunk",
			box:  chart.Box{Left: 0, Right: 400},
			want: []int{40, 120, 200, 280, 360},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, barCentres(tt.box, 5, 60, 40))
		})
	}
}

func TestValueLabelsSitOverBars(t *testing.T) {
	data := model.ChartData{
		Title: "Marks of Asha",
		Points: []model.ChartPoint{
			{Label: "Maths", Value: 90},
			{Label: "Science", Value: 85},
			{Label: "English", Value: 88},
			{Label: "History", Value: 92},
			{Label: "Geography", Value: 95},
		},
		YMax: 100,
	}
	bc := BarChart(data)

	var canvas chart.Box
	bc.Elements = append(bc.Elements, func(r chart.Renderer, box chart.Box, _ chart.Style) {
		canvas = box
	})
	var buf bytes.Buffer
	require.NoError(t, bc.Render(chart.PNG, &buf))
	require.GreaterOrEqual(t, canvas.Width(), 5*(bc.BarWidth+bc.BarSpacing))

	centres := barCentres(canvas, len(data.Points), bc.BarWidth, bc.BarSpacing)
	for i, centre := range centres {
		left := canvas.Left + (bc.BarWidth+bc.BarSpacing)*i + bc.BarSpacing/2
		assert.Equal(t, left+bc.BarWidth/2, centre, "bar %d", i)
		assert.Less(t, centre, left+bc.BarWidth)
	}
}
