// Package report renders contribution data as JSON exports and PNG bar charts.
package report

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// Bar is one column of a chart.
type Bar struct {
	Label string
	Value int64
}

const (
	chartHeight  = 240
	chartMargin  = 20
	barWidth     = 24
	barGap       = 8
	minPlotWidth = 160
)

var (
	background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	axisColor  = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	barColor   = color.RGBA{R: 135, G: 206, B: 235, A: 255}
)

// BarChart draws bars left to right, scaled to the largest value, and encodes the
// result as PNG. Labels are not drawn; callers send them alongside as text.
func BarChart(bars []Bar) ([]byte, error) {
	plotWidth := len(bars)*(barWidth+barGap) + barGap
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	width := plotWidth + 2*chartMargin

	img := image.NewRGBA(image.Rect(0, 0, width, chartHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	baseline := chartHeight - chartMargin
	plotHeight := baseline - chartMargin

	var max int64
	for _, b := range bars {
		if b.Value > max {
			max = b.Value
		}
	}

	for i, b := range bars {
		if b.Value <= 0 || max == 0 {
			continue
		}
		h := int(b.Value * int64(plotHeight) / max)
		if h == 0 {
			h = 1
		}
		x0 := chartMargin + barGap + i*(barWidth+barGap)
		rect := image.Rect(x0, baseline-h, x0+barWidth, baseline)
		draw.Draw(img, rect, &image.Uniform{C: barColor}, image.Point{}, draw.Src)
	}

	// Axes
	draw.Draw(img, image.Rect(chartMargin, baseline, chartMargin+plotWidth, baseline+1), &image.Uniform{C: axisColor}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(chartMargin, chartMargin, chartMargin+1, baseline+1), &image.Uniform{C: axisColor}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
