// Package render draws chart payloads as PNG images.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"gapminder/internal/models"
)

// Options sizes the output image.
type Options struct {
	Width  int
	Height int
}

// Scatter renders the world chart. Dots are sized by the payload size and colored
// on the viridis scale by category code. Log axes plot log10 of the value, so points
// at or below zero are left out.
func Scatter(c models.ScatterChart, opt Options) ([]byte, error) {
	p := c.Points
	logX, logY := c.XAxis.Type == "log", c.YAxis.Type == "log"

	var xs, ys, sizes []float64
	var codes []int
	for i := range p.X {
		x, okX := axisValue(p.X[i], logX)
		y, okY := axisValue(p.Y[i], logY)
		if !okX || !okY {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
		sizes = append(sizes, p.Size[i])
		codes = append(codes, p.Color[i])
	}
	if len(xs) == 0 {
		return blank(opt)
	}

	maxCode := math.Max(float64(len(c.Categories)-1), 1)
	series := chart.ContinuousSeries{
		Name:    c.Title,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
				return math.Max(sizes[index], 1)
			},
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				return chart.Viridis(float64(codes[index]), 0, maxCode)
			},
		},
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("%s (%d)", c.Title, c.Year),
		Width:      opt.Width,
		Height:     opt.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: axisName(c.XAxis), Range: axisRange(c.XAxis.Range, xs)},
		YAxis:      chart.YAxis{Name: axisName(c.YAxis), Range: axisRange(c.YAxis.Range, ys)},
		Series:     []chart.Series{series},
	}
	return encode(ch)
}

// Trend renders the country chart as a line with dots at each year.
func Trend(c models.TrendChart, opt Options) ([]byte, error) {
	s := c.Series
	if len(s.X) == 0 {
		return blank(opt)
	}

	xs := make([]float64, len(s.X))
	for i, year := range s.X {
		xs[i] = float64(year)
	}
	ys := append([]float64(nil), s.Y...)

	ch := chart.Chart{
		Title:      s.Title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: axisName(c.XAxis), Range: axisRange(c.XAxis.Range, xs)},
		YAxis:      chart.YAxis{Name: axisName(c.YAxis), Range: axisRange(c.YAxis.Range, ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    c.Country,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: 2,
					StrokeColor: chart.ColorBlue,
					DotWidth:    3,
					DotColor:    chart.ColorBlue,
				},
			},
		},
	}
	return encode(ch)
}

func encode(ch chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", ch.Title, err)
	}
	return buf.Bytes(), nil
}

func axisValue(v float64, logScale bool) (float64, bool) {
	if !logScale {
		return v, true
	}
	if v <= 0 {
		return 0, false
	}
	return math.Log10(v), true
}

func axisName(a models.Axis) string {
	if a.Type == "log" {
		return a.Title + " (log10)"
	}
	return a.Title
}

// axisRange uses the configured [min, max] when there is one, otherwise the data
// extent padded by 5%.
func axisRange(configured, values []float64) *chart.ContinuousRange {
	if len(configured) == 2 {
		return &chart.ContinuousRange{Min: configured[0], Max: configured[1]}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// blank is what an empty payload renders to; go-chart refuses series without values.
func blank(opt Options) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, opt.Width, opt.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode blank chart: %w", err)
	}
	return buf.Bytes(), nil
}
