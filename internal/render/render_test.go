package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapminder/internal/models"
)

var opts = Options{Width: 400, Height: 300}

func decodeSize(t *testing.T, b []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestScatter(t *testing.T) {
	c := models.ScatterChart{
		Title: "Life Expectancy and GDP Per Capita",
		Year:  1952,
		XAxis: models.Axis{Title: "GDP Per Capita", Type: "log", Range: []float64{2.3, 4.8}},
		YAxis: models.Axis{Title: "Life Expectancy", Type: "linear", Range: []float64{20, 90}},
		Points: models.PointSet{
			X:     []float64{779.4, 8941.6, 10556.6},
			Y:     []float64{28.8, 72.1, 69.4},
			Label: []string{"Afghanistan", "Netherlands", "New Zealand"},
			Size:  []float64{7.3, 8.1, 3.5},
			Color: []int{0, 1, 2},
		},
		Categories: []string{"Asia", "Europe", "Oceania"},
	}

	b, err := Scatter(c, opts)
	require.NoError(t, err)
	w, h := decodeSize(t, b)
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)
}

func TestScatterAutoRange(t *testing.T) {
	c := models.ScatterChart{
		Title: "population and year",
		XAxis: models.Axis{Title: "year", Type: "linear"},
		YAxis: models.Axis{Title: "population", Type: "linear"},
		Points: models.PointSet{
			X:     []float64{1952},
			Y:     []float64{1e6},
			Label: []string{"Solo"},
			Size:  []float64{2.5},
			Color: []int{0},
		},
		Categories: []string{"Asia"},
	}
	b, err := Scatter(c, opts)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}

func TestScatterEmptyIsBlank(t *testing.T) {
	b, err := Scatter(models.ScatterChart{Empty: true}, opts)
	require.NoError(t, err)
	w, h := decodeSize(t, b)
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)
}

func TestScatterLogDropsNonPositive(t *testing.T) {
	c := models.ScatterChart{
		XAxis: models.Axis{Type: "log"},
		Points: models.PointSet{
			X:     []float64{0},
			Y:     []float64{50},
			Label: []string{"Zero"},
			Size:  []float64{1},
			Color: []int{0},
		},
	}
	// the only point is unplottable, so we get the blank placeholder
	b, err := Scatter(c, opts)
	require.NoError(t, err)
	w, _ := decodeSize(t, b)
	assert.Equal(t, 400, w)
}

func TestTrend(t *testing.T) {
	c := models.TrendChart{
		Country: "Netherlands",
		Metric:  "gdpPercap",
		XAxis:   models.Axis{Title: "Year", Type: "linear", Range: []float64{1950, 2010}},
		YAxis:   models.Axis{Title: "GDP Per Capita", Type: "linear", Range: []float64{1000, 50000}},
		Series: models.LineSeries{
			X:     []int{1952, 1957, 1962},
			Y:     []float64{8941.6, 11276.2, 12790.8},
			Title: "GDP Per Capita of Netherlands throughout the years",
		},
	}
	b, err := Trend(c, opts)
	require.NoError(t, err)
	w, h := decodeSize(t, b)
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)
}

func TestTrendEmptyIsBlank(t *testing.T) {
	b, err := Trend(models.TrendChart{Country: "Atlantis", Empty: true}, opts)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}

func TestAxisRange(t *testing.T) {
	r := axisRange([]float64{20, 90}, []float64{1, 2})
	assert.Equal(t, 20.0, r.Min)
	assert.Equal(t, 90.0, r.Max)

	r = axisRange(nil, []float64{0, 100})
	assert.Equal(t, -5.0, r.Min)
	assert.Equal(t, 105.0, r.Max)

	r = axisRange(nil, []float64{3})
	assert.Equal(t, 2.0, r.Min)
	assert.Equal(t, 4.0, r.Max)
}
