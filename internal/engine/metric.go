package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSelection is returned when a caller names a metric or column the table does not have.
var ErrInvalidSelection = errors.New("invalid selection")

// Metric identifies a numeric column that can be plotted.
type Metric string

const (
	MetricYear    Metric = ColYear
	MetricPop     Metric = ColPop
	MetricLifeExp Metric = ColLifeExp
	MetricGDP     Metric = ColGDP
)

// Metrics lists the plottable metrics in dropdown order.
var Metrics = []Metric{MetricYear, MetricPop, MetricLifeExp, MetricGDP}

// Valid reports whether m names a numeric column.
func (m Metric) Valid() bool {
	switch m {
	case MetricYear, MetricPop, MetricLifeExp, MetricGDP:
		return true
	}
	return false
}

// Axis describes how a metric is drawn.
type Axis struct {
	Scale string    // "linear" or "log"
	Range []float64 // [min, max]; log ranges are in log10 units. Empty = auto.
}

// MetricInfo is the display configuration for one metric.
type MetricInfo struct {
	Label      string
	Axis       Axis      // scatter axis
	TrendRange []float64 // y range on the country chart
}

// Catalogue maps metrics to their display configuration.
type Catalogue map[Metric]MetricInfo

// DefaultCatalogue returns the labels and axis ranges of the classic gapminder figures.
func DefaultCatalogue() Catalogue {
	return Catalogue{
		MetricYear:    {Label: "year", Axis: Axis{Scale: "linear"}},
		MetricPop:     {Label: "population", Axis: Axis{Scale: "linear"}},
		MetricLifeExp: {Label: "Life Expectancy", Axis: Axis{Scale: "linear", Range: []float64{20, 90}}},
		MetricGDP: {
			Label:      "GDP Per Capita",
			Axis:       Axis{Scale: "log", Range: []float64{2.3, 4.8}},
			TrendRange: []float64{1000, 50000},
		},
	}
}

// Label returns the display label of m, falling back to the column name.
func (c Catalogue) Label(m Metric) string {
	if info, ok := c[m]; ok && info.Label != "" {
		return info.Label
	}
	return string(m)
}

// Resolve accepts either a column name or a display label.
func (c Catalogue) Resolve(s string) (Metric, error) {
	s = strings.TrimSpace(s)
	if m := Metric(s); m.Valid() {
		return m, nil
	}
	for _, m := range Metrics {
		if strings.EqualFold(c.Label(m), s) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown metric %q", ErrInvalidSelection, s)
}
