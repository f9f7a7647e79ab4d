package engine

import (
	"fmt"
	"math"

	"gapminder/internal/models"
)

// DefaultSizeFactor scales sqrt(population) into a marker size.
const DefaultSizeFactor = 0.0025

// ColorScope selects which continent codes color the scatter.
type ColorScope string

const (
	ScopeView   ColorScope = "view"   // codes derived per year, like the classic dashboard
	ScopeGlobal ColorScope = "global" // codes derived once over the whole table
)

type BuilderConfig struct {
	SizeFactor  float64
	Catalogue   Catalogue
	ColorScope  ColorScope
	TrendXRange []float64 // year axis of the country chart
}

// Builder turns table queries into chart payloads. It holds no per-request state.
type Builder struct {
	cfg BuilderConfig
}

func NewBuilder(cfg BuilderConfig) *Builder {
	if cfg.SizeFactor <= 0 {
		cfg.SizeFactor = DefaultSizeFactor
	}
	if cfg.Catalogue == nil {
		cfg.Catalogue = DefaultCatalogue()
	}
	if cfg.ColorScope == "" {
		cfg.ColorScope = ScopeView
	}
	if cfg.TrendXRange == nil {
		cfg.TrendXRange = []float64{1950, 2010}
	}
	return &Builder{cfg: cfg}
}

// Catalogue returns the metric labels the builder uses.
func (b *Builder) Catalogue() Catalogue { return b.cfg.Catalogue }

// MarkerSize is factor * sqrt(pop).
func MarkerSize(factor, pop float64) float64 {
	return factor * math.Sqrt(pop)
}

// Scatter builds the world chart: every country in year, x against y,
// sized by population and colored by continent.
func (b *Builder) Scatter(t *Table, year int, x, y Metric) (models.ScatterChart, error) {
	var opts []ViewOption
	if b.cfg.ColorScope == ScopeGlobal {
		opts = append(opts, WithGlobalCodes())
	}
	view := t.Year(year, opts...)

	xs, err := view.Metric(x)
	if err != nil {
		return models.ScatterChart{}, err
	}
	ys, err := view.Metric(y)
	if err != nil {
		return models.ScatterChart{}, err
	}

	sizes := make([]float64, view.Len())
	for i, pop := range view.Pops {
		sizes[i] = MarkerSize(b.cfg.SizeFactor, pop)
	}

	xLabel, yLabel := b.cfg.Catalogue.Label(x), b.cfg.Catalogue.Label(y)
	return models.ScatterChart{
		Title: fmt.Sprintf("%s and %s", yLabel, xLabel),
		Year:  year,
		XAxis: b.axis(x),
		YAxis: b.axis(y),
		Points: models.PointSet{
			X:     xs,
			Y:     ys,
			Label: view.Countries,
			Size:  sizes,
			Color: view.ContinentCodes,
		},
		Categories: view.Codes.Values,
		Empty:      view.Len() == 0,
	}, nil
}

// Trend builds the country chart. With exact set the name is matched verbatim (hover);
// otherwise it is normalized first (text input).
func (b *Builder) Trend(t *Table, name string, m Metric, exact bool) (models.TrendChart, error) {
	var (
		s   EntitySeries
		err error
	)
	if exact {
		s, err = t.EntityExact(name, m)
	} else {
		s, err = t.Entity(name, m)
	}
	if err != nil {
		return models.TrendChart{}, err
	}

	label := b.cfg.Catalogue.Label(m)
	return models.TrendChart{
		Country: s.Name,
		Metric:  string(m),
		XAxis:   models.Axis{Title: "Year", Type: "linear", Range: copyRange(b.cfg.TrendXRange)},
		YAxis:   models.Axis{Title: label, Type: "linear", Range: copyRange(b.cfg.Catalogue[m].TrendRange)},
		Series: models.LineSeries{
			X:     s.Years,
			Y:     s.Values,
			Title: fmt.Sprintf("%s of %s throughout the years", label, s.Name),
		},
		Empty: !s.Found,
	}, nil
}

func (b *Builder) axis(m Metric) models.Axis {
	info := b.cfg.Catalogue[m]
	scale := info.Axis.Scale
	if scale == "" {
		scale = "linear"
	}
	return models.Axis{
		Title: b.cfg.Catalogue.Label(m),
		Type:  scale,
		Range: copyRange(info.Axis.Range),
	}
}

func copyRange(r []float64) []float64 {
	if len(r) == 0 {
		return nil
	}
	return append([]float64(nil), r...)
}
