package engine

import "fmt"

// YearView is the slice of the table for one year, exposed as aligned columns.
type YearView struct {
	Year           int
	Countries      []string
	Pops           []float64
	ContinentCodes []int
	LifeExps       []float64
	GDPs           []float64

	// Codes is the continent mapping ContinentCodes was derived from.
	Codes CategoryCodes

	rows *Table
}

type viewOptions struct {
	globalCodes bool
}

// ViewOption tweaks how a YearView is built.
type ViewOption func(*viewOptions)

// WithGlobalCodes colors continents with the codes derived over the whole table,
// so a continent keeps its code from one year to the next.
func WithGlobalCodes() ViewOption {
	return func(o *viewOptions) { o.globalCodes = true }
}

// Year returns the rows for year in table order. A year with no rows gives an empty view.
func (t *Table) Year(year int, opts ...ViewOption) *YearView {
	var o viewOptions
	for _, opt := range opts {
		opt(&o)
	}

	sub := t.filter(func(i int) bool { return t.years[i] == year })

	var codes CategoryCodes
	if o.globalCodes {
		codes = t.GlobalCodes()
		codes.Recoded = codes.Recode(sub.continents)
	} else {
		codes = remapValues(sub.continents)
	}

	return &YearView{
		Year:           year,
		Countries:      sub.countries,
		Pops:           sub.pops,
		ContinentCodes: codes.Recoded,
		LifeExps:       sub.lifeExps,
		GDPs:           sub.gdps,
		Codes:          codes,
		rows:           sub,
	}
}

// Len returns the number of rows in the view.
func (v *YearView) Len() int { return len(v.Countries) }

// Metric returns a copy of the column for m, aligned with the view's rows.
func (v *YearView) Metric(m Metric) ([]float64, error) {
	col, ok := v.rows.numericColumn(m)
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric %q", ErrInvalidSelection, m)
	}
	return col, nil
}

// Remap derives codes for a categorical column over the view's rows only.
func (v *YearView) Remap(column string) (CategoryCodes, error) {
	return Remap(v.rows, column)
}

// EntitySeries is one country's values of a metric over time, in table order.
type EntitySeries struct {
	Name   string // normalized name that was matched
	Metric Metric
	Found  bool
	Years  []int
	Values []float64
}

// Entity looks a country up by name, ignoring case. An unknown country is not an error:
// the series comes back empty with Found=false.
func (t *Table) Entity(name string, m Metric) (EntitySeries, error) {
	return t.EntityExact(NormalizeName(name), m)
}

// EntityExact looks a country up by its exact name, as shown on the scatter labels.
func (t *Table) EntityExact(name string, m Metric) (EntitySeries, error) {
	if !m.Valid() {
		return EntitySeries{}, fmt.Errorf("%w: unknown metric %q", ErrInvalidSelection, m)
	}

	sub := t.filter(func(i int) bool { return t.countries[i] == name })
	values, _ := sub.numericColumn(m)

	return EntitySeries{
		Name:   name,
		Metric: m,
		Found:  sub.Len() > 0,
		Years:  sub.years,
		Values: values,
	}, nil
}
