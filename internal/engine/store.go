package engine

import "sort"

// Column names as they appear in the gapminder CSV header.
const (
	ColCountry   = "country"
	ColYear      = "year"
	ColPop       = "pop"
	ColContinent = "continent"
	ColLifeExp   = "lifeExp"
	ColGDP       = "gdpPercap"
)

// Record is one row of the dataset.
type Record struct {
	Country   string
	Year      int
	Pop       float64
	Continent string
	LifeExp   float64
	GDP       float64
}

// Table holds the dataset in Struct-of-Arrays format.
// It is built once and never mutated, so any number of requests may read it concurrently.
type Table struct {
	// Data Columns (Flat Arrays, aligned by row)
	countries  []string
	years      []int
	pops       []float64
	continents []string
	lifeExps   []float64
	gdps       []float64

	// Continent codes over the whole table (first-seen order).
	// Only views that ask for them use these; per-view codes are the default.
	global CategoryCodes
}

// NewTable copies records into a new columnar Table.
func NewTable(records []Record) *Table {
	n := len(records)
	t := &Table{
		countries:  make([]string, n),
		years:      make([]int, n),
		pops:       make([]float64, n),
		continents: make([]string, n),
		lifeExps:   make([]float64, n),
		gdps:       make([]float64, n),
	}
	for i, r := range records {
		t.countries[i] = r.Country
		t.years[i] = r.Year
		t.pops[i] = r.Pop
		t.continents[i] = r.Continent
		t.lifeExps[i] = r.LifeExp
		t.gdps[i] = r.GDP
	}
	t.global = remapValues(t.continents)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.years) }

// Row returns the i-th record.
func (t *Table) Row(i int) Record {
	return Record{
		Country:   t.countries[i],
		Year:      t.years[i],
		Pop:       t.pops[i],
		Continent: t.continents[i],
		LifeExp:   t.lifeExps[i],
		GDP:       t.gdps[i],
	}
}

// GlobalCodes returns the continent codes derived over the full table.
func (t *Table) GlobalCodes() CategoryCodes { return t.global.clone() }

// Years returns the distinct years in ascending order.
func (t *Table) Years() []int {
	seen := make(map[int]struct{})
	out := make([]int, 0)
	for _, y := range t.years {
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Countries returns the distinct country names in first-seen order.
func (t *Table) Countries() []string {
	return remapValues(t.countries).Values
}

// filter returns a new Table with the rows for which keep returns true, in table order.
func (t *Table) filter(keep func(i int) bool) *Table {
	sub := &Table{
		countries:  make([]string, 0),
		years:      make([]int, 0),
		pops:       make([]float64, 0),
		continents: make([]string, 0),
		lifeExps:   make([]float64, 0),
		gdps:       make([]float64, 0),
		global:     t.global,
	}
	for i := range t.years {
		if !keep(i) {
			continue
		}
		sub.countries = append(sub.countries, t.countries[i])
		sub.years = append(sub.years, t.years[i])
		sub.pops = append(sub.pops, t.pops[i])
		sub.continents = append(sub.continents, t.continents[i])
		sub.lifeExps = append(sub.lifeExps, t.lifeExps[i])
		sub.gdps = append(sub.gdps, t.gdps[i])
	}
	return sub
}

// stringColumn returns the backing slice of a categorical column. Callers must not modify it.
func (t *Table) stringColumn(name string) ([]string, bool) {
	switch name {
	case ColCountry:
		return t.countries, true
	case ColContinent:
		return t.continents, true
	}
	return nil, false
}

// numericColumn returns a fresh copy of a numeric column.
func (t *Table) numericColumn(m Metric) ([]float64, bool) {
	var src []float64
	switch m {
	case MetricYear:
		out := make([]float64, len(t.years))
		for i, y := range t.years {
			out[i] = float64(y)
		}
		return out, true
	case MetricPop:
		src = t.pops
	case MetricLifeExp:
		src = t.lifeExps
	case MetricGDP:
		src = t.gdps
	default:
		return nil, false
	}
	out := make([]float64, len(src))
	copy(out, src)
	return out, true
}
