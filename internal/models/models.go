package models

// Axis is the layout of one chart axis.
type Axis struct {
	Title string    `json:"title"`
	Type  string    `json:"type"`
	Range []float64 `json:"range,omitempty"`
}

// PointSet is the scatter trace: one entry per country, all slices aligned.
type PointSet struct {
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	Label []string  `json:"label"`
	Size  []float64 `json:"size"`
	Color []int     `json:"color"`
}

type ScatterChart struct {
	Title      string   `json:"title"`
	Year       int      `json:"year"`
	XAxis      Axis     `json:"xaxis"`
	YAxis      Axis     `json:"yaxis"`
	Points     PointSet `json:"points"`
	Categories []string `json:"categories"` // color code -> continent
	Empty      bool     `json:"empty"`
}

// LineSeries is the country trace: years on x, metric values on y.
type LineSeries struct {
	X     []int     `json:"x"`
	Y     []float64 `json:"y"`
	Title string    `json:"title"`
}

type TrendChart struct {
	Country string     `json:"country"`
	Metric  string     `json:"metric"`
	XAxis   Axis       `json:"xaxis"`
	YAxis   Axis       `json:"yaxis"`
	Series  LineSeries `json:"series"`
	Empty   bool       `json:"empty"`
}

// --- DASHBOARD METADATA ---

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type YearRange struct {
	Min   int   `json:"min"`
	Max   int   `json:"max"`
	Years []int `json:"years"`
}

type Health struct {
	Status string `json:"status"`
	Rows   int    `json:"rows,omitempty"`
}
