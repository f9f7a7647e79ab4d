// Package ui serves the dashboard page: metric dropdowns, a year picker, a country box
// and the two chart images. Each country plotted on the world chart links back to the page
// with that country hovered, which drives the country chart.
package ui

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"gapminder/internal/engine"
)

// TableSource hands out the loaded dataset, or nil while it is loading.
type TableSource interface {
	Table() *engine.Table
}

type Handler struct {
	src            TableSource
	catalogue      engine.Catalogue
	defaultCountry string
}

func NewHandler(src TableSource, catalogue engine.Catalogue, defaultCountry string) *Handler {
	return &Handler{src: src, catalogue: catalogue, defaultCountry: defaultCountry}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Dashboard)
}

// selection is what the form submits; empty fields fall back to the classic defaults.
type selection struct {
	X, Y    string
	Year    int
	Country string
	Hover   string // exact country name, wins over Country
	Years   []int
	Points  []string // countries on the world chart
}

func (s selection) query() url.Values {
	return url.Values{
		"x":    {s.X},
		"y":    {s.Y},
		"year": {strconv.Itoa(s.Year)},
	}
}

// countryQuery picks the country chart: the hovered point if any, else the typed name.
func (s selection) countryQuery() url.Values {
	if s.Hover != "" {
		return url.Values{"hover": {s.Hover}}
	}
	return url.Values{"name": {s.Country}}
}

func (s selection) hoverLink(name string) string {
	q := s.query()
	q.Set("country", s.Country)
	q.Set("hover", name)
	return "/?" + q.Encode()
}

func (h *Handler) Dashboard(c echo.Context) error {
	t := h.src.Table()
	if t == nil {
		return renderHTML(c, http.StatusServiceUnavailable, page(P(Text("Loading dataset, try again in a moment."))))
	}

	sel := selection{
		X:       valueOr(c.QueryParam("x"), string(engine.MetricGDP)),
		Y:       valueOr(c.QueryParam("y"), string(engine.MetricLifeExp)),
		Country: valueOr(c.QueryParam("country"), h.defaultCountry),
		Hover:   c.QueryParam("hover"),
		Years:   t.Years(),
	}
	if y, err := strconv.Atoi(c.QueryParam("year")); err == nil {
		sel.Year = y
	} else if len(sel.Years) > 0 {
		sel.Year = sel.Years[0]
	}
	sel.Points = t.Year(sel.Year).Countries

	return renderHTML(c, http.StatusOK, dashboardPage(h.catalogue, sel))
}

func dashboardPage(cat engine.Catalogue, sel selection) Node {
	world := "/api/world.png?" + sel.query().Encode()
	worldJSON := "/api/world?" + sel.query().Encode()
	country := "/api/country.png?" + sel.countryQuery().Encode()
	countryJSON := "/api/country?" + sel.countryQuery().Encode()

	return page(
		Form(Method("get"), Action("/"), Class("row"),
			metricSelect("x", "x-axis", cat, sel.X),
			metricSelect("y", "y-axis", cat, sel.Y),
			yearSelect(sel.Years, sel.Year),
			Input(Type("text"), ID("country-input"), Name("country"), Value(sel.Country)),
			Button(Type("submit"), Text("Update")),
		),
		Div(Class("row"),
			Div(Class("six columns"),
				Img(ID("world-chart"), Src(world), Alt("world chart")),
				A(Href(worldJSON), Text("data")),
				pointLinks(sel),
			),
			Div(Class("six columns"),
				Img(ID("country-chart"), Src(country), Alt("country chart")),
				A(Href(countryJSON), Text("data")),
			),
		),
	)
}

func page(body ...Node) Node {
	return Doctype(HTML(Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			TitleEl(Text("Gapminder App")),
			StyleEl(Raw(".row{display:flex;gap:1em;flex-wrap:wrap}.six.columns{flex:1}.banner{border-bottom:1px solid #ccc}.points{columns:4;font-size:small}.hovered{font-weight:bold}")),
		),
		Body(
			Div(Class("banner"), H2(Text("Gapminder App"))),
			Group(body),
		),
	))
}

func metricSelect(name, id string, cat engine.Catalogue, current string) Node {
	options := make([]Node, 0, len(engine.Metrics))
	for _, m := range engine.Metrics {
		label := cat.Label(m)
		options = append(options, Option(
			Value(string(m)),
			If(string(m) == current || strings.EqualFold(label, current), Selected()),
			Text(label),
		))
	}
	return Select(ID(id), Name(name), Group(options))
}

func yearSelect(years []int, current int) Node {
	options := make([]Node, 0, len(years))
	for _, y := range years {
		v := strconv.Itoa(y)
		options = append(options, Option(Value(v), If(y == current, Selected()), Text(v)))
	}
	return Select(ID("world-slider"), Name("year"), Group(options))
}

// pointLinks lists the plotted countries; following one hovers it.
func pointLinks(sel selection) Node {
	links := make([]Node, 0, len(sel.Points))
	for _, name := range sel.Points {
		links = append(links, Li(A(
			Href(sel.hoverLink(name)),
			If(name == sel.Hover, Class("hovered")),
			Text(name),
		)))
	}
	return Ul(ID("world-points"), Class("points"), Group(links))
}

func renderHTML(c echo.Context, status int, node Node) error {
	var b strings.Builder
	if err := node.Render(&b); err != nil {
		return err
	}
	return c.HTML(status, b.String())
}

func valueOr(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
