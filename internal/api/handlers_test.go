package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapminder/internal/engine"
	"gapminder/internal/models"
	"gapminder/internal/render"
)

func testTable() *engine.Table {
	return engine.NewTable([]engine.Record{
		{Country: "Afghanistan", Year: 1952, Pop: 8425333, Continent: "Asia", LifeExp: 28.8, GDP: 779.4},
		{Country: "Netherlands", Year: 1952, Pop: 10381988, Continent: "Europe", LifeExp: 72.1, GDP: 8941.6},
		{Country: "Netherlands", Year: 1957, Pop: 11026383, Continent: "Europe", LifeExp: 73.0, GDP: 11276.2},
		{Country: "New Zealand", Year: 1957, Pop: 2229407, Continent: "Oceania", LifeExp: 70.3, GDP: 12247.4},
	})
}

func newServer(table *engine.Table) (*echo.Echo, *Handler) {
	e := echo.New()
	h := NewHandler(table, engine.NewBuilder(engine.BuilderConfig{}), Options{
		Chart: render.Options{Width: 320, Height: 240},
	})
	h.RegisterRoutes(e)
	return e, h
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestLoadingAnswers503(t *testing.T) {
	e, h := newServer(nil)

	for _, path := range []string{"/api/world", "/api/country", "/api/years", "/api/countries", "/api/world.png"} {
		assert.Equal(t, http.StatusServiceUnavailable, get(e, path).Code, path)
	}
	rec := get(e, "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "loading", decode[models.Health](t, rec).Status)

	h.SetTable(testTable())
	rec = get(e, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Health{Status: "ok", Rows: 4}, decode[models.Health](t, rec))
}

func TestGetWorldDefaults(t *testing.T) {
	e, _ := newServer(testTable())

	rec := get(e, "/api/world")
	require.Equal(t, http.StatusOK, rec.Code)
	chart := decode[models.ScatterChart](t, rec)

	assert.Equal(t, 1952, chart.Year)
	assert.Equal(t, "Life Expectancy and GDP Per Capita", chart.Title)
	assert.Equal(t, []string{"Afghanistan", "Netherlands"}, chart.Points.Label)
	assert.Equal(t, []float64{779.4, 8941.6}, chart.Points.X)
	assert.Equal(t, []int{0, 1}, chart.Points.Color)
}

func TestGetWorldSelection(t *testing.T) {
	e, _ := newServer(testTable())

	rec := get(e, "/api/world?x=population&y=gdpPercap&year=1957")
	require.Equal(t, http.StatusOK, rec.Code)
	chart := decode[models.ScatterChart](t, rec)

	assert.Equal(t, "GDP Per Capita and population", chart.Title)
	assert.Equal(t, []float64{11026383, 2229407}, chart.Points.X)
	assert.Equal(t, []float64{11276.2, 12247.4}, chart.Points.Y)
	assert.Equal(t, []string{"Europe", "Oceania"}, chart.Categories)
}

func TestGetWorldEmptyYear(t *testing.T) {
	e, _ := newServer(testTable())

	rec := get(e, "/api/world?year=2100")
	require.Equal(t, http.StatusOK, rec.Code)
	chart := decode[models.ScatterChart](t, rec)
	assert.True(t, chart.Empty)
	assert.Empty(t, chart.Points.X)
	assert.Contains(t, rec.Body.String(), `"x":[]`)
}

func TestGetWorldBadRequest(t *testing.T) {
	e, _ := newServer(testTable())

	assert.Equal(t, http.StatusBadRequest, get(e, "/api/world?x=continent").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/api/world?y=nope").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/api/world?year=last").Code)
}

func TestGetCountry(t *testing.T) {
	e, _ := newServer(testTable())

	rec := get(e, "/api/country?name=netherlands&metric=Life+Expectancy")
	require.Equal(t, http.StatusOK, rec.Code)
	chart := decode[models.TrendChart](t, rec)

	assert.Equal(t, "Netherlands", chart.Country)
	assert.Equal(t, "lifeExp", chart.Metric)
	assert.Equal(t, []int{1952, 1957}, chart.Series.X)
	assert.Equal(t, []float64{72.1, 73.0}, chart.Series.Y)
	assert.Equal(t, "Life Expectancy of Netherlands throughout the years", chart.Series.Title)
}

func TestGetCountryDefaultsAndHover(t *testing.T) {
	e, _ := newServer(testTable())

	chart := decode[models.TrendChart](t, get(e, "/api/country"))
	assert.Equal(t, "Netherlands", chart.Country)
	assert.Equal(t, "gdpPercap", chart.Metric)

	// hover wins over name and is matched verbatim
	chart = decode[models.TrendChart](t, get(e, "/api/country?name=netherlands&hover=New+Zealand"))
	assert.Equal(t, "New Zealand", chart.Country)
	assert.Equal(t, []int{1957}, chart.Series.X)

	chart = decode[models.TrendChart](t, get(e, "/api/country?hover=new+zealand"))
	assert.True(t, chart.Empty)
}

func TestGetCountryUnknown(t *testing.T) {
	e, _ := newServer(testTable())

	rec := get(e, "/api/country?name=atlantis")
	require.Equal(t, http.StatusOK, rec.Code)
	chart := decode[models.TrendChart](t, rec)
	assert.True(t, chart.Empty)
	assert.Empty(t, chart.Series.X)

	assert.Equal(t, http.StatusBadRequest, get(e, "/api/country?metric=continent").Code)
}

func TestGetPNG(t *testing.T) {
	e, _ := newServer(testTable())

	for _, path := range []string{
		"/api/world.png",
		"/api/world.png?year=2100",
		"/api/country.png?name=netherlands",
		"/api/country.png?name=atlantis",
	} {
		rec := get(e, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType), path)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"), path)
	}
	assert.Equal(t, http.StatusBadRequest, get(e, "/api/country.png?metric=country").Code)
}

func TestGetYearsMetricsCountries(t *testing.T) {
	e, _ := newServer(testTable())

	years := decode[models.YearRange](t, get(e, "/api/years"))
	assert.Equal(t, models.YearRange{Min: 1952, Max: 1957, Years: []int{1952, 1957}}, years)

	opts := decode[[]models.Option](t, get(e, "/api/metrics"))
	assert.Equal(t, []models.Option{
		{Label: "year", Value: "year"},
		{Label: "population", Value: "pop"},
		{Label: "Life Expectancy", Value: "lifeExp"},
		{Label: "GDP Per Capita", Value: "gdpPercap"},
	}, opts)

	countries := decode[[]string](t, get(e, "/api/countries"))
	assert.Equal(t, []string{"Afghanistan", "Netherlands", "New Zealand"}, countries)
}

func TestPrometheusMetrics(t *testing.T) {
	e, _ := newServer(testTable())

	get(e, "/api/world")
	get(e, "/api/world?year=2100")
	get(e, "/api/country?metric=continent")

	rec := get(e, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `gapminder_chart_requests_total{chart="world",outcome="ok"} 1`)
	assert.Contains(t, body, `gapminder_chart_requests_total{chart="world",outcome="empty"} 1`)
	assert.Contains(t, body, `gapminder_chart_requests_total{chart="country",outcome="invalid"} 1`)
	assert.Contains(t, body, "gapminder_chart_build_seconds")
}
