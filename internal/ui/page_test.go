package ui

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapminder/internal/engine"
)

type staticSource struct{ t *engine.Table }

func (s staticSource) Table() *engine.Table { return s.t }

func serve(t *testing.T, table *engine.Table, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	NewHandler(staticSource{table}, engine.DefaultCatalogue(), "Netherlands").RegisterRoutes(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDashboardDefaults(t *testing.T) {
	table := engine.NewTable([]engine.Record{
		{Country: "Netherlands", Year: 1957, Continent: "Europe"},
		{Country: "Netherlands", Year: 1952, Continent: "Europe"},
	})

	rec := serve(t, table, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, "Gapminder App")
	assert.Contains(t, body, `<option value="gdpPercap" selected>GDP Per Capita</option>`)
	assert.Contains(t, body, `<option value="lifeExp" selected>Life Expectancy</option>`)
	assert.Contains(t, body, `<option value="1952" selected>1952</option>`)
	assert.Contains(t, body, `<option value="1957">1957</option>`)
	assert.Contains(t, body, `value="Netherlands"`)
	assert.Contains(t, body, `src="/api/world.png?x=gdpPercap&amp;y=lifeExp&amp;year=1952"`)
	assert.Contains(t, body, `src="/api/country.png?name=Netherlands"`)
}

func TestDashboardSelection(t *testing.T) {
	table := engine.NewTable([]engine.Record{{Country: "Chad", Year: 1952, Continent: "Africa"}})

	rec := serve(t, table, "/?x=population&y=year&year=2007&country=new+zealand")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `<option value="pop" selected>population</option>`)
	assert.Contains(t, body, `src="/api/world.png?x=population&amp;y=year&amp;year=2007"`)
	assert.Contains(t, body, `src="/api/country.png?name=new+zealand"`)
}

func TestDashboardLoading(t *testing.T) {
	rec := serve(t, nil, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Loading dataset")
}

func TestDashboardHover(t *testing.T) {
	table := engine.NewTable([]engine.Record{
		{Country: "Chad", Year: 1952, Continent: "Africa"},
		{Country: "Korea, Rep.", Year: 1952, Continent: "Asia"},
		{Country: "Peru", Year: 1957, Continent: "Americas"},
	})

	rec := serve(t, table, "/?year=1952&country=Netherlands&hover=Korea%2C+Rep.")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	// Country chart follows the hovered point, matched exactly.
	assert.Contains(t, body, `src="/api/country.png?hover=Korea%2C+Rep."`)
	assert.Contains(t, body, `href="/api/country?hover=Korea%2C+Rep."`)
	assert.NotContains(t, body, `/api/country.png?name=`)

	// Every point of the shown year links back with itself hovered.
	assert.Contains(t, body, `href="/?country=Netherlands&amp;hover=Chad&amp;x=gdpPercap&amp;y=lifeExp&amp;year=1952"`)
	assert.Contains(t, body, `class="hovered">Korea, Rep.</a>`)
	assert.NotContains(t, body, "hover=Peru")
}
