package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gapminder/internal/engine"
	"gapminder/internal/models"
	"gapminder/internal/render"
)

// Options configures a Handler.
type Options struct {
	Chart          render.Options
	DefaultCountry string
	// Registry receives the handler's metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
}

type Handler struct {
	table   atomic.Pointer[engine.Table]
	builder *engine.Builder
	opts    Options
	metrics *metrics
}

// NewHandler creates a handler. table may be nil: the API answers 503 until SetTable is called.
func NewHandler(table *engine.Table, builder *engine.Builder, opts Options) *Handler {
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.DefaultCountry == "" {
		opts.DefaultCountry = "Netherlands"
	}
	h := &Handler{
		builder: builder,
		opts:    opts,
		metrics: newMetrics(opts.Registry),
	}
	if table != nil {
		h.SetTable(table)
	}
	return h
}

// SetTable publishes the loaded dataset. Readers see either nothing or the whole table.
func (h *Handler) SetTable(t *engine.Table) {
	h.table.Store(t)
}

// Table returns the loaded dataset, or nil while loading.
func (h *Handler) Table() *engine.Table {
	return h.table.Load()
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/health", h.GetHealth)
	api.GET("/years", h.GetYears)
	api.GET("/metrics", h.GetMetrics)
	api.GET("/countries", h.GetCountries)
	api.GET("/world", h.GetWorld)
	api.GET("/world.png", h.GetWorldPNG)
	api.GET("/country", h.GetCountry)
	api.GET("/country.png", h.GetCountryPNG)

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.opts.Registry, promhttp.HandlerOpts{})))
}

// --- HELPERS ---

func (h *Handler) ready() (*engine.Table, error) {
	t := h.table.Load()
	if t == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is still loading")
	}
	return t, nil
}

// selectionError maps engine errors onto HTTP errors.
func selectionError(err error) error {
	if errors.Is(err, engine.ErrInvalidSelection) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return err
}

type worldParams struct {
	x, y engine.Metric
	year int
}

// worldSelection reads x, y and year, defaulting to GDP vs life expectancy in the first year.
func (h *Handler) worldSelection(c echo.Context, t *engine.Table) (worldParams, error) {
	cat := h.builder.Catalogue()
	var (
		p   worldParams
		err error
	)
	if p.x, err = cat.Resolve(paramOr(c, "x", string(engine.MetricGDP))); err != nil {
		return p, selectionError(err)
	}
	if p.y, err = cat.Resolve(paramOr(c, "y", string(engine.MetricLifeExp))); err != nil {
		return p, selectionError(err)
	}

	if raw := c.QueryParam("year"); raw != "" {
		if p.year, err = strconv.Atoi(raw); err != nil {
			return p, echo.NewHTTPError(http.StatusBadRequest, "year must be an integer")
		}
	} else if years := t.Years(); len(years) > 0 {
		p.year = years[0]
	}
	return p, nil
}

type countryParams struct {
	name   string
	exact  bool
	metric engine.Metric
}

// countrySelection reads the country from hover (exact) or name (normalized).
func (h *Handler) countrySelection(c echo.Context) (countryParams, error) {
	p := countryParams{name: h.opts.DefaultCountry}
	if hover := c.QueryParam("hover"); hover != "" {
		p.name, p.exact = hover, true
	} else if name := c.QueryParam("name"); name != "" {
		p.name = name
	}

	m, err := h.builder.Catalogue().Resolve(paramOr(c, "metric", string(engine.MetricGDP)))
	if err != nil {
		return p, selectionError(err)
	}
	p.metric = m
	return p, nil
}

func paramOr(c echo.Context, name, def string) string {
	if v := strings.TrimSpace(c.QueryParam(name)); v != "" {
		return v
	}
	return def
}

// --- HANDLERS ---

func (h *Handler) GetHealth(c echo.Context) error {
	t := h.table.Load()
	if t == nil {
		return c.JSON(http.StatusServiceUnavailable, models.Health{Status: "loading"})
	}
	return c.JSON(http.StatusOK, models.Health{Status: "ok", Rows: t.Len()})
}

// slider bounds and marks
func (h *Handler) GetYears(c echo.Context) error {
	t, err := h.ready()
	if err != nil {
		return err
	}
	years := t.Years()
	out := models.YearRange{Years: years}
	if len(years) > 0 {
		out.Min, out.Max = years[0], years[len(years)-1]
	}
	return c.JSON(http.StatusOK, out)
}

// dropdown options
func (h *Handler) GetMetrics(c echo.Context) error {
	cat := h.builder.Catalogue()
	out := make([]models.Option, 0, len(engine.Metrics))
	for _, m := range engine.Metrics {
		out = append(out, models.Option{Label: cat.Label(m), Value: string(m)})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetCountries(c echo.Context) error {
	t, err := h.ready()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t.Countries())
}

func (h *Handler) GetWorld(c echo.Context) error {
	chart, err := h.world(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chart)
}

func (h *Handler) GetWorldPNG(c echo.Context) error {
	chart, err := h.world(c)
	if err != nil {
		return err
	}
	b, err := render.Scatter(chart, h.opts.Chart)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", b)
}

func (h *Handler) GetCountry(c echo.Context) error {
	chart, err := h.country(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chart)
}

func (h *Handler) GetCountryPNG(c echo.Context) error {
	chart, err := h.country(c)
	if err != nil {
		return err
	}
	b, err := render.Trend(chart, h.opts.Chart)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", b)
}

func (h *Handler) world(c echo.Context) (models.ScatterChart, error) {
	t, err := h.ready()
	if err != nil {
		return models.ScatterChart{}, err
	}
	p, err := h.worldSelection(c, t)
	if err != nil {
		h.metrics.observe("world", outcomeInvalid, 0)
		return models.ScatterChart{}, err
	}

	start := time.Now()
	chart, err := h.builder.Scatter(t, p.year, p.x, p.y)
	if err != nil {
		h.metrics.observe("world", outcomeInvalid, 0)
		return models.ScatterChart{}, selectionError(err)
	}
	h.metrics.observe("world", outcomeFor(chart.Empty), time.Since(start))
	log.Debugf("world chart year=%d x=%s y=%s points=%d", p.year, p.x, p.y, len(chart.Points.X))
	return chart, nil
}

func (h *Handler) country(c echo.Context) (models.TrendChart, error) {
	t, err := h.ready()
	if err != nil {
		return models.TrendChart{}, err
	}
	p, err := h.countrySelection(c)
	if err != nil {
		h.metrics.observe("country", outcomeInvalid, 0)
		return models.TrendChart{}, err
	}

	start := time.Now()
	chart, err := h.builder.Trend(t, p.name, p.metric, p.exact)
	if err != nil {
		h.metrics.observe("country", outcomeInvalid, 0)
		return models.TrendChart{}, selectionError(err)
	}
	h.metrics.observe("country", outcomeFor(chart.Empty), time.Since(start))
	log.Debugf("country chart name=%q exact=%v metric=%s points=%d", p.name, p.exact, p.metric, len(chart.Series.X))
	return chart, nil
}
