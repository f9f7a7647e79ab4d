package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"gapminder/internal/config"
	"gapminder/internal/engine"
	"gapminder/internal/render"
)

type renderOpts struct {
	x, y    string
	year    int
	country string
	metric  string
	outDir  string
}

func newRenderCmd(f *flags) *cobra.Command {
	var o renderOpts
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write both charts (PNG and JSON) for one selection to a directory",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			table, err := engine.LoadTable(cfg.DataPath)
			if err != nil {
				return err
			}
			return renderCharts(cfg, table, o)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&o.x, "x", string(engine.MetricGDP), "x metric (column or label)")
	fs.StringVar(&o.y, "y", string(engine.MetricLifeExp), "y metric (column or label)")
	fs.IntVar(&o.year, "year", 0, "year of the world chart (default: first year in the data)")
	fs.StringVar(&o.country, "country", "", "country of the trend chart (default from config)")
	fs.StringVar(&o.metric, "metric", string(engine.MetricGDP), "metric of the trend chart")
	fs.StringVarP(&o.outDir, "out", "o", ".", "output directory")
	return cmd
}

func renderCharts(cfg *config.Config, table *engine.Table, o renderOpts) error {
	b := engine.NewBuilder(cfg.BuilderConfig())
	cat := b.Catalogue()

	x, err := cat.Resolve(o.x)
	if err != nil {
		return err
	}
	y, err := cat.Resolve(o.y)
	if err != nil {
		return err
	}
	m, err := cat.Resolve(o.metric)
	if err != nil {
		return err
	}
	year := o.year
	if years := table.Years(); year == 0 && len(years) > 0 {
		year = years[0]
	}
	country := o.country
	if country == "" {
		country = cfg.DefaultCountry
	}

	world, err := b.Scatter(table, year, x, y)
	if err != nil {
		return err
	}
	trend, err := b.Trend(table, country, m, false)
	if err != nil {
		return err
	}
	if world.Empty {
		log.Warnf("no rows for year %d", year)
	}
	if trend.Empty {
		log.Warnf("no rows for country %q", trend.Country)
	}

	opt := render.Options{Width: cfg.Chart.Width, Height: cfg.Chart.Height}
	worldPNG, err := render.Scatter(world, opt)
	if err != nil {
		return err
	}
	trendPNG, err := render.Trend(trend, opt)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	files := map[string]any{
		"world.png":    worldPNG,
		"country.png":  trendPNG,
		"world.json":   world,
		"country.json": trend,
	}
	for name, v := range files {
		if err := writeOutput(filepath.Join(o.outDir, name), v); err != nil {
			return err
		}
	}
	log.Infof("Wrote charts for %d / %s to %s", year, trend.Country, o.outDir)
	return nil
}

func writeOutput(path string, v any) error {
	data, ok := v.([]byte)
	if !ok {
		var err error
		if data, err = json.MarshalIndent(v, "", "  "); err != nil {
			return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
