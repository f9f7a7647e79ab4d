// Package config loads dashboard settings from defaults, an optional YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"

	"gapminder/internal/engine"
)

// MetricConfig overrides how one metric is labelled and drawn.
type MetricConfig struct {
	Label      string    `yaml:"label,omitempty"`
	Scale      string    `yaml:"scale,omitempty"`       // linear or log
	Range      []float64 `yaml:"range,omitempty"`       // scatter axis; log10 units for log scale
	TrendRange []float64 `yaml:"trend_range,omitempty"` // y axis of the country chart
}

// ChartConfig sizes the rendered PNGs.
type ChartConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Config holds everything the server needs at startup.
type Config struct {
	DataPath       string `yaml:"data"`        // gapminder CSV
	ListenAddr     string `yaml:"listen_addr"` // HTTP listen address (default ":8080")
	LogLevel       string `yaml:"log_level"`   // debug, info, warn, error (default "info")
	DefaultCountry string `yaml:"default_country"`

	// Payload building
	SizeFactor  float64                 `yaml:"size_factor"`
	ColorScope  string                  `yaml:"color_scope"` // view or global
	TrendXRange []float64               `yaml:"trend_x_range"`
	Metrics     map[string]MetricConfig `yaml:"metrics"`
	Chart       ChartConfig             `yaml:"chart"`

	// Rate limiting
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`   // sustained requests per second (default 20)
	RateLimitBurst int     `yaml:"rate_limit_burst"` // burst capacity (default 40)

	// CORS
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// Warnings collects non-fatal problems found while loading.
	// They are logged by the caller once the logger is configured.
	Warnings []string `yaml:"-"`
}

// Default returns the settings of the classic gapminder dashboard.
func Default() *Config {
	return &Config{
		DataPath:           "dataset/gapminderfive.csv",
		ListenAddr:         ":8080",
		LogLevel:           "info",
		DefaultCountry:     "Netherlands",
		SizeFactor:         engine.DefaultSizeFactor,
		ColorScope:         string(engine.ScopeView),
		TrendXRange:        []float64{1950, 2010},
		Metrics:            map[string]MetricConfig{},
		Chart:              ChartConfig{Width: 640, Height: 480},
		RateLimitRPS:       20,
		RateLimitBurst:     40,
		CORSAllowedOrigins: []string{"*"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if path is set),
// then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GAPMINDER_DATA"); v != "" {
		c.DataPath = v
	}
	if v := os.Getenv("GAPMINDER_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("GAPMINDER_COLOR_SCOPE"); v != "" {
		c.ColorScope = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimitRPS = f
		} else {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring RATE_LIMIT_RPS=%q: %v", v, err))
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitBurst = n
		} else {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring RATE_LIMIT_BURST=%q: %v", v, err))
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		c.CORSAllowedOrigins = origins
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("data path is required")
	}
	if c.SizeFactor <= 0 {
		return fmt.Errorf("size_factor must be positive, got %v", c.SizeFactor)
	}
	switch engine.ColorScope(c.ColorScope) {
	case engine.ScopeView, engine.ScopeGlobal:
	default:
		return fmt.Errorf("color_scope must be %q or %q, got %q", engine.ScopeView, engine.ScopeGlobal, c.ColorScope)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	if err := validRange("trend_x_range", c.TrendXRange); err != nil {
		return err
	}
	for name, mc := range c.Metrics {
		if !engine.Metric(name).Valid() {
			return fmt.Errorf("metrics: unknown metric %q", name)
		}
		switch mc.Scale {
		case "", "linear", "log":
		default:
			return fmt.Errorf("metrics.%s: scale must be linear or log, got %q", name, mc.Scale)
		}
		if err := validRange("metrics."+name+".range", mc.Range); err != nil {
			return err
		}
		if err := validRange("metrics."+name+".trend_range", mc.TrendRange); err != nil {
			return err
		}
	}
	return nil
}

func validRange(field string, r []float64) error {
	if len(r) == 0 {
		return nil
	}
	if len(r) != 2 || r[0] >= r[1] {
		return fmt.Errorf("%s must be [min, max] with min < max, got %v", field, r)
	}
	return nil
}

// Catalogue merges the metric overrides over the default labels and axes.
func (c *Config) Catalogue() engine.Catalogue {
	cat := engine.DefaultCatalogue()
	for name, mc := range c.Metrics {
		m := engine.Metric(name)
		info := cat[m]
		if mc.Label != "" {
			info.Label = mc.Label
		}
		if mc.Scale != "" {
			info.Axis.Scale = mc.Scale
		}
		if mc.Range != nil {
			info.Axis.Range = mc.Range
		}
		if mc.TrendRange != nil {
			info.TrendRange = mc.TrendRange
		}
		cat[m] = info
	}
	return cat
}

// BuilderConfig returns the payload builder settings.
func (c *Config) BuilderConfig() engine.BuilderConfig {
	return engine.BuilderConfig{
		SizeFactor:  c.SizeFactor,
		Catalogue:   c.Catalogue(),
		ColorScope:  engine.ColorScope(c.ColorScope),
		TrendXRange: c.TrendXRange,
	}
}

// Level maps LogLevel to a gommon log level.
func (c *Config) Level() log.Lvl {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
