package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"gapminder/internal/api"
	"gapminder/internal/config"
	"gapminder/internal/engine"
	"gapminder/internal/render"
	"gapminder/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flags shared by every command; they win over env and the config file.
type flags struct {
	configPath string
	dataPath   string
	listenAddr string
	logLevel   string
}

func (f *flags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fs.StringVar(&f.dataPath, "data", "", "gapminder CSV (env GAPMINDER_DATA)")
	fs.StringVar(&f.listenAddr, "addr", "", "listen address (env GAPMINDER_LISTEN_ADDR)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
}

func (f *flags) load() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.dataPath != "" {
		cfg.DataPath = f.dataPath
	}
	if f.listenAddr != "" {
		cfg.ListenAddr = f.listenAddr
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log.SetLevel(cfg.Level())
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Gapminder dashboard server",
		Long:          "Serves the world and country charts of the gapminder dataset as JSON, PNG and a dashboard page.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	f.register(cmd.PersistentFlags())
	cmd.AddCommand(newRenderCmd(&f))
	return cmd
}

func newServer(cfg *config.Config, h *api.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(cfg.Level())

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.CORSAllowedOrigins}))
	if cfg.RateLimitRPS > 0 {
		store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(cfg.RateLimitRPS),
			Burst: cfg.RateLimitBurst,
		})
		e.Use(middleware.RateLimiter(store))
	}

	h.RegisterRoutes(e)
	ui.NewHandler(h, cfg.Catalogue(), cfg.DefaultCountry).RegisterRoutes(e)
	return e
}

// serve starts the HTTP server right away and loads the dataset next to it.
// Data routes answer 503 until the load finishes; a failed load stops the server.
func serve(ctx context.Context, cfg *config.Config) error {
	h := api.NewHandler(nil, engine.NewBuilder(cfg.BuilderConfig()), api.Options{
		Chart:          render.Options{Width: cfg.Chart.Width, Height: cfg.Chart.Height},
		DefaultCountry: cfg.DefaultCountry,
	})
	e := newServer(cfg, h)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t0 := time.Now()
		table, err := engine.LoadTable(cfg.DataPath)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		h.SetTable(table)
		log.Infof("Dataset ready in %v (%d rows, %d years)", time.Since(t0), table.Len(), len(table.Years()))
		return nil
	})

	g.Go(func() error {
		log.Infof("Server ready on %s (data loading in background...)", cfg.ListenAddr)
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
