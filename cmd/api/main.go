package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"

	"pv-battery-sim/internal/api"
	"pv-battery-sim/internal/api/handlers"
	"pv-battery-sim/internal/config"
	"pv-battery-sim/internal/data"
	"pv-battery-sim/internal/logger"
	"pv-battery-sim/internal/metrics"
)

func main() {
	cfgPath := flag.String("config", "", "configuration file (default: $PVSIM_CONFIG or examples/config.yaml)")
	flag.Parse()

	logger.Init()
	log := logger.New("api")
	metrics.Init()

	path := *cfgPath
	if path == "" {
		path = os.Getenv("PVSIM_CONFIG")
	}
	if path == "" {
		path = "examples/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Str("config", path).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source handlers.SeriesSource
	if cfg.Data.SeriesCSV != "" {
		series, err := data.ReadSeriesCSV(cfg.Resolve(cfg.Data.SeriesCSV))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read series")
		}
		log.Info().Int("hours", len(series)).Msg("serving prebuilt series")
		source = handlers.FixedSource{Inputs: series}
	} else {
		src, err := cfg.Sources()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid data sources")
		}
		cache := data.NewDatasetCache(cfg.Data.CacheTTL)
		if cfg.Data.CacheTTL > 0 {
			go cache.RunCleanup(ctx, cfg.Data.CacheTTL)
		}
		builder := &data.Builder{Cache: cache, Log: logger.New("data")}
		ds, err := builder.Build(src)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build dataset")
		}
		log.Info().
			Int("hours", len(ds.Rows)).
			Strs("orientations", ds.Orientations).
			Ints("years", ds.Years()).
			Dur("cache_ttl", cfg.Data.CacheTTL).
			Msg("dataset ready")
		source = &handlers.DatasetSource{Builder: builder, Sources: src, System: cfg.SystemParams()}
	}

	if cfg.Server.Env == "production" || os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(api.Deps{
		Source:        source,
		Store:         handlers.NewRunStore(cfg.Server.MaxStoredRuns),
		BatteryDir:    handlers.ResolveBatteryDir(cfg.Resolve(cfg.Server.BatteryDir)),
		StaticDir:     cfg.Resolve(cfg.Server.StaticDir),
		FullThreshold: cfg.Report.FullThreshold,
		SweepWorkers:  cfg.Sweep.Workers,
		Log:           log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("starting API server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}
