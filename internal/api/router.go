package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"pv-battery-sim/internal/api/handlers"
	"pv-battery-sim/internal/api/middleware"
)

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Source        handlers.SeriesSource
	Store         *handlers.RunStore
	BatteryDir    string
	StaticDir     string
	FullThreshold float64
	SweepWorkers  int
	CORSOrigins   []string
	Log           zerolog.Logger
}

// NewRouter wires the gin engine with all routes.
func NewRouter(d Deps) *gin.Engine {
	if d.Store == nil {
		d.Store = handlers.NewRunStore(0)
	}
	router := gin.New()
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.ErrorHandler(d.Log))

	simulationHandler := handlers.NewSimulationHandler(d.Source, d.Store, d.BatteryDir, d.FullThreshold, d.SweepWorkers, d.Log)
	sweepHandler := handlers.NewSweepHandler(d.Source, d.SweepWorkers, d.Log)
	batteryHandler := handlers.NewBatteryHandler(d.BatteryDir, d.Log)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/simulations", simulationHandler.RunSimulation)
		api.POST("/simulations/compare", simulationHandler.CompareSimulations)
		api.GET("/simulations/:id/ledger", simulationHandler.GetLedger)
		api.GET("/simulations/:id/report.pdf", simulationHandler.GetReportPDF)
		api.GET("/simulations/:id/report.xlsx", simulationHandler.GetReportXLSX)

		api.POST("/sweep", sweepHandler.RunSweep)

		api.GET("/batteries", batteryHandler.ListBatteries)
	}

	serveStatic(router, d.StaticDir, d.Log)
	return router
}

// NewHandler is NewRouter behind the CORS layer.
func NewHandler(d Deps) http.Handler {
	return middleware.CORS(NewRouter(d), d.CORSOrigins)
}

// serveStatic serves a built single-page frontend from dir, if it exists.
func serveStatic(router *gin.Engine, dir string, log zerolog.Logger) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); err != nil {
		log.Info().Str("dir", dir).Msg("static directory not found, skipping static file serving")
		return
	}
	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))

	// Serve index.html for all non-API routes (SPA routing)
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	})
	log.Info().Str("dir", dir).Msg("serving static files")
}
