package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pv-battery-sim/internal/analysis"
	"pv-battery-sim/internal/api/models"
)

// SweepHandler runs parameter sweeps
type SweepHandler struct {
	source  SeriesSource
	workers int
	timeout time.Duration
	log     zerolog.Logger
}

// NewSweepHandler creates a sweep handler. workers caps concurrent runs per
// request; requests may ask for fewer.
func NewSweepHandler(source SeriesSource, workers int, log zerolog.Logger) *SweepHandler {
	return &SweepHandler{source: source, workers: workers, timeout: 5 * time.Minute, log: log}
}

// RunSweep handles POST /api/v1/sweep
func (h *SweepHandler) RunSweep(c *gin.Context) {
	var req models.SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	series, _, err := h.source.Series(req.System)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_SYSTEM", err)
		return
	}

	workers := h.workers
	if req.Workers > 0 && (workers <= 0 || req.Workers < workers) {
		workers = req.Workers
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	started := time.Now()
	results, err := analysis.Sweep(ctx, series, req.Grid, workers)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			writeError(c, http.StatusGatewayTimeout, "SWEEP_TIMEOUT", err)
			return
		}
		writeSimulationError(c, err)
		return
	}
	h.log.Info().
		Int("runs", len(results)).
		Int("workers", workers).
		Int("hours", len(series)).
		Dur("took", time.Since(started)).
		Msg("sweep finished")

	resp := models.SweepResponse{Runs: len(results), Results: results}
	if req.Top > 0 && req.Top < len(results) {
		resp.Results = results[:req.Top]
	}
	c.JSON(http.StatusOK, resp)
}
