package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"pv-battery-sim/internal/analysis"
	"pv-battery-sim/internal/api/models"
	"pv-battery-sim/internal/config"
	"pv-battery-sim/internal/dispatch"
	"pv-battery-sim/internal/metrics"
	"pv-battery-sim/internal/model"
)

// SimulationHandler handles simulation-related requests
type SimulationHandler struct {
	source        SeriesSource
	store         *RunStore
	batteryDir    string
	fullThreshold float64
	workers       int
	log           zerolog.Logger
}

// NewSimulationHandler creates a new simulation handler. workers caps how
// many variations of a comparison run at once; 0 means one per CPU.
func NewSimulationHandler(source SeriesSource, store *RunStore, batteryDir string, fullThreshold float64, workers int, log zerolog.Logger) *SimulationHandler {
	if fullThreshold <= 0 {
		fullThreshold = analysis.DefaultFullThreshold
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &SimulationHandler{
		source:        source,
		store:         store,
		batteryDir:    batteryDir,
		fullThreshold: fullThreshold,
		workers:       workers,
		log:           log,
	}
}

// RunSimulation handles POST /api/v1/simulations
func (h *SimulationHandler) RunSimulation(c *gin.Context) {
	var req models.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	params, err := h.resolveBattery(req.BatteryFile, req.Battery)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_BATTERY", err)
		return
	}

	series, sys, err := h.source.Series(req.System)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_SYSTEM", err)
		return
	}
	if req.Options.LimitHours > 0 && req.Options.LimitHours < len(series) {
		series = series[:req.Options.LimitHours]
	}

	threshold := h.fullThreshold
	if req.Options.FullThreshold > 0 {
		threshold = req.Options.FullThreshold
	}

	run, err := h.run(params, series, sys, threshold)
	if err != nil {
		writeSimulationError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildResponse(run, req.Options.IncludeLedger))
}

// GetLedger handles GET /api/v1/simulations/:id/ledger
// ?format=csv returns the ledger as CSV instead of JSON.
func (h *SimulationHandler) GetLedger(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="ledger_%s.csv"`, run.ID))
		c.Status(http.StatusOK)
		if err := dispatch.WriteLedger(c.Writer, run.Result.Ledger); err != nil {
			_ = c.Error(err)
		}
		return
	}
	c.JSON(http.StatusOK, models.LedgerResponse{
		ID:     run.ID,
		Ledger: models.NewLedgerRows(run.Result.Ledger),
	})
}

// CompareSimulations handles POST /api/v1/simulations/compare
func (h *SimulationHandler) CompareSimulations(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	type job struct {
		name   string
		params model.BatteryParams
		series []model.HourlyInput
		sys    *model.SystemParams
	}
	jobs := make([]job, 0, len(req.Variations))
	for _, v := range req.Variations {
		// Merge base config with variation
		file := req.Base.BatteryFile
		if v.BatteryFile != "" {
			file = v.BatteryFile
		}
		params, err := h.resolveBattery(file, config.MergeBattery(req.Base.Battery, v.Battery))
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_BATTERY", fmt.Errorf("variation %q: %w", v.Name, err))
			return
		}
		override := req.Base.System
		if v.System != nil {
			override = mergeOverride(req.Base.System, v.System)
		}
		series, sys, err := h.source.Series(override)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_SYSTEM", fmt.Errorf("variation %q: %w", v.Name, err))
			return
		}
		if n := req.Base.Options.LimitHours; n > 0 && n < len(series) {
			series = series[:n]
		}
		jobs = append(jobs, job{name: v.Name, params: params, series: series, sys: sys})
	}

	comparison := make([]models.ComparisonResult, len(jobs))
	var g errgroup.Group
	g.SetLimit(h.workers)
	for i, j := range jobs {
		g.Go(func() error {
			run, err := h.run(j.params, j.series, j.sys, h.fullThreshold)
			if err != nil {
				return fmt.Errorf("variation %q: %w", j.name, err)
			}
			comparison[i] = models.ComparisonResult{
				Name:    j.name,
				ID:      run.ID,
				Params:  j.params,
				Summary: analysis.Summarize(analysis.Annual(run.Result.Ledger)),
				Totals:  run.Result.Totals,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		writeSimulationError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CompareResponse{Comparison: comparison})
}

func (h *SimulationHandler) run(params model.BatteryParams, series []model.HourlyInput, sys *model.SystemParams, threshold float64) (*StoredRun, error) {
	started := time.Now()
	res, err := dispatch.New().Run(model.SimulationInputs{Series: series, Battery: params})
	took := time.Since(started)
	metrics.ObserveSimulation("api", len(series), took, err)
	if err != nil {
		return nil, err
	}
	run := &StoredRun{Result: res, System: sys, FullThreshold: threshold}
	h.store.Put(run)
	h.log.Info().
		Str("id", run.ID).
		Int("hours", len(series)).
		Float64("capacity_kwh", params.CapacityKWh).
		Dur("took", took).
		Msg("simulation finished")
	return run, nil
}

func (h *SimulationHandler) lookup(c *gin.Context) (*StoredRun, bool) {
	id := c.Param("id")
	run, ok := h.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "RUN_NOT_FOUND",
				Message: fmt.Sprintf("no stored simulation with id %q", id),
			},
		})
		return nil, false
	}
	return run, true
}

// resolveBattery loads the preset, if any, and overlays the explicit fields.
func (h *SimulationHandler) resolveBattery(file string, b config.BatteryConfig) (model.BatteryParams, error) {
	if file != "" {
		loaded, err := config.LoadPreset(h.batteryDir, file)
		if err != nil {
			return model.BatteryParams{}, fmt.Errorf("battery preset %q: %w", file, err)
		}
		b = config.MergeBattery(loaded, b)
	}
	params := b.ToModelParams()
	if err := params.Validate(); err != nil {
		return model.BatteryParams{}, err
	}
	return params, nil
}

func mergeOverride(base, o *models.SystemOverride) *models.SystemOverride {
	if base == nil {
		return o
	}
	out := *base
	if o.ConsumptionPerUnitPerYearKWh != nil {
		out.ConsumptionPerUnitPerYearKWh = o.ConsumptionPerUnitPerYearKWh
	}
	if len(o.ProfileShifts) > 0 {
		out.ProfileShifts = o.ProfileShifts
	}
	out.Orientations = append(append([]models.OrientationOverride(nil), base.Orientations...), o.Orientations...)
	return &out
}

func buildResponse(run *StoredRun, includeLedger bool) models.SimulationResponse {
	res := run.Result
	annual := analysis.Annual(res.Ledger)
	var window models.TimeWindow
	if n := len(res.Ledger); n > 0 {
		window = models.TimeWindow{Start: res.Ledger[0].Timestamp, End: res.Ledger[n-1].Timestamp}
	}
	resp := models.SimulationResponse{
		ID:          run.ID,
		Status:      "completed",
		Params:      res.Params,
		Window:      window,
		Hours:       len(res.Ledger),
		Summary:     analysis.Summarize(annual),
		Totals:      res.Totals,
		FinalSOCKWh: res.FinalSOCKWh,
		Annual:      annual,
		Monthly:     analysis.Monthly(res.Ledger),
		Battery:     analysis.BatteryStatus(res.Ledger, res.Params, run.FullThreshold),
	}
	if includeLedger {
		resp.Ledger = models.NewLedgerRows(res.Ledger)
	}
	return resp
}

func writeError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

// writeSimulationError maps engine errors to HTTP statuses.
func writeSimulationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidParameter):
		writeError(c, http.StatusBadRequest, "INVALID_PARAMETER", err)
	case errors.Is(err, model.ErrMisalignedInput), errors.Is(err, model.ErrInvalidInput):
		writeError(c, http.StatusUnprocessableEntity, "INVALID_INPUT", err)
	default:
		writeError(c, http.StatusInternalServerError, "SIMULATION_ERROR", err)
	}
}
