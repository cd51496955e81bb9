package analysis

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"pv-battery-sim/internal/dispatch"
	"pv-battery-sim/internal/metrics"
	"pv-battery-sim/internal/model"
)

// SweepGrid spans the battery parameters to try. Every combination of the
// four axes is one run. An empty MaxPowersKW axis means unlimited power only.
type SweepGrid struct {
	CapacitiesKWh      []float64 `json:"capacities_kwh"`
	DischargeCutoffs   []float64 `json:"discharge_cutoffs"`
	ChargeEfficiencies []float64 `json:"charge_efficiencies"`
	MaxPowersKW        []float64 `json:"max_powers_kw,omitempty"`
}

// Params expands the grid in axis order: capacity, cutoff, efficiency, power.
func (g SweepGrid) Params() []model.BatteryParams {
	powers := g.MaxPowersKW
	if len(powers) == 0 {
		powers = []float64{0}
	}
	out := make([]model.BatteryParams, 0, len(g.CapacitiesKWh)*len(g.DischargeCutoffs)*len(g.ChargeEfficiencies)*len(powers))
	for _, c := range g.CapacitiesKWh {
		for _, cut := range g.DischargeCutoffs {
			for _, eff := range g.ChargeEfficiencies {
				for _, p := range powers {
					out = append(out, model.BatteryParams{
						CapacityKWh:      c,
						DischargeCutoff:  cut,
						ChargeEfficiency: eff,
						MaxPowerKW:       p,
					})
				}
			}
		}
	}
	return out
}

// SweepResult is one ranked run of a sweep.
type SweepResult struct {
	Rank    int                 `json:"rank"`
	Params  model.BatteryParams `json:"params"`
	Summary Summary             `json:"summary"`
	Totals  dispatch.Totals     `json:"totals"`
}

// Sweep simulates every grid point against the same series. Runs share the
// read-only series and nothing else; at most workers run at once (0 means
// one per CPU). The first failing run cancels the rest.
func Sweep(ctx context.Context, series []model.HourlyInput, grid SweepGrid, workers int) ([]SweepResult, error) {
	points := grid.Params()
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: sweep grid is empty", model.ErrInvalidParameter)
	}
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("sweep: %w", err)
		}
	}
	if err := model.Series(series).Validate(); err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]SweepResult, len(points))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range points {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := runOne(p, series)
			if err != nil {
				return fmt.Errorf("sweep %+v: %w", p, err)
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	Rank(results)
	return results, nil
}

func runOne(p model.BatteryParams, series []model.HourlyInput) (*SweepResult, error) {
	started := time.Now()
	res, err := dispatch.New().Run(model.SimulationInputs{Series: series, Battery: p})
	metrics.ObserveSimulation("sweep", len(series), time.Since(started), err)
	if err != nil {
		return nil, err
	}
	metrics.ObserveSweepRun()
	return &SweepResult{
		Params:  p,
		Summary: Summarize(Annual(res.Ledger)),
		Totals:  res.Totals,
	}, nil
}
