package analysis

import (
	"gonum.org/v1/gonum/stat"

	"pv-battery-sim/internal/dispatch"
)

// AnnualStats sums one calendar year of the ledger. Years are taken in the
// location of the ledger timestamps.
type AnnualStats struct {
	Year  int `json:"year"`
	Hours int `json:"hours"`

	PVProductionKWh float64 `json:"pv_production_kwh"`
	ConsumptionKWh  float64 `json:"consumption_kwh"`
	GridDrawKWh     float64 `json:"grid_draw_kwh"`
	ChargeKWh       float64 `json:"charge_kwh"`
	DischargeKWh    float64 `json:"discharge_kwh"`
	CurtailedKWh    float64 `json:"curtailed_kwh"`

	// PVUsedKWh is consumption not covered by the grid, whether it came
	// straight from PV or through the battery.
	PVUsedKWh           float64 `json:"pv_used_kwh"`
	SelfConsumptionPct  float64 `json:"self_consumption_pct"`
	GridIndependencePct float64 `json:"grid_independence_pct"`

	// Degenerate is set when PV or consumption is zero for the year and a
	// rate was reported as 0 instead of being computed.
	Degenerate bool `json:"degenerate,omitempty"`
}

// Annual groups the ledger by calendar year, in ledger order.
func Annual(ledger []dispatch.HourlyOutput) []AnnualStats {
	var out []AnnualStats
	for _, row := range ledger {
		y := row.Timestamp.Year()
		if len(out) == 0 || out[len(out)-1].Year != y {
			out = append(out, AnnualStats{Year: y})
		}
		a := &out[len(out)-1]
		a.Hours++
		a.PVProductionKWh += row.PVProductionKW
		a.ConsumptionKWh += row.ConsumptionKW
		a.GridDrawKWh += row.GridDrawKWh
		a.ChargeKWh += row.ChargeKWh
		a.DischargeKWh += row.DischargeKWh
		a.CurtailedKWh += row.CurtailedKWh
	}
	for i := range out {
		out[i].finish()
	}
	return out
}

func (a *AnnualStats) finish() {
	a.PVUsedKWh = a.ConsumptionKWh - a.GridDrawKWh
	if a.PVProductionKWh > 0 {
		a.SelfConsumptionPct = a.PVUsedKWh / a.PVProductionKWh * 100
	} else {
		a.Degenerate = true
	}
	if a.ConsumptionKWh > 0 {
		a.GridIndependencePct = (1 - a.GridDrawKWh/a.ConsumptionKWh) * 100
	} else {
		a.Degenerate = true
	}
}

// Summary averages the annual stats over all years.
type Summary struct {
	FirstYear int `json:"first_year"`
	LastYear  int `json:"last_year"`
	Years     int `json:"years"`

	MeanPVProductionKWh     float64 `json:"mean_pv_production_kwh"`
	MeanConsumptionKWh      float64 `json:"mean_consumption_kwh"`
	MeanGridDrawKWh         float64 `json:"mean_grid_draw_kwh"`
	MeanPVUsedKWh           float64 `json:"mean_pv_used_kwh"`
	MeanSelfConsumptionPct  float64 `json:"mean_self_consumption_pct"`
	MeanGridIndependencePct float64 `json:"mean_grid_independence_pct"`
	StdGridIndependencePct  float64 `json:"std_grid_independence_pct"`
}

func Summarize(annual []AnnualStats) Summary {
	s := Summary{Years: len(annual)}
	if len(annual) == 0 {
		return s
	}
	s.FirstYear = annual[0].Year
	s.LastYear = annual[len(annual)-1].Year

	col := func(f func(AnnualStats) float64) []float64 {
		v := make([]float64, len(annual))
		for i, a := range annual {
			v[i] = f(a)
		}
		return v
	}
	s.MeanPVProductionKWh = stat.Mean(col(func(a AnnualStats) float64 { return a.PVProductionKWh }), nil)
	s.MeanConsumptionKWh = stat.Mean(col(func(a AnnualStats) float64 { return a.ConsumptionKWh }), nil)
	s.MeanGridDrawKWh = stat.Mean(col(func(a AnnualStats) float64 { return a.GridDrawKWh }), nil)
	s.MeanPVUsedKWh = stat.Mean(col(func(a AnnualStats) float64 { return a.PVUsedKWh }), nil)
	s.MeanSelfConsumptionPct = stat.Mean(col(func(a AnnualStats) float64 { return a.SelfConsumptionPct }), nil)

	gi := col(func(a AnnualStats) float64 { return a.GridIndependencePct })
	if len(gi) > 1 {
		s.MeanGridIndependencePct, s.StdGridIndependencePct = stat.MeanStdDev(gi, nil)
	} else {
		s.MeanGridIndependencePct = gi[0]
	}
	return s
}
