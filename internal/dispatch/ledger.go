package dispatch

import (
	"time"

	"pv-battery-sim/internal/model"
)

// HourlyOutput is one row of per-hour output.
// This is the primary artifact for "what happened" in a simulation.
type HourlyOutput struct {
	Index     int
	Timestamp time.Time

	PVProductionKW float64
	ConsumptionKW  float64

	Action model.Action

	SOCKWh       float64
	GridDrawKWh  float64
	ChargeKWh    float64
	DischargeKWh float64
	// CurtailedKWh is surplus that was neither used nor stored. The model has
	// no feed-in path, so this energy is lost.
	CurtailedKWh float64
}

// Totals are ledger-wide energy sums in kWh.
type Totals struct {
	PVProductionKWh float64 `json:"pv_production_kwh"`
	ConsumptionKWh  float64 `json:"consumption_kwh"`
	GridDrawKWh     float64 `json:"grid_draw_kwh"`
	ChargeKWh       float64 `json:"charge_kwh"`
	DischargeKWh    float64 `json:"discharge_kwh"`
	CurtailedKWh    float64 `json:"curtailed_kwh"`
}

func (t *Totals) add(r HourlyOutput) {
	t.PVProductionKWh += r.PVProductionKW
	t.ConsumptionKWh += r.ConsumptionKW
	t.GridDrawKWh += r.GridDrawKWh
	t.ChargeKWh += r.ChargeKWh
	t.DischargeKWh += r.DischargeKWh
	t.CurtailedKWh += r.CurtailedKWh
}

type Result struct {
	Params      model.BatteryParams
	Ledger      []HourlyOutput
	Totals      Totals
	FinalSOCKWh float64
}
