package models

import (
	"time"

	"pv-battery-sim/internal/analysis"
	"pv-battery-sim/internal/dispatch"
	"pv-battery-sim/internal/model"
)

// SimulationResponse represents the response from a simulation run
type SimulationResponse struct {
	ID          string                          `json:"id,omitempty"`
	Status      string                          `json:"status"`
	Params      model.BatteryParams             `json:"params"`
	Window      TimeWindow                      `json:"window"`
	Hours       int                             `json:"hours"`
	Summary     analysis.Summary                `json:"summary"`
	Totals      dispatch.Totals                 `json:"totals"`
	FinalSOCKWh float64                         `json:"final_soc_kwh"`
	Annual      []analysis.AnnualStats          `json:"annual"`
	Monthly     []analysis.MonthlyStats         `json:"monthly"`
	Battery     []analysis.MonthlyBatteryStatus `json:"battery_status"`
	Ledger      []LedgerRow                     `json:"ledger,omitempty"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LedgerRow represents one hour in the simulation ledger
type LedgerRow struct {
	Index          int       `json:"index"`
	Timestamp      time.Time `json:"timestamp"`
	PVProductionKW float64   `json:"pv_production_kw"`
	ConsumptionKW  float64   `json:"consumption_kw"`
	Action         string    `json:"action"` // "CHARGING", "DISCHARGING", "IDLE"
	SOCKWh         float64   `json:"battery_soc_kwh"`
	GridDrawKWh    float64   `json:"from_grid_kwh"`
	ChargeKWh      float64   `json:"battery_charge_kwh"`
	DischargeKWh   float64   `json:"battery_discharge_kwh"`
	CurtailedKWh   float64   `json:"curtailed_kwh"`
}

// LedgerResponse is a stored ledger
type LedgerResponse struct {
	ID     string      `json:"id"`
	Ledger []LedgerRow `json:"ledger"`
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Name    string              `json:"name"`
	ID      string              `json:"id"`
	Params  model.BatteryParams `json:"params"`
	Summary analysis.Summary    `json:"summary"`
	Totals  dispatch.Totals     `json:"totals"`
}

// SweepResponse lists ranked sweep runs
type SweepResponse struct {
	Runs    int                    `json:"runs"`
	Results []analysis.SweepResult `json:"results"`
}

// BatteryInfo represents information about a battery preset
type BatteryInfo struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	File  string       `json:"file"`
	Specs BatterySpecs `json:"specs"`
}

// BatterySpecs contains battery specifications
type BatterySpecs struct {
	CapacityKWh      float64 `json:"capacity_kwh"`
	DischargeCutoff  float64 `json:"discharge_cutoff"`
	ChargeEfficiency float64 `json:"charge_efficiency"`
	MaxPowerKW       float64 `json:"max_power_kw,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewLedgerRows converts engine output to response rows.
func NewLedgerRows(ledger []dispatch.HourlyOutput) []LedgerRow {
	rows := make([]LedgerRow, len(ledger))
	for i, r := range ledger {
		rows[i] = LedgerRow{
			Index:          r.Index,
			Timestamp:      r.Timestamp,
			PVProductionKW: r.PVProductionKW,
			ConsumptionKW:  r.ConsumptionKW,
			Action:         string(r.Action),
			SOCKWh:         r.SOCKWh,
			GridDrawKWh:    r.GridDrawKWh,
			ChargeKWh:      r.ChargeKWh,
			DischargeKWh:   r.DischargeKWh,
			CurtailedKWh:   r.CurtailedKWh,
		}
	}
	return rows
}
