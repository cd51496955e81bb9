package model

import (
	"fmt"
	"math"
)

// BatteryParams defines the physical parameters of the home battery.
// Units:
// - CapacityKWh: kWh of usable energy
// - DischargeCutoff: fraction 0..1 of capacity kept as a floor
// - ChargeEfficiency: 0..1, share of surplus PV energy that ends up stored
// - MaxPowerKW: kW, symmetric charge/discharge cap; 0 = unlimited
type BatteryParams struct {
	CapacityKWh      float64 `json:"capacity_kwh"`
	DischargeCutoff  float64 `json:"discharge_cutoff"`
	ChargeEfficiency float64 `json:"charge_efficiency"`
	MaxPowerKW       float64 `json:"max_power_kw,omitempty"`
}

// BatteryState captures mutable state.
type BatteryState struct {
	SOCKWh float64
}

// Battery is a convenience wrapper bundling params + state.
// A Battery belongs to exactly one simulation run.
type Battery struct {
	Params BatteryParams
	State  BatteryState
}

// NewBattery validates params and returns a battery starting half full.
func NewBattery(params BatteryParams) (*Battery, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Battery{
		Params: params,
		State:  BatteryState{SOCKWh: params.CapacityKWh / 2},
	}, nil
}

func (p BatteryParams) Validate() error {
	if math.IsNaN(p.CapacityKWh) || math.IsInf(p.CapacityKWh, 0) || p.CapacityKWh <= 0 {
		return fmt.Errorf("%w: capacity_kwh must be > 0 and finite, got %v", ErrInvalidParameter, p.CapacityKWh)
	}
	if math.IsNaN(p.DischargeCutoff) || p.DischargeCutoff < 0 || p.DischargeCutoff >= 1 {
		return fmt.Errorf("%w: discharge_cutoff must be in [0, 1), got %v", ErrInvalidParameter, p.DischargeCutoff)
	}
	if math.IsNaN(p.ChargeEfficiency) || p.ChargeEfficiency <= 0 || p.ChargeEfficiency > 1 {
		return fmt.Errorf("%w: charge_efficiency must be in (0, 1], got %v", ErrInvalidParameter, p.ChargeEfficiency)
	}
	if math.IsNaN(p.MaxPowerKW) || p.MaxPowerKW < 0 {
		return fmt.Errorf("%w: max_power_kw must be > 0 when set, got %v", ErrInvalidParameter, p.MaxPowerKW)
	}
	return nil
}

// FloorKWh is the lowest state of charge discharging may reach.
func (p BatteryParams) FloorKWh() float64 {
	return p.CapacityKWh * p.DischargeCutoff
}

// PowerLimitKW returns the per-hour power cap, +Inf when unset.
func (p BatteryParams) PowerLimitKW() float64 {
	if p.MaxPowerKW == 0 {
		return math.Inf(1)
	}
	return p.MaxPowerKW
}

// StepResult captures what happened in one hour.
type StepResult struct {
	SurplusKW    float64
	ChargeKWh    float64 // energy added to the battery
	DischargeKWh float64 // energy taken out of the battery
	GridDrawKWh  float64 // deficit not covered by the battery
	CurtailedKWh float64 // surplus neither consumed nor stored; there is no feed-in path
	SOCStart     float64
	SOCEnd       float64
}

// Step applies one hour of PV production and consumption.
//
// Surplus charges the battery with efficiency losses, bounded by headroom and
// the power limit. Whatever cannot be stored is curtailed. A deficit is
// covered from the battery down to the cutoff floor, the rest comes from the grid.
func (b *Battery) Step(pvKW, consumptionKW float64) StepResult {
	p := b.Params
	soc := b.State.SOCKWh
	res := StepResult{
		SurplusKW: pvKW - consumptionKW,
		SOCStart:  soc,
	}

	if res.SurplusKW > 0 {
		charge := clampMin(res.SurplusKW*p.ChargeEfficiency, p.CapacityKWh-soc, p.PowerLimitKW())
		soc += charge
		res.ChargeKWh = charge
		res.CurtailedKWh = math.Max(0, res.SurplusKW-charge/p.ChargeEfficiency)
	} else {
		need := math.Max(0, -res.SurplusKW)
		discharge := clampMin(need, soc-p.FloorKWh(), p.PowerLimitKW())
		soc -= discharge
		res.DischargeKWh = discharge
		if discharge < need {
			res.GridDrawKWh = need - discharge
		}
	}

	b.State.SOCKWh = soc
	res.SOCEnd = soc
	return res
}

// clampMin is min(a, b, c) with negative headroom treated as no room at all.
func clampMin(a, b, c float64) float64 {
	return math.Max(0, math.Min(a, math.Min(b, c)))
}
