package dispatch

import (
	"fmt"

	"pv-battery-sim/internal/model"
)

// Engine runs the greedy PV-first battery dispatch. It holds no state between
// runs, so one Engine may serve concurrent callers.
type Engine struct{}

func New() *Engine { return &Engine{} }

// Run validates the inputs and simulates them, returning the ledger with totals.
func (e *Engine) Run(in model.SimulationInputs) (*Result, error) {
	ledger, err := Simulate(in.Battery, in.Series)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Params:      in.Battery,
		Ledger:      ledger,
		FinalSOCKWh: in.Battery.CapacityKWh / 2,
	}
	for _, row := range ledger {
		res.Totals.add(row)
	}
	if n := len(ledger); n > 0 {
		res.FinalSOCKWh = ledger[n-1].SOCKWh
	}
	return res, nil
}

// Simulate walks the series once, hour by hour. The battery starts at half
// capacity and its state of charge carries over from each hour to the next.
func Simulate(params model.BatteryParams, inputs []model.HourlyInput) ([]HourlyOutput, error) {
	batt, err := model.NewBattery(params)
	if err != nil {
		return nil, err
	}
	if err := model.Series(inputs).Validate(); err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	ledger := make([]HourlyOutput, 0, len(inputs))
	for idx, in := range inputs {
		step := batt.Step(in.PVProductionKW, in.ConsumptionKW)
		ledger = append(ledger, HourlyOutput{
			Index:     idx,
			Timestamp: in.Timestamp,

			PVProductionKW: in.PVProductionKW,
			ConsumptionKW:  in.ConsumptionKW,

			Action: model.ActionFromStep(step.ChargeKWh, step.DischargeKWh),

			SOCKWh:       step.SOCEnd,
			GridDrawKWh:  step.GridDrawKWh,
			ChargeKWh:    step.ChargeKWh,
			DischargeKWh: step.DischargeKWh,
			CurtailedKWh: step.CurtailedKWh,
		})
	}
	return ledger, nil
}
