package api

import (
	"pv-battery-sim/internal/analysis"
	"pv-battery-sim/internal/config"
)

func testBattery(capacity float64) config.BatteryConfig {
	return config.BatteryConfig{CapacityKWh: capacity, DischargeCutoff: 0.1, ChargeEfficiency: 0.95}
}

func testGrid(capacities []float64) analysis.SweepGrid {
	return analysis.SweepGrid{
		CapacitiesKWh:      capacities,
		DischargeCutoffs:   []float64{0.1},
		ChargeEfficiencies: []float64{0.95},
	}
}
