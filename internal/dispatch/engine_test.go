package dispatch

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv-battery-sim/internal/model"
)

const eps = 1e-9

var t0 = time.Date(2016, 6, 1, 0, 0, 0, 0, time.UTC)

// series builds an hourly series from (pv, consumption) pairs.
func series(pairs ...[2]float64) []model.HourlyInput {
	out := make([]model.HourlyInput, len(pairs))
	for i, p := range pairs {
		out[i] = model.HourlyInput{
			Timestamp:      t0.Add(time.Duration(i) * time.Hour),
			PVProductionKW: p[0],
			ConsumptionKW:  p[1],
		}
	}
	return out
}

func randomSeries(r *rand.Rand, n int) []model.HourlyInput {
	out := make([]model.HourlyInput, n)
	for i := range out {
		pv := 0.0
		if h := i % 24; h >= 6 && h <= 19 {
			pv = r.Float64() * 8
		}
		out[i] = model.HourlyInput{
			Timestamp:      t0.Add(time.Duration(i) * time.Hour),
			PVProductionKW: pv,
			ConsumptionKW:  0.2 + r.Float64()*3,
		}
	}
	return out
}

func TestChargeUnconstrainedStoresSurplus(t *testing.T) {
	p := model.BatteryParams{CapacityKWh: 10, DischargeCutoff: 0, ChargeEfficiency: 1.0}
	ledger, err := Simulate(p, series([2]float64{5, 2}))
	require.NoError(t, err)
	require.Len(t, ledger, 1)

	row := ledger[0]
	assert.Equal(t, 3.0, row.ChargeKWh)
	assert.Equal(t, 8.0, row.SOCKWh)
	assert.Zero(t, row.GridDrawKWh)
	assert.Zero(t, row.DischargeKWh)
	assert.Equal(t, model.ActionCharging, row.Action)
}

func TestDeficitBeyondFloorDrawsFromGrid(t *testing.T) {
	p := model.BatteryParams{CapacityKWh: 10, DischargeCutoff: 0.1, ChargeEfficiency: 0.95}
	// The first hour brings the battery from 5 kWh down to 2 kWh.
	ledger, err := Simulate(p, series([2]float64{0, 3}, [2]float64{0, 5}))
	require.NoError(t, err)
	require.InDelta(t, 2.0, ledger[0].SOCKWh, eps)

	row := ledger[1]
	assert.InDelta(t, 1.0, row.DischargeKWh, eps)
	assert.InDelta(t, 1.0, row.SOCKWh, eps)
	assert.InDelta(t, 4.0, row.GridDrawKWh, eps)
	assert.Zero(t, row.ChargeKWh)
}

func TestChargeCappedByPowerLimit(t *testing.T) {
	p := model.BatteryParams{CapacityKWh: 10, ChargeEfficiency: 1.0, MaxPowerKW: 2}
	ledger, err := Simulate(p, series(
		[2]float64{0, 2}, [2]float64{0, 2}, [2]float64{0, 2}, // 5 -> 3 -> 1 -> 0
		[2]float64{10, 0},
	))
	require.NoError(t, err)
	require.Zero(t, ledger[2].SOCKWh)
	assert.InDelta(t, 1.0, ledger[2].GridDrawKWh, eps)

	row := ledger[3]
	assert.Equal(t, 2.0, row.ChargeKWh)
	assert.Equal(t, 2.0, row.SOCKWh)
	assert.Equal(t, 8.0, row.CurtailedKWh)
}

func TestDeficitAtCutoffDrawsFromGrid(t *testing.T) {
	p := model.BatteryParams{CapacityKWh: 10, DischargeCutoff: 0.25, ChargeEfficiency: 1.0}
	ledger, err := Simulate(p, series([2]float64{0, 2.5}, [2]float64{1, 4}, [2]float64{0, 0.5}))
	require.NoError(t, err)
	require.Equal(t, p.FloorKWh(), ledger[0].SOCKWh)

	for _, row := range ledger[1:] {
		assert.Zero(t, row.DischargeKWh)
		assert.Equal(t, p.FloorKWh(), row.SOCKWh)
		assert.Equal(t, model.ActionIdle, row.Action)
	}
	assert.Equal(t, 3.0, ledger[1].GridDrawKWh)
	assert.Equal(t, 0.5, ledger[2].GridDrawKWh)
}

func TestDischargePowerLimit(t *testing.T) {
	p := model.BatteryParams{CapacityKWh: 10, ChargeEfficiency: 1.0, MaxPowerKW: 1.5}
	ledger, err := Simulate(p, series([2]float64{0, 4}))
	require.NoError(t, err)
	assert.Equal(t, 1.5, ledger[0].DischargeKWh)
	assert.Equal(t, 2.5, ledger[0].GridDrawKWh)
	assert.Equal(t, 3.5, ledger[0].SOCKWh)
}

func TestInvariantsOnRandomSeries(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	inputs := randomSeries(r, 24*90)
	paramsList := []model.BatteryParams{
		{CapacityKWh: 10, DischargeCutoff: 0.1, ChargeEfficiency: 0.95},
		{CapacityKWh: 5, DischargeCutoff: 0.5, ChargeEfficiency: 0.8, MaxPowerKW: 1.2},
		{CapacityKWh: 20, DischargeCutoff: 0, ChargeEfficiency: 1, MaxPowerKW: math.Inf(1)},
	}

	for _, p := range paramsList {
		ledger, err := Simulate(p, inputs)
		require.NoError(t, err)
		require.Len(t, ledger, len(inputs))

		for i, row := range ledger {
			in := inputs[i]
			surplus := in.PVProductionKW - in.ConsumptionKW
			assert.Equal(t, in.Timestamp, row.Timestamp)

			assert.GreaterOrEqual(t, row.SOCKWh, p.FloorKWh()-eps, "hour %d below floor", i)
			assert.LessOrEqual(t, row.SOCKWh, p.CapacityKWh+eps, "hour %d above capacity", i)
			assert.GreaterOrEqual(t, row.GridDrawKWh, 0.0)
			assert.GreaterOrEqual(t, row.CurtailedKWh, 0.0)
			assert.False(t, row.ChargeKWh > 0 && row.DischargeKWh > 0, "hour %d both charging and discharging", i)
			assert.LessOrEqual(t, row.ChargeKWh, p.PowerLimitKW()+eps)
			assert.LessOrEqual(t, row.DischargeKWh, p.PowerLimitKW()+eps)

			if surplus > 0 {
				assert.Zero(t, row.GridDrawKWh)
				assert.InDelta(t, surplus, row.ChargeKWh/p.ChargeEfficiency+row.CurtailedKWh, eps)
			} else {
				// Deficit is covered exactly by battery plus grid.
				assert.InDelta(t, -surplus, row.DischargeKWh+row.GridDrawKWh, eps)
			}
		}
	}
}

func TestChargeConservationWhenUnconstrained(t *testing.T) {
	p := model.BatteryParams{CapacityKWh: 100, ChargeEfficiency: 0.9}
	ledger, err := Simulate(p, series([2]float64{4, 1}, [2]float64{2.5, 0.5}))
	require.NoError(t, err)
	assert.InDelta(t, 3*0.9, ledger[0].ChargeKWh, eps)
	assert.InDelta(t, 2*0.9, ledger[1].ChargeKWh, eps)
	assert.Zero(t, ledger[0].CurtailedKWh)
}

func TestDischargeConservationWhenUnconstrained(t *testing.T) {
	p := model.BatteryParams{CapacityKWh: 100, DischargeCutoff: 0.1, ChargeEfficiency: 0.9}
	ledger, err := Simulate(p, series([2]float64{0, 3}, [2]float64{1, 2.5}))
	require.NoError(t, err)
	for i, want := range []float64{3, 1.5} {
		assert.Zero(t, ledger[i].GridDrawKWh)
		assert.InDelta(t, want, ledger[i].DischargeKWh, eps)
	}
}

func TestSimulateIsIdempotent(t *testing.T) {
	inputs := randomSeries(rand.New(rand.NewSource(7)), 24*30)
	p := model.BatteryParams{CapacityKWh: 8, DischargeCutoff: 0.1, ChargeEfficiency: 0.95, MaxPowerKW: 3}

	first, err := Simulate(p, inputs)
	require.NoError(t, err)
	second, err := Simulate(p, inputs)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSimulateDoesNotModifyInputs(t *testing.T) {
	inputs := randomSeries(rand.New(rand.NewSource(3)), 48)
	snapshot := append([]model.HourlyInput(nil), inputs...)
	_, err := Simulate(model.BatteryParams{CapacityKWh: 5, ChargeEfficiency: 1}, inputs)
	require.NoError(t, err)
	assert.Equal(t, snapshot, inputs)
}

func TestSimulateRejectsInvalidParams(t *testing.T) {
	_, err := Simulate(model.BatteryParams{CapacityKWh: 10, DischargeCutoff: 1, ChargeEfficiency: 1}, series([2]float64{1, 1}))
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = Simulate(model.BatteryParams{CapacityKWh: -1, ChargeEfficiency: 1}, nil)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestSimulateRejectsMisalignedInput(t *testing.T) {
	inputs := series([2]float64{1, 1}, [2]float64{1, 1}, [2]float64{1, 1})
	inputs[2].Timestamp = inputs[2].Timestamp.Add(30 * time.Minute)
	_, err := Simulate(model.BatteryParams{CapacityKWh: 10, ChargeEfficiency: 1}, inputs)
	assert.ErrorIs(t, err, model.ErrMisalignedInput)
}

func TestSimulateEmptyInput(t *testing.T) {
	ledger, err := Simulate(model.BatteryParams{CapacityKWh: 10, ChargeEfficiency: 1}, nil)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestEngineRunTotals(t *testing.T) {
	in := model.SimulationInputs{
		Battery: model.BatteryParams{CapacityKWh: 10, ChargeEfficiency: 1},
		Series:  series([2]float64{6, 1}, [2]float64{0, 2}, [2]float64{0, 12}),
	}
	res, err := New().Run(in)
	require.NoError(t, err)

	// 5 -> 10 (charge 5) -> 8 (discharge 2) -> 0 (discharge 8, grid 4)
	assert.Equal(t, 6.0, res.Totals.PVProductionKWh)
	assert.Equal(t, 15.0, res.Totals.ConsumptionKWh)
	assert.Equal(t, 5.0, res.Totals.ChargeKWh)
	assert.Equal(t, 10.0, res.Totals.DischargeKWh)
	assert.Equal(t, 4.0, res.Totals.GridDrawKWh)
	assert.Zero(t, res.Totals.CurtailedKWh)
	assert.Zero(t, res.FinalSOCKWh)
	assert.Equal(t, in.Battery, res.Params)
}
