package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() BatteryParams {
	return BatteryParams{CapacityKWh: 10, DischargeCutoff: 0.1, ChargeEfficiency: 0.95}
}

func TestNewBatteryStartsHalfFull(t *testing.T) {
	b, err := NewBattery(validParams())
	require.NoError(t, err)
	assert.Equal(t, 5.0, b.State.SOCKWh)
}

func TestBatteryParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *BatteryParams)
		ok     bool
	}{
		{"valid", func(p *BatteryParams) {}, true},
		{"zero capacity", func(p *BatteryParams) { p.CapacityKWh = 0 }, false},
		{"negative capacity", func(p *BatteryParams) { p.CapacityKWh = -1 }, false},
		{"infinite capacity", func(p *BatteryParams) { p.CapacityKWh = math.Inf(1) }, false},
		{"cutoff one", func(p *BatteryParams) { p.DischargeCutoff = 1 }, false},
		{"negative cutoff", func(p *BatteryParams) { p.DischargeCutoff = -0.1 }, false},
		{"zero cutoff", func(p *BatteryParams) { p.DischargeCutoff = 0 }, true},
		{"zero efficiency", func(p *BatteryParams) { p.ChargeEfficiency = 0 }, false},
		{"efficiency above one", func(p *BatteryParams) { p.ChargeEfficiency = 1.01 }, false},
		{"efficiency one", func(p *BatteryParams) { p.ChargeEfficiency = 1 }, true},
		{"negative power", func(p *BatteryParams) { p.MaxPowerKW = -2 }, false},
		{"nan power", func(p *BatteryParams) { p.MaxPowerKW = math.NaN() }, false},
		{"infinite power", func(p *BatteryParams) { p.MaxPowerKW = math.Inf(1) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestPowerLimitDefaultsToUnlimited(t *testing.T) {
	p := validParams()
	assert.True(t, math.IsInf(p.PowerLimitKW(), 1))
	p.MaxPowerKW = 3
	assert.Equal(t, 3.0, p.PowerLimitKW())
}

func TestStepChargeCurtailsBeyondHeadroom(t *testing.T) {
	b := &Battery{
		Params: BatteryParams{CapacityKWh: 10, ChargeEfficiency: 0.5},
		State:  BatteryState{SOCKWh: 9},
	}
	res := b.Step(6, 2)
	assert.Equal(t, 4.0, res.SurplusKW)
	assert.InDelta(t, 1.0, res.ChargeKWh, 1e-12)
	// 2 kWh of surplus fed 1 kWh into the battery, the other 2 kWh had nowhere to go.
	assert.InDelta(t, 2.0, res.CurtailedKWh, 1e-12)
	assert.Zero(t, res.GridDrawKWh)
	assert.InDelta(t, 10.0, b.State.SOCKWh, 1e-12)
}

func TestStepNegativeHeadroomIsClampedToZero(t *testing.T) {
	b := &Battery{
		Params: BatteryParams{CapacityKWh: 10, DischargeCutoff: 0.5, ChargeEfficiency: 1},
		State:  BatteryState{SOCKWh: 4},
	}
	res := b.Step(0, 3)
	assert.Zero(t, res.DischargeKWh)
	assert.Equal(t, 3.0, res.GridDrawKWh)
	assert.Equal(t, 4.0, b.State.SOCKWh)

	b.State.SOCKWh = 10.000000001
	res = b.Step(5, 0)
	assert.Zero(t, res.ChargeKWh)
	assert.Equal(t, 5.0, res.CurtailedKWh)
}

func TestStepZeroSurplusIsIdle(t *testing.T) {
	b, err := NewBattery(validParams())
	require.NoError(t, err)
	res := b.Step(2, 2)
	assert.Zero(t, res.ChargeKWh)
	assert.Zero(t, res.DischargeKWh)
	assert.Zero(t, res.GridDrawKWh)
	assert.Equal(t, ActionIdle, ActionFromStep(res.ChargeKWh, res.DischargeKWh))
}

func TestActionFromStep(t *testing.T) {
	assert.Equal(t, ActionCharging, ActionFromStep(1, 0))
	assert.Equal(t, ActionDischarging, ActionFromStep(0, 1))
	assert.Equal(t, ActionIdle, ActionFromStep(0, 0))
}
