package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv-battery-sim/internal/dispatch"
	"pv-battery-sim/internal/model"
)

func TestMonthlyAveragesOverYears(t *testing.T) {
	ledger := []dispatch.HourlyOutput{
		row(time.Date(2019, 1, 5, 12, 0, 0, 0, time.UTC), 10, 4, 0),
		row(time.Date(2019, 1, 6, 12, 0, 0, 0, time.UTC), 0, 2, 2),
		row(time.Date(2020, 1, 5, 12, 0, 0, 0, time.UTC), 20, 5, 1),
		row(time.Date(2020, 7, 1, 12, 0, 0, 0, time.UTC), 8, 8, 0),
	}
	months := Monthly(ledger)
	require.Len(t, months, 12)

	jan := months[0]
	assert.Equal(t, time.January, jan.Month)
	assert.Equal(t, 2, jan.Years)
	// 2019: pv 10, used 4 -> unused 6; 2020: pv 20, used 4 -> unused 16
	assert.InDelta(t, 15.0, jan.PVProductionKWh, 1e-12)
	assert.InDelta(t, 11.0, jan.PVUnusedKWh, 1e-12)

	jul := months[6]
	assert.Equal(t, 1, jul.Years)
	assert.InDelta(t, 8.0, jul.PVProductionKWh, 1e-12)
	assert.Zero(t, jul.PVUnusedKWh)

	assert.Zero(t, months[2].Years)
	assert.Equal(t, time.December, months[11].Month)
}

func TestBatteryStatus(t *testing.T) {
	params := model.BatteryParams{CapacityKWh: 10, DischargeCutoff: 0.1, ChargeEfficiency: 1}
	soc := func(ts time.Time, kwh float64) dispatch.HourlyOutput {
		return dispatch.HourlyOutput{Timestamp: ts, SOCKWh: kwh}
	}
	d1 := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	d3 := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	ledger := []dispatch.HourlyOutput{
		soc(d1, 5), soc(d1.Add(time.Hour), 9), soc(d1.Add(2*time.Hour), 1),
		soc(d2, 4), soc(d2.Add(time.Hour), 6),
		soc(d3, 9.5),
	}

	status := BatteryStatus(ledger, params, 0)
	require.Len(t, status, 12)
	mar := status[2]
	assert.Equal(t, time.March, mar.Month)
	assert.Equal(t, 3, mar.Days)
	assert.Equal(t, 2, mar.FullDays)
	assert.Equal(t, 1, mar.EmptyDays)

	strict := BatteryStatus(ledger, params, 0.96)
	assert.Zero(t, strict[2].FullDays)
}

func TestBatteryStatusUsesLocalDays(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	params := model.BatteryParams{CapacityKWh: 10, ChargeEfficiency: 1}

	// 23:00 UTC on 31 May is already 1 June in Berlin.
	ledger := []dispatch.HourlyOutput{
		{Timestamp: time.Date(2020, 5, 31, 21, 0, 0, 0, time.UTC).In(berlin), SOCKWh: 5},
		{Timestamp: time.Date(2020, 5, 31, 22, 0, 0, 0, time.UTC).In(berlin), SOCKWh: 10},
	}
	status := BatteryStatus(ledger, params, 0)
	assert.Equal(t, 1, status[4].Days)
	assert.Equal(t, 1, status[5].Days)
	assert.Equal(t, 1, status[5].FullDays)
	assert.Zero(t, status[4].FullDays)
}
