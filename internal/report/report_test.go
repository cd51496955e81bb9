package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pv-battery-sim/internal/analysis"
	"pv-battery-sim/internal/dispatch"
	"pv-battery-sim/internal/model"
)

func sampleResult(t *testing.T) *dispatch.Result {
	t.Helper()
	start := time.Date(2019, 12, 30, 0, 0, 0, 0, time.UTC)
	var series []model.HourlyInput
	for i := 0; i < 24*5; i++ {
		h := i % 24
		pv := 0.0
		if h >= 9 && h <= 15 {
			pv = 3
		}
		series = append(series, model.HourlyInput{
			Timestamp:      start.Add(time.Duration(i) * time.Hour),
			PVProductionKW: pv,
			ConsumptionKW:  0.8,
		})
	}
	res, err := dispatch.New().Run(model.SimulationInputs{
		Series:  series,
		Battery: model.BatteryParams{CapacityKWh: 5, DischargeCutoff: 0.1, ChargeEfficiency: 0.95},
	})
	require.NoError(t, err)
	return res
}

func TestNewData(t *testing.T) {
	d := NewData(sampleResult(t), nil, 0)
	assert.Equal(t, analysis.DefaultFullThreshold, d.FullThreshold)
	require.Len(t, d.Annual, 2)
	assert.Equal(t, 2019, d.Summary.FirstYear)
	assert.Equal(t, 2020, d.Summary.LastYear)
	assert.Len(t, d.Monthly, 12)
	assert.Len(t, d.Battery, 12)
	assert.Equal(t, "2019-2020", d.yearRange())
}

func TestBuildPDF(t *testing.T) {
	sys := &model.SystemParams{
		ConsumptionPerUnitPerYearKWh: 3200,
		ProfileShifts:                []int{0, 1},
		Orientations:                 []model.Orientation{{Name: "oso", InstalledKWp: 10}},
	}
	out, err := BuildPDF(NewData(sampleResult(t), sys, 0.9))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestBuildPDFEmptyRun(t *testing.T) {
	res := &dispatch.Result{Params: model.BatteryParams{CapacityKWh: 1, ChargeEfficiency: 1}}
	out, err := BuildPDF(NewData(res, nil, 0))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestBuildXLSX(t *testing.T) {
	d := NewData(sampleResult(t), nil, 0)
	out, err := BuildXLSX(d)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetAnnual, SheetMonthly, SheetBattery}, f.GetSheetList())

	annual, err := f.GetRows(SheetAnnual)
	require.NoError(t, err)
	require.Len(t, annual, 3)
	assert.Equal(t, "Year", annual[0][0])
	assert.Equal(t, "2019", annual[1][0])
	assert.Equal(t, "48", annual[1][1])

	monthly, err := f.GetRows(SheetMonthly)
	require.NoError(t, err)
	assert.Len(t, monthly, 13)
	assert.Equal(t, "January", monthly[1][0])

	title, err := f.GetCellValue(SheetSummary, "A1")
	require.NoError(t, err)
	assert.Equal(t, d.Title, title)
}

func TestSummaryLines(t *testing.T) {
	lines := SummaryLines(analysis.Summary{
		MeanPVUsedKWh:           4321.987,
		MeanConsumptionKWh:      16000,
		MeanGridIndependencePct: 72.26,
		MeanSelfConsumptionPct:  35.04,
	})
	assert.Equal(t, []string{
		"Average annual PV power used: 4321.99 kWh",
		"Consumption: 16000.00 kWh",
		"Average grid independence rate: 72.3%",
		"Average PV self-consumption rate: 35.0%",
	}, lines)
}

func TestNiceCeil(t *testing.T) {
	assert.Equal(t, 1.0, niceCeil(0.7))
	assert.Equal(t, 20.0, niceCeil(13))
	assert.Equal(t, 500.0, niceCeil(420))
	assert.Equal(t, 1000.0, niceCeil(900))
}
