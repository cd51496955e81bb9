package report

import (
	"strconv"
	"time"

	"pv-battery-sim/internal/analysis"
	"pv-battery-sim/internal/dispatch"
	"pv-battery-sim/internal/model"
)

// Data is everything a report renders. It is derived from one run.
type Data struct {
	Title     string
	Generated time.Time

	Params model.BatteryParams
	// System is the sizing the series was scaled with, when known.
	System *model.SystemParams

	Totals  dispatch.Totals
	Summary analysis.Summary
	Annual  []analysis.AnnualStats
	Monthly []analysis.MonthlyStats
	Battery []analysis.MonthlyBatteryStatus

	FullThreshold float64
}

// NewData aggregates a run result for reporting.
func NewData(res *dispatch.Result, sys *model.SystemParams, fullThreshold float64) Data {
	if fullThreshold <= 0 {
		fullThreshold = analysis.DefaultFullThreshold
	}
	annual := analysis.Annual(res.Ledger)
	return Data{
		Title:         "PV Battery Simulation",
		Generated:     time.Now().UTC(),
		Params:        res.Params,
		System:        sys,
		Totals:        res.Totals,
		Summary:       analysis.Summarize(annual),
		Annual:        annual,
		Monthly:       analysis.Monthly(res.Ledger),
		Battery:       analysis.BatteryStatus(res.Ledger, res.Params, fullThreshold),
		FullThreshold: fullThreshold,
	}
}

func (d Data) yearRange() string {
	if d.Summary.Years == 0 {
		return "no data"
	}
	if d.Summary.FirstYear == d.Summary.LastYear {
		return strconv.Itoa(d.Summary.FirstYear)
	}
	return strconv.Itoa(d.Summary.FirstYear) + "-" + strconv.Itoa(d.Summary.LastYear)
}
