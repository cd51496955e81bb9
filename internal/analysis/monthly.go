package analysis

import (
	"time"

	"pv-battery-sim/internal/dispatch"
	"pv-battery-sim/internal/model"
)

// DefaultFullThreshold is the share of capacity at which a day counts as
// "battery full".
const DefaultFullThreshold = 0.9

// MonthlyStats is the mean over all years of one calendar month.
type MonthlyStats struct {
	Month           time.Month `json:"month"`
	Years           int        `json:"years"`
	PVProductionKWh float64    `json:"pv_production_kwh"`
	PVUnusedKWh     float64    `json:"pv_unused_kwh"`
}

type yearMonth struct {
	year  int
	month time.Month
}

// Monthly returns twelve rows, January first. Each row averages the month's
// PV total and unused PV (PV minus consumption covered without the grid)
// over the years in which that month appears.
func Monthly(ledger []dispatch.HourlyOutput) []MonthlyStats {
	type acc struct{ pv, cons, grid float64 }
	sums := map[yearMonth]*acc{}
	for _, row := range ledger {
		k := yearMonth{row.Timestamp.Year(), row.Timestamp.Month()}
		a, ok := sums[k]
		if !ok {
			a = &acc{}
			sums[k] = a
		}
		a.pv += row.PVProductionKW
		a.cons += row.ConsumptionKW
		a.grid += row.GridDrawKWh
	}

	out := make([]MonthlyStats, 12)
	for i := range out {
		out[i].Month = time.Month(i + 1)
	}
	for k, a := range sums {
		m := &out[k.month-1]
		m.Years++
		m.PVProductionKWh += a.pv
		m.PVUnusedKWh += a.pv - (a.cons - a.grid)
	}
	for i := range out {
		if n := out[i].Years; n > 0 {
			out[i].PVProductionKWh /= float64(n)
			out[i].PVUnusedKWh /= float64(n)
		}
	}
	return out
}

// MonthlyBatteryStatus counts days, summed over all years, on which the
// battery reached full or empty.
type MonthlyBatteryStatus struct {
	Month     time.Month `json:"month"`
	Days      int        `json:"days"`
	FullDays  int        `json:"full_days"`
	EmptyDays int        `json:"empty_days"`
}

// BatteryStatus looks at the end-of-hour state of charge per local day. A day
// is full if its maximum reaches fullThreshold*capacity and empty if its
// minimum drops to capacity*cutoff. A fullThreshold of 0 means
// DefaultFullThreshold.
func BatteryStatus(ledger []dispatch.HourlyOutput, params model.BatteryParams, fullThreshold float64) []MonthlyBatteryStatus {
	if fullThreshold <= 0 {
		fullThreshold = DefaultFullThreshold
	}
	fullAt := params.CapacityKWh * fullThreshold
	emptyAt := params.FloorKWh()

	out := make([]MonthlyBatteryStatus, 12)
	for i := range out {
		out[i].Month = time.Month(i + 1)
	}

	flush := func(day time.Time, lo, hi float64) {
		m := &out[day.Month()-1]
		m.Days++
		if hi >= fullAt {
			m.FullDays++
		}
		if lo <= emptyAt {
			m.EmptyDays++
		}
	}

	var (
		day    time.Time
		lo, hi float64
		open   bool
	)
	for _, row := range ledger {
		d := localDay(row.Timestamp)
		if !open || !d.Equal(day) {
			if open {
				flush(day, lo, hi)
			}
			day, lo, hi, open = d, row.SOCKWh, row.SOCKWh, true
			continue
		}
		lo = min(lo, row.SOCKWh)
		hi = max(hi, row.SOCKWh)
	}
	if open {
		flush(day, lo, hi)
	}
	return out
}

func localDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
