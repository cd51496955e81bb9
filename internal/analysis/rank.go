package analysis

import (
	"sort"
)

// Rank sorts results by mean annual PV used, descending, and numbers them
// from 1. Ties go to the smaller battery, then the higher cutoff, then the
// lower efficiency and power limit. Unlimited power sorts after any cap.
func Rank(results []SweepResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Summary.MeanPVUsedKWh != b.Summary.MeanPVUsedKWh {
			return a.Summary.MeanPVUsedKWh > b.Summary.MeanPVUsedKWh
		}
		if a.Params.CapacityKWh != b.Params.CapacityKWh {
			return a.Params.CapacityKWh < b.Params.CapacityKWh
		}
		if a.Params.DischargeCutoff != b.Params.DischargeCutoff {
			return a.Params.DischargeCutoff > b.Params.DischargeCutoff
		}
		if a.Params.ChargeEfficiency != b.Params.ChargeEfficiency {
			return a.Params.ChargeEfficiency < b.Params.ChargeEfficiency
		}
		return a.Params.PowerLimitKW() < b.Params.PowerLimitKW()
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}
