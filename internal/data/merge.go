package data

import (
	"fmt"
	"sort"
	"time"

	"pv-battery-sim/internal/model"
)

// ProfileKey addresses one hour of a calendar year.
type ProfileKey struct {
	Month time.Month
	Day   int
	Hour  int
}

// Profile is a normalized consumption profile: hourly shares of one
// reference year's total, summing to 1.
type Profile struct {
	Year   int
	Shares map[ProfileKey]float64
}

// NormalizeProfile keeps the samples inside the UTC calendar year and divides
// them by the year's total. Keys use the UTC calendar fields, so every hour of
// the reference year has a share and DST never leaves holes in the profile.
func NormalizeProfile(samples []ConsumptionSample, year int) (*Profile, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	p := &Profile{Year: year, Shares: map[ProfileKey]float64{}}
	total := 0.0
	for _, s := range samples {
		t := s.Time.UTC()
		if t.Before(start) || !t.Before(end) {
			continue
		}
		k := ProfileKey{Month: t.Month(), Day: t.Day(), Hour: t.Hour()}
		p.Shares[k] += s.KWh
		total += s.KWh
	}
	if len(p.Shares) == 0 {
		return nil, fmt.Errorf("no consumption samples in %d", year)
	}
	if total <= 0 {
		return nil, fmt.Errorf("consumption total for %d is %v, cannot normalize", year, total)
	}
	for k, v := range p.Shares {
		p.Shares[k] = v / total
	}
	return p, nil
}

// DatasetRow is one hour of the merged multi-year dataset.
type DatasetRow struct {
	Time time.Time
	// PW holds PV output in W per kWp, indexed like Dataset.Orientations.
	PW                []float64
	ConsumptionNormed float64
}

// Dataset is the merged, still unscaled input data. It is built once by the
// caller and can be scaled to any number of system sizes.
type Dataset struct {
	Orientations []string
	Rows         []DatasetRow
	Location     *time.Location
}

// Merge joins the orientations on their timestamps and then joins each year
// in [firstYear, lastYear] with the profile on (month, day, hour). Calendar
// fields of the PV side are taken in loc. Years of 0 mean no bound.
// Row times are truncated to the hour.
func Merge(orientations map[string][]PVSample, profile *Profile, firstYear, lastYear int, loc *time.Location) (*Dataset, error) {
	if len(orientations) == 0 {
		return nil, fmt.Errorf("no PV orientations to merge")
	}
	if profile == nil {
		return nil, fmt.Errorf("consumption profile is nil")
	}
	if loc == nil {
		loc = time.UTC
	}

	names := make([]string, 0, len(orientations))
	for name := range orientations {
		names = append(names, name)
	}
	sort.Strings(names)

	byTime := make([]map[int64]float64, len(names))
	for i, name := range names {
		m := make(map[int64]float64, len(orientations[name]))
		for _, s := range orientations[name] {
			m[s.Time.Unix()] = s.PW
		}
		byTime[i] = m
	}

	ref := append([]PVSample(nil), orientations[names[0]]...)
	sort.SliceStable(ref, func(i, j int) bool { return ref[i].Time.Before(ref[j].Time) })

	ds := &Dataset{Orientations: names, Location: loc}
	for _, s := range ref {
		local := s.Time.In(loc)
		y := local.Year()
		if (firstYear != 0 && y < firstYear) || (lastYear != 0 && y > lastYear) {
			continue
		}
		share, ok := profile.Shares[ProfileKey{Month: local.Month(), Day: local.Day(), Hour: local.Hour()}]
		if !ok {
			continue
		}
		pw := make([]float64, len(names))
		complete := true
		for i := range names {
			v, ok := byTime[i][s.Time.Unix()]
			if !ok {
				complete = false
				break
			}
			pw[i] = v
		}
		if !complete {
			continue
		}
		ds.Rows = append(ds.Rows, DatasetRow{
			Time:              s.Time.Truncate(time.Hour).In(loc),
			PW:                pw,
			ConsumptionNormed: share,
		})
	}
	if len(ds.Rows) == 0 {
		return nil, fmt.Errorf("merged dataset is empty")
	}
	return ds, nil
}

// Years lists the distinct calendar years of the dataset in order.
func (ds *Dataset) Years() []int {
	var out []int
	for _, r := range ds.Rows {
		if y := r.Time.Year(); len(out) == 0 || out[len(out)-1] != y {
			out = append(out, y)
		}
	}
	return out
}

// Scale turns the dataset into the engine's input series for one system size.
//
// Building load is the normalized profile summed over the profile shifts,
// each shift rotating the whole series circularly by that many hours, times
// the yearly consumption per unit. PV is the sum over orientations of
// installed kWp times W per kWp.
func (ds *Dataset) Scale(sys model.SystemParams) ([]model.HourlyInput, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(ds.Orientations))
	for i, name := range ds.Orientations {
		idx[name] = i
	}
	cols := make([]int, len(sys.Orientations))
	for i, o := range sys.Orientations {
		c, ok := idx[o.Name]
		if !ok {
			return nil, fmt.Errorf("orientation %q not in dataset (have %v)", o.Name, ds.Orientations)
		}
		cols[i] = c
	}

	n := len(ds.Rows)
	out := make([]model.HourlyInput, n)
	for i, r := range ds.Rows {
		load := 0.0
		for _, k := range sys.ProfileShifts {
			load += ds.Rows[mod(i-k, n)].ConsumptionNormed
		}
		pv := 0.0
		for j, o := range sys.Orientations {
			pv += o.InstalledKWp * r.PW[cols[j]] * 1e-3
		}
		out[i] = model.HourlyInput{
			Timestamp:      r.Time,
			PVProductionKW: pv,
			ConsumptionKW:  load * sys.ConsumptionPerUnitPerYearKWh,
		}
	}
	return out, nil
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
