package handlers

import (
	"errors"
	"fmt"
	"sync"

	"pv-battery-sim/internal/api/models"
	"pv-battery-sim/internal/data"
	"pv-battery-sim/internal/model"
)

// ErrFixedSeries is returned when a sizing override is sent to a server that
// runs on a prebuilt series.
var ErrFixedSeries = errors.New("server runs on a prebuilt series; system overrides are not supported")

// SeriesSource produces the input series for a run, optionally resized.
type SeriesSource interface {
	Series(o *models.SystemOverride) ([]model.HourlyInput, *model.SystemParams, error)
}

// DatasetSource builds the merged dataset through Builder on every call, so
// the cache serves repeat requests and edited source files are picked up once
// their cache key changes. The series for the default sizing is kept until the
// dataset changes.
type DatasetSource struct {
	Builder *data.Builder
	Sources data.Sources
	System  model.SystemParams

	mu     sync.Mutex
	scaled *data.Dataset
	series []model.HourlyInput
}

// Dataset returns the current merged dataset.
func (s *DatasetSource) Dataset() (*data.Dataset, error) {
	return s.Builder.Build(s.Sources)
}

func (s *DatasetSource) Series(o *models.SystemOverride) ([]model.HourlyInput, *model.SystemParams, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, nil, err
	}
	if o == nil {
		series, err := s.defaultSeries(ds)
		if err != nil {
			return nil, nil, err
		}
		sys := ApplyOverride(s.System, nil)
		return series, &sys, nil
	}
	sys := ApplyOverride(s.System, o)
	series, err := ds.Scale(sys)
	if err != nil {
		return nil, nil, err
	}
	return series, &sys, nil
}

func (s *DatasetSource) defaultSeries(ds *data.Dataset) ([]model.HourlyInput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scaled == ds {
		return s.series, nil
	}
	series, err := ds.Scale(s.System)
	if err != nil {
		return nil, err
	}
	s.scaled, s.series = ds, series
	return series, nil
}

// FixedSource serves a series that was already aligned and scaled.
type FixedSource struct {
	Inputs []model.HourlyInput
}

func (s FixedSource) Series(o *models.SystemOverride) ([]model.HourlyInput, *model.SystemParams, error) {
	if o != nil {
		return nil, nil, fmt.Errorf("%w: %w", model.ErrInvalidParameter, ErrFixedSeries)
	}
	return s.Inputs, nil, nil
}

// ApplyOverride returns base with the override's fields set. Orientations
// are matched by name; unknown names are added.
func ApplyOverride(base model.SystemParams, o *models.SystemOverride) model.SystemParams {
	out := model.SystemParams{
		ConsumptionPerUnitPerYearKWh: base.ConsumptionPerUnitPerYearKWh,
		ProfileShifts:                append([]int(nil), base.ProfileShifts...),
		Orientations:                 append([]model.Orientation(nil), base.Orientations...),
	}
	if o == nil {
		return out
	}
	if o.ConsumptionPerUnitPerYearKWh != nil {
		out.ConsumptionPerUnitPerYearKWh = *o.ConsumptionPerUnitPerYearKWh
	}
	if len(o.ProfileShifts) > 0 {
		out.ProfileShifts = append([]int(nil), o.ProfileShifts...)
	}
	for _, ov := range o.Orientations {
		found := false
		for i := range out.Orientations {
			if out.Orientations[i].Name == ov.Name {
				out.Orientations[i].InstalledKWp = ov.InstalledKWp
				found = true
				break
			}
		}
		if !found {
			out.Orientations = append(out.Orientations, model.Orientation{Name: ov.Name, InstalledKWp: ov.InstalledKWp})
		}
	}
	return out
}
