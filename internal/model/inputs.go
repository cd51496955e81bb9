package model

import (
	"errors"
	"fmt"
)

// Orientation is one roof plane with its installed peak power.
type Orientation struct {
	Name         string
	InstalledKWp float64
}

// SystemParams is the sizing applied to the normalized dataset before the
// dispatch engine runs. The engine itself only sees scaled kW values.
type SystemParams struct {
	ConsumptionPerUnitPerYearKWh float64
	// ProfileShifts lists hour offsets of the normalized consumption profile
	// summed into the building load, one entry per housing unit.
	ProfileShifts []int
	Orientations  []Orientation
}

func (s SystemParams) Validate() error {
	if s.ConsumptionPerUnitPerYearKWh < 0 {
		return fmt.Errorf("%w: consumption_per_unit_per_year_kwh must be >= 0", ErrInvalidParameter)
	}
	if len(s.ProfileShifts) == 0 {
		return fmt.Errorf("%w: at least one profile shift is required", ErrInvalidParameter)
	}
	if len(s.Orientations) == 0 {
		return fmt.Errorf("%w: at least one orientation is required", ErrInvalidParameter)
	}
	seen := map[string]bool{}
	for _, o := range s.Orientations {
		if o.Name == "" {
			return fmt.Errorf("%w: orientation name is required", ErrInvalidParameter)
		}
		if seen[o.Name] {
			return fmt.Errorf("%w: duplicate orientation %q", ErrInvalidParameter, o.Name)
		}
		seen[o.Name] = true
		if o.InstalledKWp < 0 {
			return fmt.Errorf("%w: orientation %q installed_kwp must be >= 0", ErrInvalidParameter, o.Name)
		}
	}
	return nil
}

// SimulationInputs bundles everything one run needs.
type SimulationInputs struct {
	Series  Series
	Battery BatteryParams
}

func (in SimulationInputs) Validate() error {
	return errors.Join(in.Battery.Validate(), in.Series.Validate())
}
