package models

import (
	"pv-battery-sim/internal/analysis"
	"pv-battery-sim/internal/config"
)

// SimulationRequest represents the request body for running a simulation
type SimulationRequest struct {
	// BatteryFile is a preset ID from the battery directory (e.g. "home_10kwh").
	BatteryFile string               `json:"battery_file,omitempty"`
	Battery     config.BatteryConfig `json:"battery"`
	System      *SystemOverride      `json:"system,omitempty"`
	Options     SimulationOptions    `json:"options,omitempty"`
}

// SystemOverride replaces parts of the server's default sizing. Unset fields
// keep the default.
type SystemOverride struct {
	ConsumptionPerUnitPerYearKWh *float64              `json:"consumption_per_unit_per_year_kwh,omitempty"`
	ProfileShifts                []int                 `json:"profile_shifts,omitempty"`
	Orientations                 []OrientationOverride `json:"orientations,omitempty"`
}

// OrientationOverride sets the installed peak power of one roof plane.
type OrientationOverride struct {
	Name         string  `json:"name" binding:"required"`
	InstalledKWp float64 `json:"installed_kwp"`
}

// SimulationOptions contains optional simulation parameters
type SimulationOptions struct {
	LimitHours    int     `json:"limit_hours,omitempty"`    // 0 = all
	IncludeLedger bool    `json:"include_ledger,omitempty"` // default: false
	FullThreshold float64 `json:"full_threshold,omitempty"` // default: server config
}

// CompareRequest runs several variations of a base request
type CompareRequest struct {
	Base       SimulationRequest `json:"base"`
	Variations []Variation       `json:"variations" binding:"required,min=1,dive"`
}

// Variation overrides the base battery and sizing
type Variation struct {
	Name        string               `json:"name" binding:"required"`
	BatteryFile string               `json:"battery_file,omitempty"`
	Battery     config.BatteryConfig `json:"battery"`
	System      *SystemOverride      `json:"system,omitempty"`
}

// SweepRequest searches a grid of battery parameters
type SweepRequest struct {
	Grid    analysis.SweepGrid `json:"grid"`
	System  *SystemOverride    `json:"system,omitempty"`
	Workers int                `json:"workers,omitempty"`
	Top     int                `json:"top,omitempty"` // 0 = all
}
