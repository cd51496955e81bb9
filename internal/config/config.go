package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"pv-battery-sim/internal/analysis"
	"pv-battery-sim/internal/data"
	"pv-battery-sim/internal/model"
)

// EnvPrefix marks environment overrides, e.g. PVSIM_BATTERY__CAPACITY_KWH=15.
const EnvPrefix = "PVSIM_"

// DefaultProfileShifts sum five rotated copies of the household profile,
// one per flat.
var DefaultProfileShifts = []int{0, 1, 2, 7, -6}

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load battery parameters from a preset file (e.g. examples/batteries/*.yaml).
	// If both BatteryFile and Battery are provided, Battery overrides BatteryFile.
	BatteryFile string        `yaml:"battery_file"`
	Battery     BatteryConfig `yaml:"battery"`
	System      SystemConfig  `yaml:"system"`
	Data        DataConfig    `yaml:"data"`
	Report      ReportConfig  `yaml:"report"`
	Server      ServerConfig  `yaml:"server"`
	Sweep       SweepConfig   `yaml:"sweep"`

	dir string
}

type BatteryConfig struct {
	Name             string  `yaml:"name" json:"name,omitempty"`
	CapacityKWh      float64 `yaml:"capacity_kwh" json:"capacity_kwh"`
	DischargeCutoff  float64 `yaml:"discharge_cutoff" json:"discharge_cutoff"`
	ChargeEfficiency float64 `yaml:"charge_efficiency" json:"charge_efficiency"`
	MaxPowerKW       float64 `yaml:"max_power_kw" json:"max_power_kw,omitempty"`
}

type OrientationConfig struct {
	Name         string  `yaml:"name"`
	InstalledKWp float64 `yaml:"installed_kwp"`
	PVGISFile    string  `yaml:"pvgis_file"`
}

type SystemConfig struct {
	ConsumptionPerUnitPerYearKWh float64             `yaml:"consumption_per_unit_per_year_kwh"`
	ProfileShifts                []int               `yaml:"profile_shifts"`
	Orientations                 []OrientationConfig `yaml:"orientations"`
}

type DataConfig struct {
	Timezone        string `yaml:"timezone"`
	HouseholdCSV    string `yaml:"household_csv"`
	HouseholdColumn string `yaml:"household_column"`
	ProfileYear     int    `yaml:"profile_year"`
	FirstYear       int    `yaml:"first_year"`
	LastYear        int    `yaml:"last_year"`
	// SeriesCSV is an already aligned series; when set the raw sources are
	// not read.
	SeriesCSV string        `yaml:"series_csv"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

type ReportConfig struct {
	FullThreshold float64 `yaml:"full_threshold"`
}

type ServerConfig struct {
	Port          int    `yaml:"port"`
	BatteryDir    string `yaml:"battery_dir"`
	StaticDir     string `yaml:"static_dir"`
	Env           string `yaml:"env"`
	MaxStoredRuns int    `yaml:"max_stored_runs"`
}

type SweepConfig struct {
	CapacitiesKWh      []float64 `yaml:"capacities_kwh"`
	DischargeCutoffs   []float64 `yaml:"discharge_cutoffs"`
	ChargeEfficiencies []float64 `yaml:"charge_efficiencies"`
	MaxPowersKW        []float64 `yaml:"max_powers_kw"`
	Workers            int       `yaml:"workers"`
}

// Grid returns the sweep axes. Empty cutoff and efficiency axes fall back to
// the configured battery's values.
func (c *Config) Grid() analysis.SweepGrid {
	g := analysis.SweepGrid{
		CapacitiesKWh:      c.Sweep.CapacitiesKWh,
		DischargeCutoffs:   c.Sweep.DischargeCutoffs,
		ChargeEfficiencies: c.Sweep.ChargeEfficiencies,
		MaxPowersKW:        c.Sweep.MaxPowersKW,
	}
	if len(g.CapacitiesKWh) == 0 {
		g.CapacitiesKWh = []float64{c.Battery.CapacityKWh}
	}
	if len(g.DischargeCutoffs) == 0 {
		g.DischargeCutoffs = []float64{c.Battery.DischargeCutoff}
	}
	if len(g.ChargeEfficiencies) == 0 {
		g.ChargeEfficiencies = []float64{c.Battery.ChargeEfficiency}
	}
	if len(g.MaxPowersKW) == 0 {
		g.MaxPowersKW = []float64{c.Battery.MaxPowerKW}
	}
	return g
}

// Load reads the YAML file, applies PVSIM_ environment overrides, merges the
// battery preset and validates the result.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var c Config
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	c.dir = filepath.Dir(path)
	c.SetDefaults()

	// If battery_file is set, load it and merge in any explicit overrides from c.Battery.
	if c.BatteryFile != "" {
		loaded, err := LoadBatteryFile(c.Resolve(c.BatteryFile))
		if err != nil {
			return nil, err
		}
		c.Battery = MergeBattery(loaded, c.Battery)
	}
	return &c, nil
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if len(c.System.ProfileShifts) == 0 {
		c.System.ProfileShifts = append([]int(nil), DefaultProfileShifts...)
	}
	if c.Data.Timezone == "" {
		c.Data.Timezone = "Europe/Berlin"
	}
	if c.Data.HouseholdColumn == "" {
		c.Data.HouseholdColumn = data.DefaultHouseholdColumn
	}
	if c.Data.ProfileYear == 0 {
		c.Data.ProfileYear = 2016
	}
	if c.Report.FullThreshold == 0 {
		c.Report.FullThreshold = analysis.DefaultFullThreshold
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxStoredRuns == 0 {
		c.Server.MaxStoredRuns = 100
	}
	if c.Sweep.Workers == 0 {
		c.Sweep.Workers = runtime.NumCPU()
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Battery.ToModelParams().Validate(); err != nil {
		return fmt.Errorf("battery config invalid: %w", err)
	}
	if c.Data.SeriesCSV == "" {
		if err := c.SystemParams().Validate(); err != nil {
			return fmt.Errorf("system config invalid: %w", err)
		}
		if c.Data.HouseholdCSV == "" {
			return errors.New("data.household_csv is required unless data.series_csv is set")
		}
		for _, o := range c.System.Orientations {
			if o.PVGISFile == "" {
				return fmt.Errorf("system.orientations[%s].pvgis_file is required", o.Name)
			}
		}
	}
	if _, err := time.LoadLocation(c.Data.Timezone); err != nil {
		return fmt.Errorf("data.timezone: %w", err)
	}
	if c.Data.FirstYear != 0 && c.Data.LastYear != 0 && c.Data.FirstYear > c.Data.LastYear {
		return errors.New("data.first_year must not be after data.last_year")
	}
	if c.Report.FullThreshold <= 0 || c.Report.FullThreshold > 1 {
		return errors.New("report.full_threshold must be within (0, 1]")
	}
	return nil
}

// Resolve interprets relative paths as relative to the config file
// directory, falling back to the path as given (relative to cwd) if that
// doesn't exist.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	cand := filepath.Join(c.dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func (b BatteryConfig) ToModelParams() model.BatteryParams {
	return model.BatteryParams{
		CapacityKWh:      b.CapacityKWh,
		DischargeCutoff:  b.DischargeCutoff,
		ChargeEfficiency: b.ChargeEfficiency,
		MaxPowerKW:       b.MaxPowerKW,
	}
}

func (c *Config) SystemParams() model.SystemParams {
	sys := model.SystemParams{
		ConsumptionPerUnitPerYearKWh: c.System.ConsumptionPerUnitPerYearKWh,
		ProfileShifts:                append([]int(nil), c.System.ProfileShifts...),
	}
	for _, o := range c.System.Orientations {
		sys.Orientations = append(sys.Orientations, model.Orientation{Name: o.Name, InstalledKWp: o.InstalledKWp})
	}
	return sys
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Data.Timezone)
}

// Sources describes the raw files of the dataset with paths resolved.
func (c *Config) Sources() (data.Sources, error) {
	loc, err := c.Location()
	if err != nil {
		return data.Sources{}, err
	}
	src := data.Sources{
		HouseholdCSV:    c.Resolve(c.Data.HouseholdCSV),
		HouseholdColumn: c.Data.HouseholdColumn,
		ProfileYear:     c.Data.ProfileYear,
		FirstYear:       c.Data.FirstYear,
		LastYear:        c.Data.LastYear,
		Location:        loc,
	}
	for _, o := range c.System.Orientations {
		src.Orientations = append(src.Orientations, data.OrientationSource{Name: o.Name, PVGISFile: c.Resolve(o.PVGISFile)})
	}
	return src, nil
}

// MergeBattery overlays non-zero fields from override onto base.
// This is used when loading a battery file and then applying overrides from the request.
func MergeBattery(base, override BatteryConfig) BatteryConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.CapacityKWh != 0 {
		out.CapacityKWh = override.CapacityKWh
	}
	// Note: a cutoff of 0 cannot override a preset's cutoff.
	if override.DischargeCutoff != 0 {
		out.DischargeCutoff = override.DischargeCutoff
	}
	if override.ChargeEfficiency != 0 {
		out.ChargeEfficiency = override.ChargeEfficiency
	}
	if override.MaxPowerKW != 0 {
		out.MaxPowerKW = override.MaxPowerKW
	}
	return out
}
