package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is a battery file found in a preset directory.
type Preset struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	File    string        `json:"file"`
	Battery BatteryConfig `json:"battery"`
}

type batteryFileWrapper struct {
	Battery BatteryConfig `yaml:"battery"`
}

// LoadBatteryFile reads a preset YAML with a top-level battery key.
func LoadBatteryFile(path string) (BatteryConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BatteryConfig{}, err
	}
	var w batteryFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return BatteryConfig{}, fmt.Errorf("battery file %s: %w", path, err)
	}
	return w.Battery, nil
}

// ListPresets returns the *.yaml presets of dir sorted by ID. Files that do
// not parse are skipped and reported in the second return value.
func ListPresets(dir string) ([]Preset, []error, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	var (
		out  []Preset
		errs []error
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		b, err := LoadBatteryFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		// Extract ID from filename (e.g., "byd_hvs_10.yaml" -> "byd_hvs_10")
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		name := b.Name
		if name == "" {
			name = id
		}
		out = append(out, Preset{ID: id, Name: name, File: path, Battery: b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, errs, nil
}

// LoadPreset loads the preset with the given ID from dir.
func LoadPreset(dir, id string) (BatteryConfig, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return BatteryConfig{}, fmt.Errorf("invalid preset id %q", id)
	}
	return LoadBatteryFile(filepath.Join(dir, id+".yaml"))
}
