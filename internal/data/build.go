package data

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// OrientationSource points at the PVGIS download for one roof plane.
type OrientationSource struct {
	Name      string
	PVGISFile string
}

// Sources describes the raw files the dataset is built from.
type Sources struct {
	Orientations    []OrientationSource
	HouseholdCSV    string
	HouseholdColumn string
	ProfileYear     int
	FirstYear       int
	LastYear        int
	Location        *time.Location
}

// Builder loads and merges datasets, consulting an optional cache.
type Builder struct {
	Cache *DatasetCache
	Log   zerolog.Logger
}

// Build returns the merged dataset for src.
func (b *Builder) Build(src Sources) (*Dataset, error) {
	key := GenerateCacheKey(src)
	if ds, ok := b.Cache.Get(key); ok {
		b.Log.Debug().Str("key", key[:12]).Msg("dataset cache hit")
		return ds, nil
	}

	ds, err := BuildDataset(src, b.Log)
	if err != nil {
		return nil, err
	}
	b.Cache.Set(key, ds)
	return ds, nil
}

// BuildDataset parses every source file and merges them.
func BuildDataset(src Sources, log zerolog.Logger) (*Dataset, error) {
	if len(src.Orientations) == 0 {
		return nil, fmt.Errorf("at least one PV orientation source is required")
	}
	if src.HouseholdCSV == "" {
		return nil, fmt.Errorf("household CSV path is required")
	}
	loc := src.Location
	if loc == nil {
		loc = time.UTC
	}
	started := time.Now()

	pv := make(map[string][]PVSample, len(src.Orientations))
	for _, o := range src.Orientations {
		if _, dup := pv[o.Name]; dup {
			return nil, fmt.Errorf("duplicate orientation %q", o.Name)
		}
		resp, err := LoadPVGISJSON(o.PVGISFile)
		if err != nil {
			return nil, fmt.Errorf("orientation %s: %w", o.Name, err)
		}
		samples, err := resp.Samples(loc)
		if err != nil {
			return nil, fmt.Errorf("orientation %s: %w", o.Name, err)
		}
		log.Info().Str("orientation", o.Name).Str("file", o.PVGISFile).Int("rows", len(samples)).Msg("loaded PVGIS series")
		pv[o.Name] = samples
	}

	consumption, err := LoadHouseholdCSV(src.HouseholdCSV, src.HouseholdColumn)
	if err != nil {
		return nil, fmt.Errorf("household data: %w", err)
	}
	log.Info().Str("file", src.HouseholdCSV).Int("hours", len(consumption)).Msg("loaded household consumption")

	profile, err := NormalizeProfile(consumption, src.ProfileYear)
	if err != nil {
		return nil, fmt.Errorf("household data: %w", err)
	}

	ds, err := Merge(pv, profile, src.FirstYear, src.LastYear, loc)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("rows", len(ds.Rows)).
		Ints("years", ds.Years()).
		Dur("took", time.Since(started)).
		Msg("merged dataset")
	return ds, nil
}
