package data

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// pvgisTimeLayout matches PVGIS hourly timestamps such as "20050101:0010" (UTC).
const pvgisTimeLayout = "20060102:1504"

// PVGISResponse matches the JSON shape of a PVGIS seriescalc download.
//
// Example:
//
//	{
//	  "inputs": { ... },
//	  "outputs": { "hourly": [ {"time": "20050101:0010", "P": 0.0, ...} ] },
//	  "meta": { ... }
//	}
type PVGISResponse struct {
	Inputs  json.RawMessage `json:"inputs,omitempty"`
	Outputs PVGISOutputs    `json:"outputs"`
	Meta    json.RawMessage `json:"meta,omitempty"`
}

type PVGISOutputs struct {
	Hourly []PVGISHourly `json:"hourly"`
}

// PVGISHourly is one hourly row. P is the PV output in W of the requested
// peak power, normally 1 kWp.
type PVGISHourly struct {
	Time  string  `json:"time"`
	P     float64 `json:"P"`
	GI    float64 `json:"G(i)"`
	HSun  float64 `json:"H_sun"`
	T2m   float64 `json:"T2m"`
	WS10m float64 `json:"WS10m"`
	Int   float64 `json:"Int"` // 1 when the row was reconstructed
}

// PVSample is PV output at an instant, in W per installed kWp.
type PVSample struct {
	Time time.Time
	PW   float64
}

func LoadPVGISJSON(path string) (*PVGISResponse, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePVGISJSON(raw)
}

func ParsePVGISJSON(raw []byte) (*PVGISResponse, error) {
	var resp PVGISResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse PVGIS JSON: %w", err)
	}
	if len(resp.Outputs.Hourly) == 0 {
		return nil, fmt.Errorf("PVGIS JSON has no outputs.hourly rows")
	}
	return &resp, nil
}

func ParsePVGISTime(s string) (time.Time, error) {
	t, err := time.Parse(pvgisTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid PVGIS time %q: %w", s, err)
	}
	return t, nil
}

// Samples converts the hourly rows into samples in loc, sorted by time.
func (r *PVGISResponse) Samples(loc *time.Location) ([]PVSample, error) {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]PVSample, 0, len(r.Outputs.Hourly))
	for i, h := range r.Outputs.Hourly {
		t, err := ParsePVGISTime(h.Time)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, PVSample{Time: t.In(loc), PW: h.P})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}
