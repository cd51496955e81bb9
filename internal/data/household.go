package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultHouseholdColumn is the cumulative grid import meter of the
	// residential building used for the load profile.
	DefaultHouseholdColumn = "DE_KN_residential2_grid_import"

	householdTimeColumn = "cet_cest_timestamp"
)

var householdTimeLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
}

// ConsumptionSample is the energy consumed during the UTC hour starting at Time.
type ConsumptionSample struct {
	Time time.Time
	KWh  float64
}

func LoadHouseholdCSV(path, column string) ([]ConsumptionSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseHouseholdCSV(f, column)
}

// ParseHouseholdCSV reads a cumulative meter column (kWh) and turns it into
// hourly consumption. Each reading's increase over the previous one is booked
// into the UTC hour of the later reading. Missing readings contribute nothing.
// The result covers every hour from the first to the last reading.
func ParseHouseholdCSV(in io.Reader, column string) ([]ConsumptionSample, error) {
	if column == "" {
		column = DefaultHouseholdColumn
	}
	r := csv.NewReader(in)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read household CSV header: %w", err)
	}
	tIdx, vIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case householdTimeColumn:
			tIdx = i
		case column:
			vIdx = i
		}
	}
	if tIdx < 0 {
		return nil, fmt.Errorf("household CSV has no %q column", householdTimeColumn)
	}
	if vIdx < 0 {
		return nil, fmt.Errorf("household CSV has no %q column", column)
	}

	var (
		bins       = map[int64]float64{}
		first      time.Time
		last       time.Time
		prev       = math.NaN()
		line       = 1
		haveFirstT bool
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("household CSV line %d: %w", line, err)
		}
		t, err := parseHouseholdTime(rec[tIdx])
		if err != nil {
			return nil, fmt.Errorf("household CSV line %d: %w", line, err)
		}
		hour := t.UTC().Truncate(time.Hour)
		if !haveFirstT {
			first = hour
			haveFirstT = true
		}
		last = hour

		v := math.NaN()
		if s := strings.TrimSpace(rec[vIdx]); s != "" {
			v, err = strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("household CSV line %d: invalid %s value %q", line, column, s)
			}
		}
		if !math.IsNaN(v) && !math.IsNaN(prev) {
			bins[hour.Unix()] += v - prev
		}
		prev = v
	}
	if !haveFirstT {
		return nil, fmt.Errorf("household CSV has no data rows")
	}

	out := make([]ConsumptionSample, 0, int(last.Sub(first)/time.Hour)+1)
	for h := first; !h.After(last); h = h.Add(time.Hour) {
		out = append(out, ConsumptionSample{Time: h, KWh: bins[h.Unix()]})
	}
	return out, nil
}

func parseHouseholdTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range householdTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
