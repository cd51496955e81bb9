package model

import (
	"fmt"
	"math"
	"time"
)

// Step is the spacing between consecutive series records. One record is one
// hour of energy, so kW and kWh are numerically interchangeable.
const Step = time.Hour

// HourlyInput is one aligned hour of PV production and consumption.
type HourlyInput struct {
	Timestamp      time.Time `json:"timestamp"`
	PVProductionKW float64   `json:"pv_production_kw"`
	ConsumptionKW  float64   `json:"consumption_kw"`
}

// SurplusKW is PV production minus consumption; negative means deficit.
func (h HourlyInput) SurplusKW() float64 {
	return h.PVProductionKW - h.ConsumptionKW
}

// Series is an ordered hourly input sequence.
type Series []HourlyInput

// Validate checks ordering, spacing and values. Timestamps are compared as
// instants so a DST switch in the display location does not count as a gap.
func (s Series) Validate() error {
	for i, h := range s {
		if !finite(h.PVProductionKW) || !finite(h.ConsumptionKW) {
			return fmt.Errorf("%w: record %d (%s) has non-finite value pv=%v consumption=%v",
				ErrInvalidInput, i, h.Timestamp.Format(time.RFC3339), h.PVProductionKW, h.ConsumptionKW)
		}
		if i == 0 {
			continue
		}
		prev := s[i-1].Timestamp
		if d := h.Timestamp.Sub(prev); d != Step {
			return fmt.Errorf("%w: record %d (%s) is %s after record %d (%s), expected %s",
				ErrMisalignedInput, i, h.Timestamp.Format(time.RFC3339), d, i-1, prev.Format(time.RFC3339), Step)
		}
	}
	return nil
}

// Window returns the first and last timestamp, zero values when empty.
func (s Series) Window() (time.Time, time.Time) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}
	}
	return s[0].Timestamp, s[len(s)-1].Timestamp
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
