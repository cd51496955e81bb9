package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourly(start time.Time, n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = HourlyInput{Timestamp: start.Add(time.Duration(i) * time.Hour), PVProductionKW: 1, ConsumptionKW: 1}
	}
	return s
}

func TestSeriesValidate(t *testing.T) {
	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, hourly(start, 48).Validate())
	require.NoError(t, Series{}.Validate())

	gap := hourly(start, 4)
	gap[3].Timestamp = gap[3].Timestamp.Add(time.Hour)
	assert.ErrorIs(t, gap.Validate(), ErrMisalignedInput)

	unsorted := hourly(start, 4)
	unsorted[1], unsorted[2] = unsorted[2], unsorted[1]
	assert.ErrorIs(t, unsorted.Validate(), ErrMisalignedInput)

	dup := hourly(start, 3)
	dup[2].Timestamp = dup[1].Timestamp
	assert.ErrorIs(t, dup.Validate(), ErrMisalignedInput)

	nan := hourly(start, 3)
	nan[1].ConsumptionKW = math.NaN()
	assert.ErrorIs(t, nan.Validate(), ErrInvalidInput)
}

func TestSeriesValidateAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	// 2016-03-27 02:00 local does not exist; instants stay one hour apart.
	start := time.Date(2016, 3, 27, 0, 0, 0, 0, berlin)
	s := hourly(start.UTC(), 5)
	for i := range s {
		s[i].Timestamp = s[i].Timestamp.In(berlin)
	}
	assert.NoError(t, s.Validate())
	assert.Equal(t, 3, s[2].Timestamp.Hour())
}

func TestSystemParamsValidate(t *testing.T) {
	ok := SystemParams{
		ConsumptionPerUnitPerYearKWh: 3200,
		ProfileShifts:                []int{0, 1},
		Orientations:                 []Orientation{{Name: "oso", InstalledKWp: 10}},
	}
	require.NoError(t, ok.Validate())

	dup := ok
	dup.Orientations = []Orientation{{Name: "a"}, {Name: "a"}}
	assert.ErrorIs(t, dup.Validate(), ErrInvalidParameter)

	none := ok
	none.ProfileShifts = nil
	assert.ErrorIs(t, none.Validate(), ErrInvalidParameter)
}
