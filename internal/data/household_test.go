package data

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHousehold = `utc_timestamp,cet_cest_timestamp,DE_KN_residential2_grid_import,DE_KN_residential2_pv
2016-01-01T00:00:00Z,2016-01-01T01:00:00+0100,100.0,
2016-01-01T00:15:00Z,2016-01-01T01:15:00+0100,100.5,
2016-01-01T00:30:00Z,2016-01-01T01:30:00+0100,,
2016-01-01T00:45:00Z,2016-01-01T01:45:00+0100,101.5,
2016-01-01T01:00:00Z,2016-01-01T02:00:00+0100,102.0,
2016-01-01T01:15:00Z,2016-01-01T02:15:00+0100,102.25,
2016-01-01T02:00:00Z,2016-01-01T03:00:00+0100,103.0,
`

func TestParseHouseholdCSV(t *testing.T) {
	samples, err := ParseHouseholdCSV(strings.NewReader(sampleHousehold), "")
	require.NoError(t, err)
	require.Len(t, samples, 3)

	h0 := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, h0, samples[0].Time)
	// 00:15 adds 0.5; the gap at 00:30 drops both neighbouring differences.
	assert.InDelta(t, 0.5, samples[0].KWh, 1e-12)
	// 01:00 adds 0.5 and 01:15 adds 0.25.
	assert.InDelta(t, 0.75, samples[1].KWh, 1e-12)
	assert.InDelta(t, 0.75, samples[2].KWh, 1e-12)
	assert.Equal(t, h0.Add(2*time.Hour), samples[2].Time)
}

func TestParseHouseholdCSVFillsEmptyHours(t *testing.T) {
	in := `cet_cest_timestamp,load
2016-01-01T01:00:00+0100,1
2016-01-01T04:00:00+0100,4
`
	samples, err := ParseHouseholdCSV(strings.NewReader(in), "load")
	require.NoError(t, err)
	require.Len(t, samples, 4)
	assert.Zero(t, samples[1].KWh)
	assert.Zero(t, samples[2].KWh)
	assert.Equal(t, 3.0, samples[3].KWh)
}

func TestParseHouseholdCSVErrors(t *testing.T) {
	_, err := ParseHouseholdCSV(strings.NewReader("a,b\n1,2\n"), "b")
	assert.ErrorContains(t, err, "cet_cest_timestamp")

	_, err = ParseHouseholdCSV(strings.NewReader("cet_cest_timestamp,x\n"), "missing")
	assert.ErrorContains(t, err, "missing")

	_, err = ParseHouseholdCSV(strings.NewReader("cet_cest_timestamp,x\n"), "x")
	assert.ErrorContains(t, err, "no data rows")

	_, err = ParseHouseholdCSV(strings.NewReader("cet_cest_timestamp,x\nyesterday,1\n"), "x")
	assert.ErrorContains(t, err, "invalid timestamp")
}
