package data

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePVGIS = `{
  "inputs": {"location": {"latitude": 48.865, "longitude": 9.314}},
  "outputs": {"hourly": [
    {"time": "20160101:0110", "P": 12.5, "G(i)": 20.1, "H_sun": 1.0, "T2m": 2.0, "WS10m": 3.1, "Int": 0.0},
    {"time": "20160101:0010", "P": 0.0, "G(i)": 0.0, "H_sun": 0.0, "T2m": 1.5, "WS10m": 3.0, "Int": 0.0}
  ]},
  "meta": {}
}`

func TestParsePVGISTime(t *testing.T) {
	ts, err := ParsePVGISTime("20050317:1310")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2005, 3, 17, 13, 10, 0, 0, time.UTC), ts)

	_, err = ParsePVGISTime("2005-03-17 13:10")
	assert.Error(t, err)
}

func TestPVGISSamplesSortedInLocation(t *testing.T) {
	resp, err := ParsePVGISJSON([]byte(samplePVGIS))
	require.NoError(t, err)

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	samples, err := resp.Samples(berlin)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, 1, samples[0].Time.Hour())
	assert.Equal(t, berlin, samples[0].Time.Location())
	assert.Zero(t, samples[0].PW)
	assert.Equal(t, 12.5, samples[1].PW)
}

func TestParsePVGISJSONRejectsEmpty(t *testing.T) {
	_, err := ParsePVGISJSON([]byte(`{"outputs": {"hourly": []}}`))
	assert.Error(t, err)
	_, err = ParsePVGISJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestPVGISClientSeriesCalc(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5_3/seriescalc", r.URL.Path)
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePVGIS))
	}))
	defer srv.Close()

	c := NewPVGISClient(srv.URL+"/api/v5_3", zerolog.Nop())
	resp, err := c.SeriesCalc(context.Background(), SeriesCalcParams{
		Lat: 48.865, Lon: 9.314, Angle: 42, Aspect: -75,
		StartYear: 2005, EndYear: 2023, RadDatabase: "PVGIS-SARAH3",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Outputs.Hourly, 2)

	assert.Equal(t, "48.865", got["lat"])
	assert.Equal(t, "-75", got["aspect"])
	assert.Equal(t, "1", got["peakpower"])
	assert.Equal(t, "14", got["loss"])
	assert.Equal(t, "2005", got["startyear"])
	assert.Equal(t, "json", got["outputformat"])
	assert.Equal(t, "PVGIS-SARAH3", got["raddatabase"])
}

func TestPVGISClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "Location over the sea", "status": 400}`))
	}))
	defer srv.Close()

	c := NewPVGISClient(srv.URL, zerolog.Nop())
	_, err := c.FetchSeriesCalc(context.Background(), SeriesCalcParams{Lat: 0, Lon: 0, StartYear: 2020, EndYear: 2020})

	var pe *PVGISError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
	assert.Equal(t, "Location over the sea", pe.Message)
}

func TestSeriesCalcParamsValidation(t *testing.T) {
	c := NewPVGISClient("http://127.0.0.1:0", zerolog.Nop())
	_, err := c.FetchSeriesCalc(context.Background(), SeriesCalcParams{Lat: 95, StartYear: 2020, EndYear: 2020})
	assert.Error(t, err)
	_, err = c.FetchSeriesCalc(context.Background(), SeriesCalcParams{StartYear: 2021, EndYear: 2020})
	assert.Error(t, err)
}
