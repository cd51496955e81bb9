package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// PVGISClient fetches hourly PV series from the PVGIS web API.
type PVGISClient struct {
	BaseURL string
	Client  *http.Client
	Log     zerolog.Logger
}

// NewPVGISClient creates a new PVGIS client.
// If baseURL is empty, defaults to "https://re.jrc.ec.europa.eu/api/v5_3".
func NewPVGISClient(baseURL string, log zerolog.Logger) *PVGISClient {
	if baseURL == "" {
		baseURL = "https://re.jrc.ec.europa.eu/api/v5_3"
	}
	return &PVGISClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 2 * time.Minute,
		},
		Log: log,
	}
}

// SeriesCalcParams defines the hourly radiation/PV query for one roof plane.
type SeriesCalcParams struct {
	Lat          float64
	Lon          float64
	Angle        float64 // tilt in degrees
	Aspect       float64 // azimuth, 0 = south, -90 = east, 90 = west
	PeakPowerKWp float64 // default 1, so P is W per kWp
	LossPct      float64 // default 14
	StartYear    int
	EndYear      int
	RadDatabase  string // e.g. "PVGIS-SARAH3"; empty lets PVGIS choose
}

// PVGISError represents a non-200 answer from PVGIS.
type PVGISError struct {
	StatusCode int
	Message    string
}

func (e *PVGISError) Error() string {
	return fmt.Sprintf("PVGIS returned status %d: %s", e.StatusCode, e.Message)
}

func (p SeriesCalcParams) validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("lat must be within [-90, 90]")
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("lon must be within [-180, 180]")
	}
	if p.StartYear == 0 || p.EndYear == 0 {
		return fmt.Errorf("start and end year are required")
	}
	if p.StartYear > p.EndYear {
		return fmt.Errorf("start year must not be after end year")
	}
	return nil
}

// FetchSeriesCalc returns the raw seriescalc JSON body.
func (c *PVGISClient) FetchSeriesCalc(ctx context.Context, p SeriesCalcParams) ([]byte, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.PeakPowerKWp == 0 {
		p.PeakPowerKWp = 1
	}
	if p.LossPct == 0 {
		p.LossPct = 14
	}

	u, err := url.Parse(c.BaseURL + "/seriescalc")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("lat", fmtParam(p.Lat))
	q.Set("lon", fmtParam(p.Lon))
	q.Set("angle", fmtParam(p.Angle))
	q.Set("aspect", fmtParam(p.Aspect))
	q.Set("peakpower", fmtParam(p.PeakPowerKWp))
	q.Set("loss", fmtParam(p.LossPct))
	q.Set("startyear", strconv.Itoa(p.StartYear))
	q.Set("endyear", strconv.Itoa(p.EndYear))
	q.Set("pvcalculation", "1")
	q.Set("outputformat", "json")
	if p.RadDatabase != "" {
		q.Set("raddatabase", p.RadDatabase)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.Log.Info().Str("path", u.Path).Float64("lat", p.Lat).Float64("lon", p.Lon).
		Float64("angle", p.Angle).Float64("aspect", p.Aspect).
		Int("start_year", p.StartYear).Int("end_year", p.EndYear).Msg("PVGIS request")

	started := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.Log.Info().Int("status", resp.StatusCode).Int("bytes", len(body)).Dur("took", time.Since(started)).Msg("PVGIS response")

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Message string `json:"message"`
		}
		msg := resp.Status
		if json.Unmarshal(body, &e) == nil && e.Message != "" {
			msg = e.Message
		}
		return nil, &PVGISError{StatusCode: resp.StatusCode, Message: msg}
	}
	return body, nil
}

// SeriesCalc fetches and parses the hourly series.
func (c *PVGISClient) SeriesCalc(ctx context.Context, p SeriesCalcParams) (*PVGISResponse, error) {
	body, err := c.FetchSeriesCalc(ctx, p)
	if err != nil {
		return nil, err
	}
	return ParsePVGISJSON(body)
}

func fmtParam(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
