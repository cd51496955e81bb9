package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pv-battery-sim/internal/data"
)

var buildSeriesOut string

var buildSeriesCmd = &cobra.Command{
	Use:   "build-series",
	Short: "Merge the PVGIS and household sources into a scaled hourly series CSV",
	RunE:  runBuildSeries,
}

var (
	pvgisParams  data.SeriesCalcParams
	pvgisOut     string
	pvgisBaseURL string
)

var fetchPVGISCmd = &cobra.Command{
	Use:   "fetch-pvgis",
	Short: "Download an hourly PVGIS series for one roof plane",
	RunE:  runFetchPVGIS,
}

func init() {
	buildSeriesCmd.Flags().StringVar(&buildSeriesOut, "out", "results/series.csv", "output CSV path")
	rootCmd.AddCommand(buildSeriesCmd)

	f := fetchPVGISCmd.Flags()
	f.Float64Var(&pvgisParams.Lat, "lat", 0, "latitude in degrees")
	f.Float64Var(&pvgisParams.Lon, "lon", 0, "longitude in degrees")
	f.Float64Var(&pvgisParams.Angle, "angle", 35, "panel tilt in degrees")
	f.Float64Var(&pvgisParams.Aspect, "aspect", 0, "azimuth, 0=south -90=east 90=west")
	f.Float64Var(&pvgisParams.PeakPowerKWp, "peakpower", 1, "installed kWp")
	f.Float64Var(&pvgisParams.LossPct, "loss", 14, "system loss in percent")
	f.IntVar(&pvgisParams.StartYear, "start", 2005, "first year")
	f.IntVar(&pvgisParams.EndYear, "end", 2020, "last year")
	f.StringVar(&pvgisParams.RadDatabase, "raddatabase", "", "radiation database, e.g. PVGIS-SARAH3")
	f.StringVar(&pvgisOut, "out", "", "output JSON path")
	f.StringVar(&pvgisBaseURL, "base-url", "", "PVGIS API base URL")
	_ = fetchPVGISCmd.MarkFlagRequired("lat")
	_ = fetchPVGISCmd.MarkFlagRequired("lon")
	_ = fetchPVGISCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(fetchPVGISCmd)
}

func runBuildSeries(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Data.SeriesCSV != "" {
		return errors.New("data.series_csv is set; build-series needs the raw sources")
	}
	series, _, err := loadSeries(cfg, log)
	if err != nil {
		return err
	}
	if err := ensureDir(buildSeriesOut); err != nil {
		return err
	}
	if err := data.WriteSeriesCSV(buildSeriesOut, series); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d hours to %s\n", len(series), buildSeriesOut)
	return nil
}

func runFetchPVGIS(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := data.NewPVGISClient(pvgisBaseURL, log)
	started := time.Now()
	raw, err := client.FetchSeriesCalc(ctx, pvgisParams)
	if err != nil {
		return err
	}
	resp, err := data.ParsePVGISJSON(raw)
	if err != nil {
		return fmt.Errorf("PVGIS answer: %w", err)
	}

	if err := ensureDir(pvgisOut); err != nil {
		return err
	}
	if err := os.WriteFile(pvgisOut, raw, 0o644); err != nil {
		return err
	}
	log.Info().Dur("took", time.Since(started)).Str("file", pvgisOut).Msg("PVGIS series saved")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d hourly values to %s\n", len(resp.Outputs.Hourly), pvgisOut)
	return nil
}
