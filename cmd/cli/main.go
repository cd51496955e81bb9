package main

import (
	"fmt"
	"os"
	"path/filepath"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pv-battery-sim/internal/config"
	"pv-battery-sim/internal/data"
	"pv-battery-sim/internal/dispatch"
	"pv-battery-sim/internal/logger"
	"pv-battery-sim/internal/model"
)

var cfgPath string

var log = logger.New("cli")

var rootCmd = &cobra.Command{
	Use:           "pvsim",
	Short:         "Hourly PV and home battery simulation",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "examples/config.yaml", "configuration file")
}

func main() {
	logger.Init()
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// loadSeries returns the engine input for cfg. A prebuilt series CSV wins
// over the raw sources; the system sizing is nil in that case.
func loadSeries(cfg *config.Config, log zerolog.Logger) ([]model.HourlyInput, *model.SystemParams, error) {
	if cfg.Data.SeriesCSV != "" {
		path := cfg.Resolve(cfg.Data.SeriesCSV)
		series, err := data.ReadSeriesCSV(path)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("file", path).Int("hours", len(series)).Msg("loaded series")
		return series, nil, nil
	}

	src, err := cfg.Sources()
	if err != nil {
		return nil, nil, err
	}
	ds, err := data.BuildDataset(src, log)
	if err != nil {
		return nil, nil, err
	}
	sys := cfg.SystemParams()
	series, err := ds.Scale(sys)
	if err != nil {
		return nil, nil, err
	}
	return series, &sys, nil
}

// simulate loads config and series and runs the engine on the configured
// battery, limited to the first n hours when n > 0.
func simulate(n int) (*config.Config, *dispatch.Result, *model.SystemParams, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	series, sys, err := loadSeries(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	if n > 0 && n < len(series) {
		series = series[:n]
	}
	res, err := dispatch.New().Run(model.SimulationInputs{Series: series, Battery: cfg.Battery.ToModelParams()})
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, res, sys, nil
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
