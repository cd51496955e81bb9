package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pv-battery-sim/internal/analysis"
)

var (
	sweepTop     int
	sweepWorkers int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Simulate every battery combination of the sweep grid and rank them",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().IntVar(&sweepTop, "top", 0, "print only the best N combinations (0=all)")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "concurrent simulations (0=sweep.workers from config)")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	series, _, err := loadSeries(cfg, log)
	if err != nil {
		return err
	}

	workers := cfg.Sweep.Workers
	if sweepWorkers > 0 {
		workers = sweepWorkers
	}
	started := time.Now()
	results, err := analysis.Sweep(ctx, series, cfg.Grid(), workers)
	if err != nil {
		return err
	}
	log.Info().Int("runs", len(results)).Int("workers", workers).Dur("took", time.Since(started)).Msg("sweep finished")

	if sweepTop > 0 && sweepTop < len(results) {
		results = results[:sweepTop]
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-4s %-10s %-8s %-8s %-9s %-12s %-10s %-10s\n", "rank", "cap_kwh", "cutoff", "eff", "power_kw", "pv_used_kwh", "self_pct", "indep_pct")
	for _, r := range results {
		fmt.Fprintf(out,
			"%-4d %-10.2f %-8.2f %-8.2f %-9.2f %-12.2f %-10.1f %-10.1f\n",
			r.Rank,
			r.Params.CapacityKWh,
			r.Params.DischargeCutoff,
			r.Params.ChargeEfficiency,
			r.Params.MaxPowerKW,
			r.Summary.MeanPVUsedKWh,
			r.Summary.MeanSelfConsumptionPct,
			r.Summary.MeanGridIndependencePct,
		)
	}
	return nil
}
