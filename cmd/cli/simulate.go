package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pv-battery-sim/internal/analysis"
	"pv-battery-sim/internal/dispatch"
	"pv-battery-sim/internal/report"
)

var (
	simulateOut string
	simulateN   int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the configured battery over the series and write the hourly ledger",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simulateOut, "out", "results/ledger.csv", "output CSV path")
	simulateCmd.Flags().IntVar(&simulateN, "n", 0, "limit to the first N hours (0=all)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	_, res, _, err := simulate(simulateN)
	if err != nil {
		return err
	}

	if err := ensureDir(simulateOut); err != nil {
		return err
	}
	if err := dispatch.WriteLedgerCSV(simulateOut, res.Ledger); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %d rows to %s\n", len(res.Ledger), simulateOut)
	for _, line := range report.SummaryLines(analysis.Summarize(analysis.Annual(res.Ledger))) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Curtailed=%.2f kWh Final SOC=%.3f kWh\n", res.Totals.CurtailedKWh, res.FinalSOCKWh)
	return nil
}
