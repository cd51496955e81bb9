package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pv-battery-sim/internal/report"
)

var (
	reportPDF  string
	reportXLSX string
	reportN    int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the configured battery and render the results as PDF and/or XLSX",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportPDF, "pdf", "", "PDF output path")
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "XLSX output path")
	reportCmd.Flags().IntVar(&reportN, "n", 0, "limit to the first N hours (0=all)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportPDF == "" && reportXLSX == "" {
		return errors.New("at least one of --pdf or --xlsx is required")
	}
	cfg, res, sys, err := simulate(reportN)
	if err != nil {
		return err
	}
	d := report.NewData(res, sys, cfg.Report.FullThreshold)
	if cfg.Battery.Name != "" {
		d.Title = fmt.Sprintf("%s: %s", d.Title, cfg.Battery.Name)
	}

	targets := []struct {
		path  string
		build func(report.Data) ([]byte, error)
	}{
		{reportPDF, report.BuildPDF},
		{reportXLSX, report.BuildXLSX},
	}
	for _, t := range targets {
		if t.path == "" {
			continue
		}
		out, err := t.build(d)
		if err != nil {
			return fmt.Errorf("render %s: %w", t.path, err)
		}
		if err := ensureDir(t.path); err != nil {
			return err
		}
		if err := os.WriteFile(t.path, out, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", t.path, len(out))
	}
	return nil
}
