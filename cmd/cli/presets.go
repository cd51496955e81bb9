package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pv-battery-sim/internal/config"
)

var presetsDir string

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the battery preset files",
	RunE:  runPresets,
}

func init() {
	presetsCmd.Flags().StringVar(&presetsDir, "dir", "examples/batteries", "battery preset directory")
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command, args []string) error {
	presets, skipped, err := config.ListPresets(presetsDir)
	if err != nil {
		return err
	}
	for _, e := range skipped {
		log.Warn().Err(e).Msg("skipping invalid battery file")
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-20s %-24s %-10s %-8s %-8s %-9s\n", "id", "name", "cap_kwh", "cutoff", "eff", "power_kw")
	for _, p := range presets {
		fmt.Fprintf(out, "%-20s %-24s %-10.2f %-8.2f %-8.2f %-9.2f\n",
			p.ID, p.Name, p.Battery.CapacityKWh, p.Battery.DischargeCutoff, p.Battery.ChargeEfficiency, p.Battery.MaxPowerKW)
	}
	return nil
}
