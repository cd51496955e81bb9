package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pv-battery-sim/internal/api/models"
	"pv-battery-sim/internal/config"
)

// BatteryHandler handles battery-related requests
type BatteryHandler struct {
	batteryDir string
	log        zerolog.Logger
}

// ResolveBatteryDir picks the preset directory: dir if set, else
// BATTERY_DIR, else examples/batteries under the working directory.
func ResolveBatteryDir(dir string) string {
	if dir == "" {
		dir = os.Getenv("BATTERY_DIR")
	}
	if dir == "" {
		// Try to resolve relative to working directory first
		wd, err := os.Getwd()
		if err == nil {
			dir = filepath.Join(wd, "examples", "batteries")
		} else {
			// Fallback to relative path
			dir = "./examples/batteries"
		}
	}
	// Convert to absolute path for reliability
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return dir
}

// NewBatteryHandler creates a new battery handler
func NewBatteryHandler(batteryDir string, log zerolog.Logger) *BatteryHandler {
	return &BatteryHandler{batteryDir: batteryDir, log: log}
}

// ListBatteries handles GET /api/v1/batteries
func (h *BatteryHandler) ListBatteries(c *gin.Context) {
	batteries := []models.BatteryInfo{}

	presets, skipped, err := config.ListPresets(h.batteryDir)
	if err != nil {
		h.log.Warn().Err(err).Str("dir", h.batteryDir).Msg("failed to read battery directory")
		c.JSON(http.StatusOK, gin.H{"batteries": batteries})
		return
	}
	for _, e := range skipped {
		h.log.Warn().Err(e).Msg("skipping invalid battery file")
	}

	for _, p := range presets {
		batteries = append(batteries, models.BatteryInfo{
			ID:   p.ID,
			Name: p.Name,
			File: p.File,
			Specs: models.BatterySpecs{
				CapacityKWh:      p.Battery.CapacityKWh,
				DischargeCutoff:  p.Battery.DischargeCutoff,
				ChargeEfficiency: p.Battery.ChargeEfficiency,
				MaxPowerKW:       p.Battery.MaxPowerKW,
			},
		})
	}
	c.JSON(http.StatusOK, gin.H{"batteries": batteries})
}
