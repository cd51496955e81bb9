package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pv-battery-sim/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetReportPDF handles GET /api/v1/simulations/:id/report.pdf
func (h *SimulationHandler) GetReportPDF(c *gin.Context) {
	h.serveReport(c, "pdf", "application/pdf", report.BuildPDF)
}

// GetReportXLSX handles GET /api/v1/simulations/:id/report.xlsx
func (h *SimulationHandler) GetReportXLSX(c *gin.Context) {
	h.serveReport(c, "xlsx", xlsxContentType, report.BuildXLSX)
}

func (h *SimulationHandler) serveReport(c *gin.Context, ext, contentType string, build func(report.Data) ([]byte, error)) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	out, err := build(report.NewData(run.Result, run.System, run.FullThreshold))
	if err != nil {
		h.log.Error().Err(err).Str("id", run.ID).Str("format", ext).Msg("report rendering failed")
		writeError(c, http.StatusInternalServerError, "REPORT_ERROR", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="simulation_%s.%s"`, run.ID, ext))
	c.Data(http.StatusOK, contentType, out)
}
