package report

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"pv-battery-sim/internal/analysis"
)

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type rgb struct{ r, g, b int }

var (
	orange = rgb{255, 165, 0}
	red    = rgb{214, 39, 40}
	green  = rgb{44, 160, 44}
)

// BuildPDF renders the run summary, the annual table and the two monthly
// bar charts.
func BuildPDF(d Data) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(d.Title, false)
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, d.Title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", d.Generated.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Years: %s (%d)", d.yearRange(), d.Summary.Years))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, "Battery")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Capacity: %.2f kWh", d.Params.CapacityKWh))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Discharge cutoff: %.0f%%", d.Params.DischargeCutoff*100))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Charge efficiency: %.0f%%", d.Params.ChargeEfficiency*100))
	pdf.Ln(5)
	power := "unlimited"
	if d.Params.MaxPowerKW > 0 {
		power = fmt.Sprintf("%.2f kW", d.Params.MaxPowerKW)
	}
	pdf.Cell(0, 6, "Max power: "+power)
	pdf.Ln(5)
	if d.System != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Consumption per unit: %.0f kWh/year, %d units", d.System.ConsumptionPerUnitPerYearKWh, len(d.System.ProfileShifts)))
		pdf.Ln(5)
		for _, o := range d.System.Orientations {
			pdf.Cell(0, 6, fmt.Sprintf("PV %s: %.2f kWp", o.Name, o.InstalledKWp))
			pdf.Ln(5)
		}
	}
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, "Summary")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	for _, line := range SummaryLines(d.Summary) {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Curtailed PV over the run: %.2f kWh", d.Totals.CurtailedKWh))
	pdf.Ln(8)

	annualTable(pdf, d)

	pdf.AddPage()
	pv := make([]float64, len(d.Monthly))
	unused := make([]float64, len(d.Monthly))
	for i, m := range d.Monthly {
		pv[i] = m.PVProductionKWh
		unused[i] = m.PVUnusedKWh
	}
	barChart(pdf, "Monthly PV Energy Output vs Unused PV Energy (Average "+d.yearRange()+")", "Energy (kWh)",
		series{"Total PV Energy Output", orange, pv},
		series{"PV Energy Not Used", red, unused})

	pdf.Ln(10)
	full := make([]float64, len(d.Battery))
	empty := make([]float64, len(d.Battery))
	for i, m := range d.Battery {
		full[i] = float64(m.FullDays)
		empty[i] = float64(m.EmptyDays)
	}
	barChart(pdf, "Battery Status: Days Full vs Empty by Month ("+d.yearRange()+")", "Number of Days",
		series{fmt.Sprintf("Days with Battery Full (>=%.0f%%)", d.FullThreshold*100), green, full},
		series{fmt.Sprintf("Days with Battery Empty (<=%.0f%%)", d.Params.DischargeCutoff*100), red, empty})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SummaryLines are the headline figures of a run, one per line.
func SummaryLines(s analysis.Summary) []string {
	return []string{
		fmt.Sprintf("Average annual PV power used: %.2f kWh", s.MeanPVUsedKWh),
		fmt.Sprintf("Consumption: %.2f kWh", s.MeanConsumptionKWh),
		fmt.Sprintf("Average grid independence rate: %.1f%%", s.MeanGridIndependencePct),
		fmt.Sprintf("Average PV self-consumption rate: %.1f%%", s.MeanSelfConsumptionPct),
	}
}

func annualTable(pdf *gofpdf.Fpdf, d Data) {
	headers := []string{"Year", "PV (kWh)", "Load (kWh)", "Grid (kWh)", "PV used (kWh)", "Self-cons. %", "Indep. %"}
	widths := []float64{18, 26, 26, 26, 28, 28, 24}

	pdf.SetFont("Arial", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, a := range d.Annual {
		cells := []string{
			strconv.Itoa(a.Year),
			fmt.Sprintf("%.1f", a.PVProductionKWh),
			fmt.Sprintf("%.1f", a.ConsumptionKWh),
			fmt.Sprintf("%.1f", a.GridDrawKWh),
			fmt.Sprintf("%.1f", a.PVUsedKWh),
			fmt.Sprintf("%.1f", a.SelfConsumptionPct),
			fmt.Sprintf("%.1f", a.GridIndependencePct),
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

type series struct {
	label  string
	color  rgb
	values []float64
}

// barChart draws grouped monthly bars below the current position.
func barChart(pdf *gofpdf.Fpdf, title, yLabel string, a, b series) {
	const (
		left   = 25.0
		width  = 170.0
		height = 80.0
	)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, title)
	pdf.Ln(8)

	top := pdf.GetY()
	bottom := top + height

	maxV := 0.0
	for _, s := range []series{a, b} {
		for _, v := range s.values {
			maxV = math.Max(maxV, v)
		}
	}
	if maxV <= 0 {
		maxV = 1
	}
	scale := niceCeil(maxV)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFont("Arial", "", 7)
	for i := 0; i <= 4; i++ {
		y := bottom - height*float64(i)/4
		pdf.Line(left, y, left+width, y)
		pdf.Text(left-12, y+1, fmt.Sprintf("%.0f", scale*float64(i)/4))
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(left, top, left, bottom)
	pdf.Line(left, bottom, left+width, bottom)

	slot := width / 12
	bar := slot * 0.35
	for m := 0; m < 12; m++ {
		x := left + slot*float64(m) + slot/2
		for k, s := range []series{a, b} {
			if m >= len(s.values) {
				continue
			}
			h := height * s.values[m] / scale
			pdf.SetFillColor(s.color.r, s.color.g, s.color.b)
			pdf.Rect(x-bar+float64(k)*bar, bottom-h, bar, h, "F")
		}
		pdf.Text(x-3, bottom+4, monthLabels[m])
	}

	pdf.TransformBegin()
	pdf.TransformRotate(90, left-16, top+height/2+15)
	pdf.Text(left-16, top+height/2+15, yLabel)
	pdf.TransformEnd()

	ly := bottom + 9
	for k, s := range []series{a, b} {
		lx := left + float64(k)*80
		pdf.SetFillColor(s.color.r, s.color.g, s.color.b)
		pdf.Rect(lx, ly-2.5, 4, 3, "F")
		pdf.Text(lx+6, ly, s.label)
	}
	pdf.SetY(ly + 4)
}

// niceCeil rounds v up to 1, 2 or 5 times a power of ten.
func niceCeil(v float64) float64 {
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, f := range []float64{1, 2, 5, 10} {
		if f*exp >= v {
			return f * exp
		}
	}
	return 10 * exp
}
