package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook.
const (
	SheetSummary = "summary"
	SheetAnnual  = "annual"
	SheetMonthly = "monthly"
	SheetBattery = "battery"
)

// BuildXLSX renders the report as a workbook with one sheet per table.
func BuildXLSX(d Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetAnnual, SheetMonthly, SheetBattery} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	summary := [][]any{
		{d.Title},
		{},
		{"Generated", d.Generated.Format(time.RFC3339)},
		{"First year", d.Summary.FirstYear},
		{"Last year", d.Summary.LastYear},
		{"Years", d.Summary.Years},
		{"Capacity (kWh)", d.Params.CapacityKWh},
		{"Discharge cutoff", d.Params.DischargeCutoff},
		{"Charge efficiency", d.Params.ChargeEfficiency},
		{"Max power (kW, 0 = unlimited)", d.Params.MaxPowerKW},
		{"Mean PV production (kWh/year)", d.Summary.MeanPVProductionKWh},
		{"Mean consumption (kWh/year)", d.Summary.MeanConsumptionKWh},
		{"Mean grid draw (kWh/year)", d.Summary.MeanGridDrawKWh},
		{"Mean PV used (kWh/year)", d.Summary.MeanPVUsedKWh},
		{"Mean self-consumption (%)", d.Summary.MeanSelfConsumptionPct},
		{"Mean grid independence (%)", d.Summary.MeanGridIndependencePct},
		{"Std grid independence (%)", d.Summary.StdGridIndependencePct},
		{"Curtailed PV (kWh)", d.Totals.CurtailedKWh},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return nil, err
	}

	annual := [][]any{{"Year", "Hours", "PV (kWh)", "Consumption (kWh)", "Grid (kWh)", "Charge (kWh)", "Discharge (kWh)", "Curtailed (kWh)", "PV used (kWh)", "Self-consumption (%)", "Grid independence (%)", "Degenerate"}}
	for _, a := range d.Annual {
		annual = append(annual, []any{a.Year, a.Hours, a.PVProductionKWh, a.ConsumptionKWh, a.GridDrawKWh, a.ChargeKWh, a.DischargeKWh, a.CurtailedKWh, a.PVUsedKWh, a.SelfConsumptionPct, a.GridIndependencePct, a.Degenerate})
	}
	if err := writeRows(f, SheetAnnual, annual); err != nil {
		return nil, err
	}

	monthly := [][]any{{"Month", "Years", "PV (kWh)", "PV unused (kWh)"}}
	for _, m := range d.Monthly {
		monthly = append(monthly, []any{m.Month.String(), m.Years, m.PVProductionKWh, m.PVUnusedKWh})
	}
	if err := writeRows(f, SheetMonthly, monthly); err != nil {
		return nil, err
	}

	battery := [][]any{{"Month", "Days", "Full days", "Empty days"}}
	for _, m := range d.Battery {
		battery = append(battery, []any{m.Month.String(), m.Days, m.FullDays, m.EmptyDays})
	}
	if err := writeRows(f, SheetBattery, battery); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := r
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
