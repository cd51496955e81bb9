package dispatch

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

var ledgerHeader = []string{
	"index",
	"timestamp",
	"pv_production_kw",
	"consumption_kw",
	"action",
	"battery_soc_kwh",
	"from_grid_kwh",
	"battery_charge_kwh",
	"battery_discharge_kwh",
	"curtailed_kwh",
}

func WriteLedgerCSV(path string, ledger []HourlyOutput) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLedger(f, ledger); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteLedger writes the ledger as CSV with a header row.
func WriteLedger(out io.Writer, ledger []HourlyOutput) error {
	w := csv.NewWriter(out)
	if err := w.Write(ledgerHeader); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Timestamp),
			fmtFloat(r.PVProductionKW),
			fmtFloat(r.ConsumptionKW),
			string(r.Action),
			fmtFloat(r.SOCKWh),
			fmtFloat(r.GridDrawKWh),
			fmtFloat(r.ChargeKWh),
			fmtFloat(r.DischargeKWh),
			fmtFloat(r.CurtailedKWh),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
