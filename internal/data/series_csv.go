package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"pv-battery-sim/internal/model"
)

var seriesHeader = []string{"timestamp", "pv_production_kw", "consumption_kw"}

// ReadSeriesCSV loads an aligned hourly series written by WriteSeriesCSV.
func ReadSeriesCSV(path string) ([]model.HourlyInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSeries(f)
}

// ReadSeries parses the aligned series CSV. Columns are matched by header
// name so extra columns are ignored.
func ReadSeries(in io.Reader) ([]model.HourlyInput, error) {
	r := csv.NewReader(in)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read series header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, want := range seriesHeader {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("series CSV has no %q column", want)
		}
	}

	var out []model.HourlyInput
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("series CSV line %d: %w", line, err)
		}
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(rec[cols["timestamp"]]))
		if err != nil {
			return nil, fmt.Errorf("series CSV line %d: %w", line, err)
		}
		pv, err := strconv.ParseFloat(strings.TrimSpace(rec[cols["pv_production_kw"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("series CSV line %d: pv_production_kw: %w", line, err)
		}
		cons, err := strconv.ParseFloat(strings.TrimSpace(rec[cols["consumption_kw"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("series CSV line %d: consumption_kw: %w", line, err)
		}
		out = append(out, model.HourlyInput{Timestamp: ts, PVProductionKW: pv, ConsumptionKW: cons})
	}
	return out, nil
}

func WriteSeriesCSV(path string, series []model.HourlyInput) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSeries(f, series); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func WriteSeries(out io.Writer, series []model.HourlyInput) error {
	w := csv.NewWriter(out)
	if err := w.Write(seriesHeader); err != nil {
		return err
	}
	for _, h := range series {
		row := []string{
			h.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(h.PVProductionKW, 'g', -1, 64),
			strconv.FormatFloat(h.ConsumptionKW, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
