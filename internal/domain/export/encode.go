package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/heliowatt/heliowatt/internal/domain/simulation"
)

var hourlyCSVHeader = []string{"timestamp", "ac_kwh", "dc_kwh", "specific_yield_kwh_per_kwp"}

// HourlyCSV encodes the full hourly series, one row per sample.
func HourlyCSV(samples []simulation.HourlySample) ([]byte, error) {
	if len(samples) == 0 {
		return nil, errors.New("hourly series is empty")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(hourlyCSVHeader); err != nil {
		return nil, err
	}
	for _, sample := range samples {
		row := []string{
			sample.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(sample.ACKWh, 'f', -1, 64),
			strconv.FormatFloat(sample.DCKWh, 'f', -1, 64),
			strconv.FormatFloat(sample.SpecificYield, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConfigJSON encodes a parameter set as a pretty-printed download. The format
// is write-only; there is no matching import path.
func ConfigJSON(cfg simulation.SystemConfig) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}
