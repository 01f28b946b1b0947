package simulation

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/heliowatt/heliowatt/internal/domain/location"
	apperrors "github.com/heliowatt/heliowatt/pkg/errors"
)

// The estimation API reports annual and monthly energy in kWh but the hourly
// series in Wh; the hourly values are scaled exactly once, here.
const wattHoursPerKilowattHour = 1000.0

// hourlyEpoch anchors the synthetic hourly timestamps. The series is a typical
// meteorological year, so the real station year and time zone are ignored.
var hourlyEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

const hourlyPreviewLen = 48

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// BuildReport renders a normalized estimate into the caller-facing report.
// It never computes derived metrics when the outputs block is absent or empty.
func BuildReport(place location.Place, cfg SystemConfig, est Estimate) (Report, error) {
	if !est.HasOutputs {
		return Report{}, apperrors.Wrap("no_outputs", "no outputs returned", nil)
	}

	report := Report{
		Location:       place,
		Params:         cfg,
		AnnualACKWh:    est.AnnualACKWh,
		SpecificYield:  round2(est.AnnualACKWh / cfg.CapacityKW),
		CapacityFactor: round2(est.CapacityFactor),
		Station:        stationFields(est.Station),
	}

	switch cfg.Timeframe {
	case TimeframeHourly:
		if len(est.HourlyAC) == 0 {
			return Report{}, apperrors.Wrap("no_outputs", "no outputs returned", nil)
		}
		report.Hourly = hourlySeries(est, cfg.CapacityKW)
		report.HourlyCount = len(report.Hourly)
		preview := report.Hourly
		if len(preview) > hourlyPreviewLen {
			preview = preview[:hourlyPreviewLen]
		}
		report.HourlyPreview = preview
	default:
		if len(est.MonthlyACKWh) == 0 {
			return Report{}, apperrors.Wrap("no_outputs", "no outputs returned", nil)
		}
		if len(est.MonthlyACKWh) != len(monthLabels) {
			return Report{}, apperrors.Wrap("invalid_outputs",
				fmt.Sprintf("expected %d monthly values, got %d", len(monthLabels), len(est.MonthlyACKWh)), nil)
		}
		rows := make([]MonthlyRow, 0, len(monthLabels))
		for i, label := range monthLabels {
			// Monthly energy is reported as the estimator produced it;
			// rounding applies only to derived figures.
			rows = append(rows, MonthlyRow{
				Month:         label,
				ACKWh:         est.MonthlyACKWh[i],
				SpecificYield: round2(est.MonthlyACKWh[i] / cfg.CapacityKW),
			})
		}
		report.Monthly = rows
	}

	return report, nil
}

func hourlySeries(est Estimate, capacityKW float64) []HourlySample {
	samples := make([]HourlySample, 0, len(est.HourlyAC))
	for i, ac := range est.HourlyAC {
		acKWh := ac / wattHoursPerKilowattHour
		dcKWh := 0.0
		if i < len(est.HourlyDC) {
			dcKWh = est.HourlyDC[i] / wattHoursPerKilowattHour
		}
		samples = append(samples, HourlySample{
			Timestamp:     hourlyEpoch.Add(time.Duration(i) * time.Hour),
			ACKWh:         acKWh,
			DCKWh:         dcKWh,
			SpecificYield: round3(acKWh / capacityKW),
		})
	}
	return samples
}

// stationFields renders the metadata table in its fixed order; absent values
// become empty strings.
func stationFields(st Station) []StationField {
	return []StationField{
		{Label: "City", Value: st.City},
		{Label: "State", Value: st.State},
		{Label: "Latitude", Value: formatOptional(st.Latitude)},
		{Label: "Longitude", Value: formatOptional(st.Longitude)},
		{Label: "Elevation", Value: formatOptional(st.Elevation)},
		{Label: "Time Zone", Value: formatOptional(st.TimeZone)},
		{Label: "Dataset", Value: st.Dataset},
		{Label: "Distance (mi)", Value: formatOptional(st.Distance)},
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
