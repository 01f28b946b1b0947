package simulation

import (
	"fmt"
	"time"

	"github.com/heliowatt/heliowatt/internal/domain/location"
)

// RunRequest carries one complete simulation interaction.
type RunRequest struct {
	UserID   int64          `json:"-"`
	Location location.Query `json:"location"`
	Params   *SystemConfig  `json:"params"`
}

// Estimate is the normalized result of one estimation API call.
type Estimate struct {
	HasOutputs     bool
	AnnualACKWh    float64
	CapacityFactor float64
	MonthlyACKWh   []float64
	HourlyAC       []float64
	HourlyDC       []float64
	Station        Station
}

// Station carries weather station metadata from the estimation response.
// Numeric fields are pointers so an absent field renders as empty rather
// than zero.
type Station struct {
	City      string
	State     string
	Latitude  *float64
	Longitude *float64
	Elevation *float64
	TimeZone  *float64
	Dataset   string
	Distance  *float64
}

// Report is the rendered simulation result returned to callers.
type Report struct {
	Location       location.Place `json:"location"`
	Params         SystemConfig   `json:"params"`
	AnnualACKWh    float64        `json:"annualAcKwh"`
	SpecificYield  float64        `json:"specificYieldKwhPerKwp"`
	CapacityFactor float64        `json:"capacityFactorPct"`
	Station        []StationField `json:"station"`
	Monthly        []MonthlyRow   `json:"monthly,omitempty"`
	HourlyPreview  []HourlySample `json:"hourlyPreview,omitempty"`
	HourlyCount    int            `json:"hourlyCount,omitempty"`

	// Hourly holds the full series backing HourlyPreview; it is delivered
	// through the CSV export rather than the JSON body.
	Hourly []HourlySample `json:"-"`
}

// StationField is one row of the fixed-order station metadata table.
type StationField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// MonthlyRow pairs a month label with its estimated output.
type MonthlyRow struct {
	Month         string  `json:"month"`
	ACKWh         float64 `json:"acKwh"`
	SpecificYield float64 `json:"specificYieldKwhPerKwp"`
}

// HourlySample is one hour of the synthetic-timestamp hourly series.
type HourlySample struct {
	Timestamp     time.Time `json:"timestamp"`
	ACKWh         float64   `json:"acKwh"`
	DCKWh         float64   `json:"dcKwh"`
	SpecificYield float64   `json:"specificYieldKwhPerKwp"`
}

// UpstreamError carries a non-success status and raw body from the
// estimation API. The message is surfaced to callers verbatim.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("API Error %d: %s", e.StatusCode, e.Body)
}
