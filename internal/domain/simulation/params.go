package simulation

import (
	"errors"
	"strings"
)

// Granularity values accepted by the estimation API.
const (
	TimeframeMonthly = "monthly"
	TimeframeHourly  = "hourly"
)

// SystemConfig describes the PV system whose yield is estimated. Field bounds
// mirror what the estimation API accepts; Validate checks each field
// independently.
type SystemConfig struct {
	CapacityKW     float64 `json:"capacityKw"`
	ModuleType     int     `json:"moduleType"`
	LossesPct      float64 `json:"lossesPct"`
	ArrayType      int     `json:"arrayType"`
	TiltDeg        float64 `json:"tiltDeg"`
	AzimuthDeg     float64 `json:"azimuthDeg"`
	DCACRatio      float64 `json:"dcAcRatio"`
	Timeframe      string  `json:"timeframe"`
	Dataset        string  `json:"dataset"`
	RadiusMiles    int     `json:"radiusMiles"`
	InverterEffPct float64 `json:"inverterEfficiencyPct"`
}

// DefaultSystemConfig returns the parameter set every form starts from.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		CapacityKW:     5.0,
		ModuleType:     0,
		LossesPct:      14,
		ArrayType:      0,
		TiltDeg:        35,
		AzimuthDeg:     180,
		DCACRatio:      1.0,
		Timeframe:      TimeframeMonthly,
		Dataset:        "nsrdb",
		RadiusMiles:    25,
		InverterEffPct: 96.0,
	}
}

var validDatasets = map[string]struct{}{
	"nsrdb": {},
	"tmy2":  {},
	"tmy3":  {},
	"intl":  {},
}

// Normalize trims and lowercases the enum-like fields.
func (c *SystemConfig) Normalize() {
	c.Timeframe = strings.ToLower(strings.TrimSpace(c.Timeframe))
	c.Dataset = strings.ToLower(strings.TrimSpace(c.Dataset))
}

// Validate checks every field against its declared bounds. Fields are
// independent; there is no cross-field validation.
func (c SystemConfig) Validate() error {
	if c.CapacityKW <= 0 {
		return errors.New("capacityKw must be greater than 0")
	}
	if c.ModuleType < 0 || c.ModuleType > 2 {
		return errors.New("moduleType must be 0, 1, or 2")
	}
	if c.LossesPct < 0 || c.LossesPct > 30 {
		return errors.New("lossesPct must be between 0 and 30")
	}
	if c.ArrayType < 0 || c.ArrayType > 4 {
		return errors.New("arrayType must be between 0 and 4")
	}
	if c.TiltDeg < 0 || c.TiltDeg > 60 {
		return errors.New("tiltDeg must be between 0 and 60")
	}
	if c.AzimuthDeg < 0 || c.AzimuthDeg > 360 {
		return errors.New("azimuthDeg must be between 0 and 360")
	}
	if c.DCACRatio < 0.1 || c.DCACRatio > 2.0 {
		return errors.New("dcAcRatio must be between 0.1 and 2.0")
	}
	if c.Timeframe != TimeframeMonthly && c.Timeframe != TimeframeHourly {
		return errors.New("timeframe must be monthly or hourly")
	}
	if _, ok := validDatasets[c.Dataset]; !ok {
		return errors.New("dataset must be one of nsrdb, tmy2, tmy3, intl")
	}
	if c.RadiusMiles < 1 || c.RadiusMiles > 100 {
		return errors.New("radiusMiles must be between 1 and 100")
	}
	if c.InverterEffPct < 96.0 || c.InverterEffPct > 99.5 {
		return errors.New("inverterEfficiencyPct must be between 96.0 and 99.5")
	}
	return nil
}

// Limit is an inclusive numeric range exposed to form builders.
type Limit struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Choice is a labeled enum value exposed to form builders.
type Choice struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Defaults bundles the starting parameters with their declared bounds so a
// client can build its input form without hard-coding them.
type Defaults struct {
	Params      SystemConfig     `json:"params"`
	Limits      map[string]Limit `json:"limits"`
	ModuleTypes []Choice         `json:"moduleTypes"`
	ArrayTypes  []Choice         `json:"arrayTypes"`
	Timeframes  []string         `json:"timeframes"`
	Datasets    []string         `json:"datasets"`
}

func buildDefaults() Defaults {
	return Defaults{
		Params: DefaultSystemConfig(),
		Limits: map[string]Limit{
			"lossesPct":             {Min: 0, Max: 30},
			"tiltDeg":               {Min: 0, Max: 60},
			"azimuthDeg":            {Min: 0, Max: 360},
			"dcAcRatio":             {Min: 0.1, Max: 2.0},
			"radiusMiles":           {Min: 1, Max: 100},
			"inverterEfficiencyPct": {Min: 96.0, Max: 99.5},
		},
		ModuleTypes: []Choice{
			{Value: 0, Label: "Standard"},
			{Value: 1, Label: "Premium"},
			{Value: 2, Label: "Thin film"},
		},
		ArrayTypes: []Choice{
			{Value: 0, Label: "Fixed - Open Rack"},
			{Value: 1, Label: "Fixed - Roof Mounted"},
			{Value: 2, Label: "1-Axis"},
			{Value: 3, Label: "1-Axis Backtracking"},
			{Value: 4, Label: "2-Axis"},
		},
		Timeframes: []string{TimeframeMonthly, TimeframeHourly},
		Datasets:   []string{"nsrdb", "tmy2", "tmy3", "intl"},
	}
}
