package simulation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultSystemConfigIsValid(t *testing.T) {
	cfg := DefaultSystemConfig()
	cfg.Normalize()
	require.NoError(t, cfg.Validate())
}

func TestSystemConfigNormalize(t *testing.T) {
	cfg := DefaultSystemConfig()
	cfg.Timeframe = "  Hourly "
	cfg.Dataset = "NSRDB"

	cfg.Normalize()

	require.Equal(t, "hourly", cfg.Timeframe)
	require.Equal(t, "nsrdb", cfg.Dataset)
}

func TestSystemConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*SystemConfig)
		wantErr string
	}{
		{"zero capacity", func(c *SystemConfig) { c.CapacityKW = 0 }, "capacityKw"},
		{"negative capacity", func(c *SystemConfig) { c.CapacityKW = -3 }, "capacityKw"},
		{"module type too high", func(c *SystemConfig) { c.ModuleType = 3 }, "moduleType"},
		{"losses above bound", func(c *SystemConfig) { c.LossesPct = 30.5 }, "lossesPct"},
		{"negative losses", func(c *SystemConfig) { c.LossesPct = -1 }, "lossesPct"},
		{"array type too high", func(c *SystemConfig) { c.ArrayType = 5 }, "arrayType"},
		{"tilt above bound", func(c *SystemConfig) { c.TiltDeg = 61 }, "tiltDeg"},
		{"azimuth above bound", func(c *SystemConfig) { c.AzimuthDeg = 360.5 }, "azimuthDeg"},
		{"dc/ac ratio too low", func(c *SystemConfig) { c.DCACRatio = 0.05 }, "dcAcRatio"},
		{"dc/ac ratio too high", func(c *SystemConfig) { c.DCACRatio = 2.5 }, "dcAcRatio"},
		{"unknown timeframe", func(c *SystemConfig) { c.Timeframe = "yearly" }, "timeframe"},
		{"unknown dataset", func(c *SystemConfig) { c.Dataset = "custom" }, "dataset"},
		{"radius too small", func(c *SystemConfig) { c.RadiusMiles = 0 }, "radiusMiles"},
		{"radius too large", func(c *SystemConfig) { c.RadiusMiles = 101 }, "radiusMiles"},
		{"inverter efficiency too low", func(c *SystemConfig) { c.InverterEffPct = 95.9 }, "inverterEfficiencyPct"},
		{"inverter efficiency too high", func(c *SystemConfig) { c.InverterEffPct = 99.6 }, "inverterEfficiencyPct"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultSystemConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSystemConfigValidateBoundaries(t *testing.T) {
	cfg := DefaultSystemConfig()
	cfg.LossesPct = 30
	cfg.TiltDeg = 60
	cfg.AzimuthDeg = 360
	cfg.DCACRatio = 2.0
	cfg.RadiusMiles = 100
	cfg.InverterEffPct = 99.5
	require.NoError(t, cfg.Validate())

	cfg = DefaultSystemConfig()
	cfg.LossesPct = 0
	cfg.TiltDeg = 0
	cfg.AzimuthDeg = 0
	cfg.DCACRatio = 0.1
	cfg.RadiusMiles = 1
	cfg.InverterEffPct = 96.0
	require.NoError(t, cfg.Validate())
}

func TestBuildDefaults(t *testing.T) {
	d := buildDefaults()

	require.Equal(t, DefaultSystemConfig(), d.Params)
	require.Len(t, d.ModuleTypes, 3)
	require.Len(t, d.ArrayTypes, 5)
	require.Equal(t, []string{TimeframeMonthly, TimeframeHourly}, d.Timeframes)
	require.Contains(t, d.Datasets, "nsrdb")

	tilt, ok := d.Limits["tiltDeg"]
	require.True(t, ok)
	require.Equal(t, Limit{Min: 0, Max: 60}, tilt)
}
