package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 250.0, cfg.GetBrakingBefore())
	assert.Equal(t, 50.0, cfg.GetBrakingAfter())
	assert.Equal(t, 20.0, cfg.GetApexHalfWidth())
	assert.Equal(t, 100.0, cfg.GetExitOffset())
	assert.Equal(t, 300.0, cfg.GetThrottleWindow())
	assert.Equal(t, 99.0, cfg.GetThrottleThreshold())
	assert.Equal(t, 1000.0, cfg.GetAccelWindow())
	assert.Equal(t, 1.07, cfg.GetQuickLapThreshold())
	assert.Equal(t, "#CCCCCC", cfg.GetDefaultColor())
	assert.Equal(t, []string{"png"}, cfg.GetFormats())
	assert.Equal(t, "kph", cfg.GetSpeedUnits())
}

func TestEmptyConfigUsesDefaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, Default().GetBrakingBefore(), cfg.GetBrakingBefore())
	assert.Equal(t, DefaultOutputDir, cfg.GetOutputDir())
	assert.Equal(t, "", cfg.GetTeamColorsPath())
	assert.Equal(t, 10.0, cfg.GetBrakingMin())
	assert.Equal(t, 8.0, cfg.GetAccelMax())
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "analysis.json", `{
  "braking_before": 200,
  "exit_offset": 80,
  "formats": "png,html",
  "default_color": "#FFFFFF"
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200.0, cfg.GetBrakingBefore())
	assert.Equal(t, 50.0, cfg.GetBrakingAfter())
	assert.Equal(t, 80.0, cfg.GetExitOffset())
	assert.Equal(t, []string{"png", "html"}, cfg.GetFormats())
	assert.Equal(t, "#FFFFFF", cfg.GetDefaultColor())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		want string
	}{
		{"wrong extension", "analysis.yaml", "{}", ".json extension"},
		{"bad json", "analysis.json", "{", "failed to parse"},
		{"negative window", "analysis.json", `{"braking_before": -1}`, "braking_before"},
		{"inverted braking bounds", "analysis.json", `{"braking_min": 300}`, "braking_min"},
		{"inverted accel bounds", "analysis.json", `{"accel_min": 9}`, "accel_min"},
		{"throttle over 100", "analysis.json", `{"throttle_threshold": 120}`, "throttle_threshold"},
		{"quick lap below 1", "analysis.json", `{"quick_lap_threshold": 0.9}`, "quick_lap_threshold"},
		{"unknown format", "analysis.json", `{"formats": "svg"}`, "unknown output format"},
		{"unknown units", "analysis.json", `{"speed_units": "knots"}`, "speed_units"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats(" PNG , html ")
	require.NoError(t, err)
	assert.Equal(t, []string{"png", "html"}, got)

	_, err = ParseFormats(" , ")
	assert.Error(t, err)
}
