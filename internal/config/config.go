package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/telemetry.report/internal/units"
)

// Config holds the analysis parameters. Every field is optional: omitted
// fields fall back to the defaults returned by the Get* methods, so partial
// configs are safe.
type Config struct {
	// Corner entry
	BrakingBefore  *float64 `json:"braking_before,omitempty"`
	BrakingAfter   *float64 `json:"braking_after,omitempty"`
	BrakeThreshold *float64 `json:"brake_threshold,omitempty"`
	BrakingMin     *float64 `json:"braking_min,omitempty"`
	BrakingMax     *float64 `json:"braking_max,omitempty"`
	ApexHalfWidth  *float64 `json:"apex_half_width,omitempty"`

	// Corner exit
	ExitOffset        *float64 `json:"exit_offset,omitempty"`
	ExitHalfWidth     *float64 `json:"exit_half_width,omitempty"`
	ThrottleWindow    *float64 `json:"throttle_window,omitempty"`
	ThrottleThreshold *float64 `json:"throttle_threshold,omitempty"`

	// Straights
	AccelWindow *float64 `json:"accel_window,omitempty"`
	AccelMin    *float64 `json:"accel_min,omitempty"`
	AccelMax    *float64 `json:"accel_max,omitempty"`

	// Lap selection
	QuickLapThreshold *float64 `json:"quick_lap_threshold,omitempty"`

	// Output
	DefaultColor   *string `json:"default_color,omitempty"`
	OutputDir      *string `json:"output_dir,omitempty"`
	Formats        *string `json:"formats,omitempty"` // "png", "html" or "png,html"
	TeamColorsPath *string `json:"team_colors_path,omitempty"`
	SpeedUnits     *string `json:"speed_units,omitempty"`
}

// Defaults.
const (
	DefaultBrakingBefore     = 250.0
	DefaultBrakingAfter      = 50.0
	DefaultBrakeThreshold    = 1.0
	DefaultBrakingMin        = 10.0
	DefaultBrakingMax        = 250.0
	DefaultApexHalfWidth     = 20.0
	DefaultExitOffset        = 100.0
	DefaultExitHalfWidth     = 10.0
	DefaultThrottleWindow    = 300.0
	DefaultThrottleThreshold = 99.0
	DefaultAccelWindow       = 1000.0
	DefaultAccelMin          = 0.5
	DefaultAccelMax          = 8.0
	DefaultQuickLapThreshold = 1.07
	DefaultColor             = "#CCCCCC"
	DefaultOutputDir         = "out"
	DefaultFormats           = "png"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{"png", "html"}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }

// Default returns a Config with every field set to its default.
func Default() *Config {
	return &Config{
		BrakingBefore:     ptrFloat64(DefaultBrakingBefore),
		BrakingAfter:      ptrFloat64(DefaultBrakingAfter),
		BrakeThreshold:    ptrFloat64(DefaultBrakeThreshold),
		BrakingMin:        ptrFloat64(DefaultBrakingMin),
		BrakingMax:        ptrFloat64(DefaultBrakingMax),
		ApexHalfWidth:     ptrFloat64(DefaultApexHalfWidth),
		ExitOffset:        ptrFloat64(DefaultExitOffset),
		ExitHalfWidth:     ptrFloat64(DefaultExitHalfWidth),
		ThrottleWindow:    ptrFloat64(DefaultThrottleWindow),
		ThrottleThreshold: ptrFloat64(DefaultThrottleThreshold),
		AccelWindow:       ptrFloat64(DefaultAccelWindow),
		AccelMin:          ptrFloat64(DefaultAccelMin),
		AccelMax:          ptrFloat64(DefaultAccelMax),
		QuickLapThreshold: ptrFloat64(DefaultQuickLapThreshold),
		DefaultColor:      ptrString(DefaultColor),
		OutputDir:         ptrString(DefaultOutputDir),
		Formats:           ptrString(DefaultFormats),
		TeamColorsPath:    ptrString(""),
		SpeedUnits:        ptrString(units.KPH),
	}
}

// Load reads a Config from a JSON file.
// The file must have a .json extension and be under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	for name, v := range map[string]*float64{
		"braking_before":  c.BrakingBefore,
		"braking_after":   c.BrakingAfter,
		"apex_half_width": c.ApexHalfWidth,
		"exit_half_width": c.ExitHalfWidth,
		"throttle_window": c.ThrottleWindow,
		"accel_window":    c.AccelWindow,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *v)
		}
	}

	if c.GetBrakingMin() >= c.GetBrakingMax() {
		return fmt.Errorf("braking_min (%f) must be below braking_max (%f)", c.GetBrakingMin(), c.GetBrakingMax())
	}
	if c.GetAccelMin() >= c.GetAccelMax() {
		return fmt.Errorf("accel_min (%f) must be below accel_max (%f)", c.GetAccelMin(), c.GetAccelMax())
	}

	if c.ThrottleThreshold != nil {
		if *c.ThrottleThreshold < 0 || *c.ThrottleThreshold > 100 {
			return fmt.Errorf("throttle_threshold must be between 0 and 100, got %f", *c.ThrottleThreshold)
		}
	}

	if c.QuickLapThreshold != nil && *c.QuickLapThreshold < 1 {
		return fmt.Errorf("quick_lap_threshold must be at least 1, got %f", *c.QuickLapThreshold)
	}

	if c.Formats != nil {
		if _, err := ParseFormats(*c.Formats); err != nil {
			return err
		}
	}

	if c.SpeedUnits != nil && !units.IsValid(*c.SpeedUnits) {
		return fmt.Errorf("speed_units must be one of %s, got %q", units.GetValidUnitsString(), *c.SpeedUnits)
	}

	return nil
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		valid := false
		for _, v := range ValidFormats {
			if f == v {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("unknown output format %q", f)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no output format in %q", s)
	}
	return out, nil
}

func getFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func getString(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}

// GetBrakingBefore returns the braking window length before the apex.
func (c *Config) GetBrakingBefore() float64 { return getFloat(c.BrakingBefore, DefaultBrakingBefore) }

// GetBrakingAfter returns the braking window length after the apex.
func (c *Config) GetBrakingAfter() float64 { return getFloat(c.BrakingAfter, DefaultBrakingAfter) }

func (c *Config) GetBrakeThreshold() float64 {
	return getFloat(c.BrakeThreshold, DefaultBrakeThreshold)
}

func (c *Config) GetBrakingMin() float64 { return getFloat(c.BrakingMin, DefaultBrakingMin) }
func (c *Config) GetBrakingMax() float64 { return getFloat(c.BrakingMax, DefaultBrakingMax) }

// GetApexHalfWidth returns the half width of the apex speed window.
func (c *Config) GetApexHalfWidth() float64 { return getFloat(c.ApexHalfWidth, DefaultApexHalfWidth) }

// GetExitOffset returns how far past the apex exit speed is measured.
func (c *Config) GetExitOffset() float64 { return getFloat(c.ExitOffset, DefaultExitOffset) }

func (c *Config) GetExitHalfWidth() float64 { return getFloat(c.ExitHalfWidth, DefaultExitHalfWidth) }

// GetThrottleWindow returns the search distance for full throttle after the apex.
func (c *Config) GetThrottleWindow() float64 {
	return getFloat(c.ThrottleWindow, DefaultThrottleWindow)
}

func (c *Config) GetThrottleThreshold() float64 {
	return getFloat(c.ThrottleThreshold, DefaultThrottleThreshold)
}

// GetAccelWindow returns the search distance for acceleration after a corner.
func (c *Config) GetAccelWindow() float64 { return getFloat(c.AccelWindow, DefaultAccelWindow) }

func (c *Config) GetAccelMin() float64 { return getFloat(c.AccelMin, DefaultAccelMin) }
func (c *Config) GetAccelMax() float64 { return getFloat(c.AccelMax, DefaultAccelMax) }

func (c *Config) GetQuickLapThreshold() float64 {
	return getFloat(c.QuickLapThreshold, DefaultQuickLapThreshold)
}

func (c *Config) GetDefaultColor() string { return getString(c.DefaultColor, DefaultColor) }
func (c *Config) GetOutputDir() string    { return getString(c.OutputDir, DefaultOutputDir) }

// GetFormats returns the parsed output formats, or the default on a parse error.
func (c *Config) GetFormats() []string {
	f, err := ParseFormats(getString(c.Formats, DefaultFormats))
	if err != nil {
		return []string{DefaultFormats}
	}
	return f
}

// GetTeamColorsPath returns the team colour file; empty means the built-in table.
func (c *Config) GetTeamColorsPath() string { return getString(c.TeamColorsPath, "") }

func (c *Config) GetSpeedUnits() string { return getString(c.SpeedUnits, units.KPH) }
