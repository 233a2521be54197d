// Package ingest loads a pre-fetched session from CSV files into memory.
//
// A session directory holds laps.csv, and optionally corners.csv and
// telemetry.csv. Headers are matched case-insensitively and columns may
// appear in any order.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/banshee-data/telemetry.report/internal/fsutil"
	"github.com/banshee-data/telemetry.report/internal/logging"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

const (
	LapsFile      = "laps.csv"
	CornersFile   = "corners.csv"
	TelemetryFile = "telemetry.csv"
)

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("missing column")

// Loader reads session directories through a filesystem.
type Loader struct {
	FS  fsutil.FileSystem
	Log *zap.Logger
}

// LoadSession reads the session in dir from the local filesystem.
func LoadSession(dir string, ev telemetry.Event) (*telemetry.MemorySession, error) {
	return Loader{FS: fsutil.OSFileSystem{}}.Load(dir, ev)
}

// Load reads laps, corners and car data from dir. Structural problems with a
// file fail the load. A car data row that cannot be read drops that lap's car
// data only, so the lap is later skipped as having no telemetry. An empty
// cell in a car data column reads as NaN and fails validation; it is never
// taken as zero. Car data without distance is left for telemetry.LapData to
// integrate.
func (l Loader) Load(dir string, ev telemetry.Event) (*telemetry.MemorySession, error) {
	if l.FS == nil {
		l.FS = fsutil.OSFileSystem{}
	}
	log := logging.OrNop(l.Log)
	s := telemetry.NewMemorySession(ev)

	laps, err := l.readTable(filepath.Join(dir, LapsFile), "drivernumber", "lapnumber", "laptime")
	if err != nil {
		return nil, err
	}
	known, err := loadLaps(s, laps)
	if err != nil {
		return nil, err
	}

	cornersPath := filepath.Join(dir, CornersFile)
	if l.FS.Exists(cornersPath) {
		corners, err := l.readTable(cornersPath, "number", "distance")
		if err != nil {
			return nil, err
		}
		if s.Track, err = loadCorners(corners); err != nil {
			return nil, err
		}
	} else {
		log.Warn("no corner data, corner analyses unavailable", zap.String("path", cornersPath))
	}

	carPath := filepath.Join(dir, TelemetryFile)
	if l.FS.Exists(carPath) {
		car, err := l.readTable(carPath, "drivernumber", "lapnumber", "time", "speed")
		if err != nil {
			return nil, err
		}
		loadCarData(s, car, known, log)
	} else {
		log.Warn("no car data, trace analyses unavailable", zap.String("path", carPath))
	}

	log.Info("session loaded",
		zap.String("dir", dir),
		zap.Int("drivers", len(s.DriverSet)),
		zap.Int("laps", len(s.LapSet)),
		zap.Int("corners", len(s.Track.Corners)),
		zap.Int("laps_with_telemetry", len(s.Telemetry)))
	return s, nil
}

func loadLaps(s *telemetry.MemorySession, t *table) (map[telemetry.LapKey]telemetry.Lap, error) {
	known := make(map[telemetry.LapKey]telemetry.Lap, len(t.rows))
	drivers := make(map[string]bool)
	for i, row := range t.rows {
		line := i + 2
		lap := telemetry.Lap{
			Driver:   t.str(row, "drivernumber"),
			Team:     t.str(row, "team"),
			Compound: strings.ToUpper(t.str(row, "compound")),
		}
		var err error
		if lap.Number, err = t.int(row, line, "lapnumber"); err != nil {
			return nil, err
		}
		secs, err := t.float(row, line, "laptime")
		if err != nil {
			return nil, err
		}
		lap.LapTime = seconds(secs)
		if lap.PitIn, err = t.bool(row, line, "pitin"); err != nil {
			return nil, err
		}
		if lap.PitOut, err = t.bool(row, line, "pitout"); err != nil {
			return nil, err
		}
		if lap.Deleted, err = t.bool(row, line, "deleted"); err != nil {
			return nil, err
		}
		if lap.Driver == "" {
			return nil, fmt.Errorf("%s line %d: empty driver number", t.name, line)
		}

		if !drivers[lap.Driver] {
			drivers[lap.Driver] = true
			s.AddDriver(telemetry.Driver{ID: lap.Driver, Code: t.str(row, "driver"), Team: lap.Team})
		}
		if _, dup := known[lap.Key()]; dup {
			return nil, fmt.Errorf("%s line %d: duplicate lap %s", t.name, line, lap.Key())
		}
		known[lap.Key()] = lap
		s.AddLap(lap, nil)
	}
	return known, nil
}

func loadCorners(t *table) (telemetry.Circuit, error) {
	var c telemetry.Circuit
	for i, row := range t.rows {
		line := i + 2
		n, err := t.int(row, line, "number")
		if err != nil {
			return c, err
		}
		d, err := t.float(row, line, "distance")
		if err != nil {
			return c, err
		}
		c.Corners = append(c.Corners, telemetry.Corner{Number: n, Distance: d})
	}
	return c, nil
}

func loadCarData(s *telemetry.MemorySession, t *table, known map[telemetry.LapKey]telemetry.Lap, log *zap.Logger) {
	var order []telemetry.LapKey
	byLap := make(map[telemetry.LapKey][]telemetry.Sample)
	malformed := make(map[telemetry.LapKey]bool)
	for i, row := range t.rows {
		line := i + 2
		key := telemetry.LapKey{Driver: t.str(row, "drivernumber")}
		var err error
		if key.Number, err = t.int(row, line, "lapnumber"); err != nil {
			log.Warn("car data row without a lap ignored", zap.Int("line", line), zap.Error(err))
			continue
		}
		if _, seen := byLap[key]; !seen {
			order = append(order, key)
			byLap[key] = nil
		}
		if malformed[key] {
			continue
		}
		smp, err := t.sample(row, line)
		if err != nil {
			log.Warn("malformed car data, lap dropped",
				zap.String("lap", key.String()),
				zap.Int("line", line),
				zap.Error(err))
			malformed[key] = true
			continue
		}
		byLap[key] = append(byLap[key], smp)
	}

	for _, key := range order {
		if _, ok := known[key]; !ok {
			log.Warn("car data for unknown lap ignored", zap.String("lap", key.String()))
			continue
		}
		if malformed[key] {
			continue
		}
		s.Telemetry[key] = byLap[key]
	}
}

func (t *table) sample(row []string, line int) (telemetry.Sample, error) {
	var smp telemetry.Sample
	if t.str(row, "time") == "" {
		return smp, fmt.Errorf("%s line %d: empty time", t.name, line)
	}
	secs, err := t.float(row, line, "time")
	if err != nil {
		return smp, err
	}
	smp.Time = seconds(secs)

	floats := []struct {
		col string
		dst *float64
	}{
		{"distance", &smp.Distance},
		{"speed", &smp.Speed},
		{"throttle", &smp.Throttle},
		{"rpm", &smp.RPM},
		{"x", &smp.X},
		{"y", &smp.Y},
	}
	for _, f := range floats {
		if *f.dst, err = t.channel(row, line, f.col); err != nil {
			return smp, err
		}
	}

	// Brake is either a flag or a pressure-like value; >= 1 means applied.
	if raw := t.str(row, "brake"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			if b {
				smp.Brake = 1
			}
		} else if smp.Brake, err = strconv.ParseFloat(raw, 64); err != nil {
			return smp, fmt.Errorf("%s line %d: invalid brake %q: %w", t.name, line, raw, err)
		}
	} else if t.has("brake") {
		smp.Brake = math.NaN()
	}

	gearCol := "gear"
	if !t.has(gearCol) {
		gearCol = "ngear"
	}
	if smp.Gear, err = t.int(row, line, gearCol); err != nil {
		return smp, err
	}
	return smp, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// table is a parsed CSV file with a header row.
type table struct {
	name string
	cols map[string]int
	rows [][]string
}

func (l Loader) readTable(path string, required ...string) (*table, error) {
	f, err := l.FS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no header row", path)
	}

	t := &table{name: filepath.Base(path), cols: make(map[string]int), rows: records[1:]}
	for i, h := range records[0] {
		t.cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range required {
		if !t.has(c) {
			return nil, fmt.Errorf("%s: %q: %w", t.name, c, ErrMissingColumn)
		}
	}
	return t, nil
}

func (t *table) has(col string) bool {
	_, ok := t.cols[col]
	return ok
}

// str returns the trimmed cell, or "" when the column is absent.
func (t *table) str(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// channel parses a car data cell. An absent column reads as zero; an empty
// cell in a present column is NaN.
func (t *table) channel(row []string, line int, col string) (float64, error) {
	if t.has(col) && t.str(row, col) == "" {
		return math.NaN(), nil
	}
	return t.float(row, line, col)
}

// float parses a lap table cell; an empty or absent cell is zero.
func (t *table) float(row []string, line int, col string) (float64, error) {
	raw := t.str(row, col)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: invalid %s %q: %w", t.name, line, col, raw, err)
	}
	return v, nil
}

func (t *table) int(row []string, line int, col string) (int, error) {
	v, err := t.float(row, line, col)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (t *table) bool(row []string, line int, col string) (bool, error) {
	raw := t.str(row, col)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s line %d: invalid %s %q: %w", t.name, line, col, raw, err)
	}
	return b, nil
}
