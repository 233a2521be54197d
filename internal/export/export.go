// Package export writes car data and metric tables as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/telemetry.report/internal/metrics"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// TelemetryHeader is the column layout of a telemetry export.
var TelemetryHeader = []string{"Driver", "LapNumber", "Time", "Distance", "Speed", "Throttle", "Brake", "RPM", "Gear", "X", "Y"}

// TelemetryWriter writes one row per car data sample.
type TelemetryWriter struct {
	w      *csv.Writer
	header bool
}

// NewTelemetryWriter returns a writer to w. The header is written before the
// first row.
func NewTelemetryWriter(w io.Writer) *TelemetryWriter {
	return &TelemetryWriter{w: csv.NewWriter(w)}
}

// WriteLap writes the samples of one lap.
func (t *TelemetryWriter) WriteLap(driver string, lap int, samples []telemetry.Sample) error {
	if err := t.writeHeader(); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			driver,
			strconv.Itoa(lap),
			fmt.Sprintf("%.3f", s.Time.Seconds()),
			formatFloat(s.Distance),
			formatFloat(s.Speed),
			formatFloat(s.Throttle),
			formatFloat(s.Brake),
			formatFloat(s.RPM),
			strconv.Itoa(s.Gear),
			formatFloat(s.X),
			formatFloat(s.Y),
		}
		if err := t.w.Write(row); err != nil {
			return fmt.Errorf("write lap %d row: %w", lap, err)
		}
	}
	return nil
}

func (t *TelemetryWriter) writeHeader() error {
	if t.header {
		return nil
	}
	t.header = true
	if err := t.w.Write(TelemetryHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// Flush writes buffered rows, including the header of an empty export.
func (t *TelemetryWriter) Flush() error {
	if err := t.writeHeader(); err != nil {
		return err
	}
	t.w.Flush()
	return t.w.Error()
}

// TableHeader is the column layout of a metric table export.
var TableHeader = []string{"Metric", "Driver", "Team", "LapNumber", "Value"}

// WriteTable writes the observations of a metric table.
func WriteTable(w io.Writer, t metrics.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TableHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, o := range t.Observations {
		row := []string{t.Metric, o.Driver, o.Team, strconv.Itoa(o.Lap), formatFloat(o.Value)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
