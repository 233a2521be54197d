package db

import (
	"fmt"
	"time"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// SessionStore serves one stored session as a telemetry.Provider. Drivers,
// laps and corners are read once when the store is opened; car data is
// queried per lap.
type SessionStore struct {
	db      *DB
	info    SessionInfo
	drivers []telemetry.Driver
	laps    []telemetry.Lap
	circuit telemetry.Circuit
}

var _ telemetry.Provider = (*SessionStore)(nil)

// Session opens the stored session with the given id.
func (db *DB) Session(id string) (*SessionStore, error) {
	info, err := db.sessionInfo(id)
	if err != nil {
		return nil, err
	}
	s := &SessionStore{db: db, info: info}
	if err := s.loadDrivers(); err != nil {
		return nil, err
	}
	if err := s.loadLaps(); err != nil {
		return nil, err
	}
	if err := s.loadCorners(); err != nil {
		return nil, err
	}
	return s, nil
}

// Info returns the stored session's metadata.
func (s *SessionStore) Info() SessionInfo { return s.info }

func (s *SessionStore) loadDrivers() error {
	rows, err := s.db.Query(`
		SELECT driver_id, code, team FROM drivers
		WHERE session_id = ? ORDER BY position
	`, s.info.ID)
	if err != nil {
		return fmt.Errorf("failed to query drivers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d telemetry.Driver
		if err := rows.Scan(&d.ID, &d.Code, &d.Team); err != nil {
			return err
		}
		s.drivers = append(s.drivers, d)
	}
	return rows.Err()
}

func (s *SessionStore) loadLaps() error {
	rows, err := s.db.Query(`
		SELECT driver_id, lap_number, team, lap_time_ns, compound, pit_in, pit_out, deleted
		FROM laps
		WHERE session_id = ? ORDER BY position
	`, s.info.ID)
	if err != nil {
		return fmt.Errorf("failed to query laps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l telemetry.Lap
		var ns int64
		if err := rows.Scan(&l.Driver, &l.Number, &l.Team, &ns, &l.Compound, &l.PitIn, &l.PitOut, &l.Deleted); err != nil {
			return err
		}
		l.LapTime = time.Duration(ns)
		s.laps = append(s.laps, l)
	}
	return rows.Err()
}

func (s *SessionStore) loadCorners() error {
	rows, err := s.db.Query(`
		SELECT number, distance FROM corners
		WHERE session_id = ? ORDER BY rowid
	`, s.info.ID)
	if err != nil {
		return fmt.Errorf("failed to query corners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c telemetry.Corner
		if err := rows.Scan(&c.Number, &c.Distance); err != nil {
			return err
		}
		s.circuit.Corners = append(s.circuit.Corners, c)
	}
	return rows.Err()
}

func (s *SessionStore) Event() telemetry.Event { return s.info.Event }

func (s *SessionStore) Drivers() []string {
	ids := make([]string, len(s.drivers))
	for i, d := range s.drivers {
		ids[i] = d.ID
	}
	return ids
}

func (s *SessionStore) Driver(id string) (telemetry.Driver, error) {
	for _, d := range s.drivers {
		if d.ID == id {
			return d, nil
		}
	}
	return telemetry.Driver{}, fmt.Errorf("driver %q: %w", id, telemetry.ErrDriverNotFound)
}

func (s *SessionStore) Laps() []telemetry.Lap {
	return s.laps
}

func (s *SessionStore) Circuit() (telemetry.Circuit, error) {
	return s.circuit, nil
}

func (s *SessionStore) CarData(lap telemetry.Lap) ([]telemetry.Sample, error) {
	rows, err := s.db.Query(`
		SELECT time_ns, distance, speed, throttle, brake, rpm, gear, x, y
		FROM samples
		WHERE session_id = ? AND driver_id = ? AND lap_number = ?
		ORDER BY seq
	`, s.info.ID, lap.Driver, lap.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var out []telemetry.Sample
	for rows.Next() {
		var smp telemetry.Sample
		var ns int64
		if err := rows.Scan(&ns, &smp.Distance, &smp.Speed, &smp.Throttle, &smp.Brake, &smp.RPM, &smp.Gear, &smp.X, &smp.Y); err != nil {
			return nil, err
		}
		smp.Time = time.Duration(ns)
		out = append(out, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("lap %s: %w", lap.Key(), telemetry.ErrNoTelemetry)
	}
	return out, nil
}
