package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// ErrSessionNotFound is returned when no stored session matches a lookup.
var ErrSessionNotFound = errors.New("session not found")

// SessionInfo describes a stored session.
type SessionInfo struct {
	ID         string
	Event      telemetry.Event
	ImportedAt time.Time
}

// SaveSession persists every driver, lap, corner and car-data sample of p in
// one transaction. A stored session for the same event is replaced.
func (db *DB) SaveSession(p telemetry.Provider) (SessionInfo, error) {
	ev := p.Event()
	info := SessionInfo{ID: uuid.NewString(), Event: ev}

	circuit, err := p.Circuit()
	if err != nil {
		return info, fmt.Errorf("circuit: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return info, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM sessions WHERE event_name = ? AND event_year = ? AND session_name = ?`,
		ev.Name, ev.Year, ev.Session,
	); err != nil {
		return info, fmt.Errorf("failed to replace session: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO sessions (session_id, event_name, event_year, session_name) VALUES (?, ?, ?, ?)`,
		info.ID, ev.Name, ev.Year, ev.Session,
	); err != nil {
		return info, fmt.Errorf("failed to insert session: %w", err)
	}

	for i, id := range p.Drivers() {
		d, err := p.Driver(id)
		if err != nil {
			return info, err
		}
		if _, err := tx.Exec(
			`INSERT INTO drivers (session_id, driver_id, code, team, position) VALUES (?, ?, ?, ?, ?)`,
			info.ID, d.ID, d.Code, d.Team, i,
		); err != nil {
			return info, fmt.Errorf("failed to insert driver %s: %w", d.ID, err)
		}
	}

	for _, c := range circuit.Corners {
		if _, err := tx.Exec(
			`INSERT INTO corners (session_id, number, distance) VALUES (?, ?, ?)`,
			info.ID, c.Number, c.Distance,
		); err != nil {
			return info, fmt.Errorf("failed to insert corner %d: %w", c.Number, err)
		}
	}

	lapStmt, err := tx.Prepare(`INSERT INTO laps (
		session_id, driver_id, lap_number, team, lap_time_ns, compound,
		pit_in, pit_out, deleted, position
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return info, err
	}
	defer lapStmt.Close()

	sampleStmt, err := tx.Prepare(`INSERT INTO samples (
		session_id, driver_id, lap_number, seq, time_ns, distance, speed,
		throttle, brake, rpm, gear, x, y
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return info, err
	}
	defer sampleStmt.Close()

	var samples int
	for i, lap := range p.Laps() {
		if _, err := lapStmt.Exec(
			info.ID, lap.Driver, lap.Number, lap.Team, int64(lap.LapTime), lap.Compound,
			lap.PitIn, lap.PitOut, lap.Deleted, i,
		); err != nil {
			return info, fmt.Errorf("failed to insert lap %s: %w", lap.Key(), err)
		}

		data, err := p.CarData(lap)
		if errors.Is(err, telemetry.ErrNoTelemetry) {
			continue
		}
		if err != nil {
			return info, fmt.Errorf("lap %s: %w", lap.Key(), err)
		}
		if err := telemetry.Validate(data); err != nil {
			db.log.Warn("malformed car data not stored", zap.String("lap", lap.Key().String()), zap.Error(err))
			continue
		}
		for seq, s := range data {
			if _, err := sampleStmt.Exec(
				info.ID, lap.Driver, lap.Number, seq, int64(s.Time), s.Distance, s.Speed,
				s.Throttle, s.Brake, s.RPM, s.Gear, s.X, s.Y,
			); err != nil {
				return info, fmt.Errorf("failed to insert sample %d of lap %s: %w", seq, lap.Key(), err)
			}
		}
		samples += len(data)
	}

	if err := tx.Commit(); err != nil {
		return info, err
	}
	db.log.Info("session stored",
		zap.String("session_id", info.ID),
		zap.String("event", ev.Name),
		zap.Int("year", ev.Year),
		zap.String("session", ev.Session),
		zap.Int("samples", samples))
	return db.sessionInfo(info.ID)
}

// ListSessions returns every stored session, most recent event first.
func (db *DB) ListSessions() ([]SessionInfo, error) {
	rows, err := db.Query(`
		SELECT session_id, event_name, event_year, session_name, imported_at
		FROM sessions
		ORDER BY event_year DESC, event_name, session_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		info, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// FindSession returns the stored session for an event.
func (db *DB) FindSession(ev telemetry.Event) (SessionInfo, error) {
	row := db.QueryRow(`
		SELECT session_id, event_name, event_year, session_name, imported_at
		FROM sessions
		WHERE event_name = ? AND event_year = ? AND session_name = ?
	`, ev.Name, ev.Year, ev.Session)
	info, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return info, fmt.Errorf("%d %s %s: %w", ev.Year, ev.Name, ev.Session, ErrSessionNotFound)
	}
	return info, err
}

// DeleteSession removes a stored session and everything recorded for it.
func (db *DB) DeleteSession(id string) error {
	res, err := db.Exec(`DELETE FROM sessions WHERE session_id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return nil
}

func (db *DB) sessionInfo(id string) (SessionInfo, error) {
	row := db.QueryRow(`
		SELECT session_id, event_name, event_year, session_name, imported_at
		FROM sessions
		WHERE session_id = ?
	`, id)
	info, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return info, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return info, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (SessionInfo, error) {
	var info SessionInfo
	err := s.Scan(&info.ID, &info.Event.Name, &info.Event.Year, &info.Event.Session, &info.ImportedAt)
	return info, err
}
