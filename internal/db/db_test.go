package db

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "telemetry.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testSession(name string) *telemetry.MemorySession {
	s := telemetry.NewMemorySession(telemetry.Event{Name: name, Year: 2024, Session: "Qualifying"})
	s.Track = telemetry.Circuit{Corners: []telemetry.Corner{{Number: 2, Distance: 900}, {Number: 1, Distance: 350.5}}}
	s.AddDriver(telemetry.Driver{ID: "16", Code: "LEC", Team: "Ferrari"})
	s.AddDriver(telemetry.Driver{ID: "1", Code: "VER", Team: "Red Bull Racing"})
	s.AddLap(telemetry.Lap{Driver: "1", Number: 1, Team: "Red Bull Racing", LapTime: 91234 * time.Millisecond, Compound: "SOFT", PitOut: true}, []telemetry.Sample{
		{Time: 0, Distance: 0, Speed: 200, Throttle: 100, RPM: 11000, Gear: 7, X: 1, Y: 2},
		{Time: 100 * time.Millisecond, Distance: 5.5, Speed: 198.5, Brake: 1, Gear: 6, X: 1.5, Y: 2.5},
	})
	s.AddLap(telemetry.Lap{Driver: "16", Number: 1, Team: "Ferrari", Deleted: true, PitIn: true}, nil)
	return s
}

func TestPragmas(t *testing.T) {
	db := openTestDB(t)

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var busyTimeout, foreignKeys int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 5000, busyTimeout)
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
}

func TestMigrations(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Already current.
	require.NoError(t, db.MigrateUp(MigrationsFS()))

	require.NoError(t, db.MigrateDown(MigrationsFS()))
	version, _, err = db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='samples'`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestOpenDBWithoutMigrations(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "raw.db"), nil)
	require.NoError(t, err)
	defer db.Close()

	version, dirty, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)
}

func TestSaveAndLoadSession(t *testing.T) {
	db := openTestDB(t)
	src := testSession("Test Grand Prix")

	info, err := db.SaveSession(src)
	require.NoError(t, err)
	assert.Len(t, info.ID, 36)
	assert.Equal(t, src.Event(), info.Event)
	assert.False(t, info.ImportedAt.IsZero())

	store, err := db.Session(info.ID)
	require.NoError(t, err)

	assert.Equal(t, src.Event(), store.Event())
	assert.Equal(t, []string{"16", "1"}, store.Drivers())
	d, err := store.Driver("1")
	require.NoError(t, err)
	assert.Equal(t, "VER", d.Code)
	_, err = store.Driver("44")
	assert.ErrorIs(t, err, telemetry.ErrDriverNotFound)

	if diff := cmp.Diff(src.Laps(), store.Laps()); diff != "" {
		t.Errorf("laps mismatch (-want +got):\n%s", diff)
	}

	c, err := store.Circuit()
	require.NoError(t, err)
	assert.Equal(t, src.Track, c)

	for _, lap := range src.Laps() {
		want, wantErr := src.CarData(lap)
		got, err := store.CarData(lap)
		if wantErr != nil {
			assert.ErrorIs(t, err, telemetry.ErrNoTelemetry)
			continue
		}
		require.NoError(t, err)
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("car data mismatch for %s (-want +got):\n%s", lap.Key(), diff)
		}
	}
}

func TestSaveSessionSkipsMalformedCarData(t *testing.T) {
	db := openTestDB(t)
	src := testSession("Test Grand Prix")
	bad := telemetry.Lap{Driver: "16", Number: 2, Team: "Ferrari"}
	src.AddLap(bad, []telemetry.Sample{{Time: 0, Speed: math.NaN()}})

	info, err := db.SaveSession(src)
	require.NoError(t, err)
	store, err := db.Session(info.ID)
	require.NoError(t, err)

	assert.Len(t, store.Laps(), 3)
	_, err = store.CarData(bad)
	assert.ErrorIs(t, err, telemetry.ErrNoTelemetry)
	good, err := store.CarData(telemetry.Lap{Driver: "1", Number: 1})
	require.NoError(t, err)
	assert.Len(t, good, 2)
}

func TestSaveSessionReplacesEvent(t *testing.T) {
	db := openTestDB(t)

	first, err := db.SaveSession(testSession("Test Grand Prix"))
	require.NoError(t, err)
	second, err := db.SaveSession(testSession("Test Grand Prix"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = db.Session(first.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	var samples int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM samples`).Scan(&samples))
	assert.Equal(t, 2, samples)
}

func TestListAndFindSessions(t *testing.T) {
	db := openTestDB(t)

	_, err := db.SaveSession(testSession("Bahrain Grand Prix"))
	require.NoError(t, err)
	older := testSession("Abu Dhabi Grand Prix")
	older.Info.Year = 2023
	_, err = db.SaveSession(older)
	require.NoError(t, err)

	list, err := db.ListSessions()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bahrain Grand Prix", list[0].Event.Name)
	assert.Equal(t, 2023, list[1].Event.Year)

	found, err := db.FindSession(older.Event())
	require.NoError(t, err)
	assert.Equal(t, list[1].ID, found.ID)

	_, err = db.FindSession(telemetry.Event{Name: "Monaco Grand Prix", Year: 2024, Session: "Race"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteSession(t *testing.T) {
	db := openTestDB(t)
	info, err := db.SaveSession(testSession("Test Grand Prix"))
	require.NoError(t, err)

	require.NoError(t, db.DeleteSession(info.ID))
	assert.ErrorIs(t, db.DeleteSession(info.ID), ErrSessionNotFound)

	for _, table := range []string{"drivers", "laps", "corners", "samples"} {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}
