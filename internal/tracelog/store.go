// Package tracelog persists gesture trace sessions to sqlite so interactions
// can be analyzed and replayed offline. The schema is managed with
// golang-migrate from migrations embedded in the binary.
package tracelog

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/stagemode/internal/orbit"
	"github.com/banshee-data/stagemode/internal/spatial"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a sqlite-backed trace store. Safe for use from a single goroutine;
// the underlying driver serializes access for the tooling that reads while a
// recorder writes.
type Store struct {
	db *sql.DB
}

// Open opens or creates the trace database at path and applies any pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening trace db: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating trace db: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Session is one recorded gesture from Begin to the return to idle. EndedAt
// is zero for sessions still open or interrupted by a new Begin.
type Session struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Operation orbit.Operation
}

func (s *Store) BeginSession(id string, at time.Time, op orbit.Operation) error {
	_, err := s.db.Exec(
		"INSERT INTO sessions (id, started_unix_nanos, operation) VALUES (?, ?, ?)",
		id, at.UnixNano(), string(op))
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", id, err)
	}
	return nil
}

func (s *Store) EndSession(id string, at time.Time) error {
	_, err := s.db.Exec(
		"UPDATE sessions SET ended_unix_nanos = ? WHERE id = ?",
		at.UnixNano(), id)
	if err != nil {
		return fmt.Errorf("ending session %s: %w", id, err)
	}
	return nil
}

func (s *Store) InsertSample(sm orbit.TraceSample) error {
	_, err := s.db.Exec(`
		INSERT INTO samples (
			session_id, seq, unix_nanos, phase,
			tx, ty, tz, qw, qx, qy, qz,
			yaw_delta, pitch_delta, yaw_rate, pitch_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sm.SessionID, sm.Seq, sm.Time.UnixNano(), string(sm.Phase),
		sm.Pose.Translation.X(), sm.Pose.Translation.Y(), sm.Pose.Translation.Z(),
		sm.Pose.Rotation.W, sm.Pose.Rotation.X(), sm.Pose.Rotation.Y(), sm.Pose.Rotation.Z(),
		sm.YawDelta, sm.PitchDelta, sm.YawRate, sm.PitchRate)
	if err != nil {
		return fmt.Errorf("inserting sample %s/%d: %w", sm.SessionID, sm.Seq, err)
	}
	return nil
}

// Sessions returns all recorded sessions, most recent first.
func (s *Store) Sessions() ([]Session, error) {
	rows, err := s.db.Query(`
		SELECT id, started_unix_nanos, ended_unix_nanos, operation
		FROM sessions ORDER BY started_unix_nanos DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess    Session
			started int64
			ended   sql.NullInt64
			op      string
		)
		if err := rows.Scan(&sess.ID, &started, &ended, &op); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sess.StartedAt = time.Unix(0, started)
		if ended.Valid {
			sess.EndedAt = time.Unix(0, ended.Int64)
		}
		sess.Operation = orbit.Operation(op)
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Samples returns a session's samples in sequence order.
func (s *Store) Samples(sessionID string) ([]orbit.TraceSample, error) {
	rows, err := s.db.Query(`
		SELECT session_id, seq, unix_nanos, phase,
			tx, ty, tz, qw, qx, qy, qz,
			yaw_delta, pitch_delta, yaw_rate, pitch_rate
		FROM samples WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying samples for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var samples []orbit.TraceSample
	for rows.Next() {
		var (
			sm                         orbit.TraceSample
			nanos                      int64
			phase                      string
			tx, ty, tz, qw, qx, qy, qz float64
		)
		if err := rows.Scan(&sm.SessionID, &sm.Seq, &nanos, &phase,
			&tx, &ty, &tz, &qw, &qx, &qy, &qz,
			&sm.YawDelta, &sm.PitchDelta, &sm.YawRate, &sm.PitchRate); err != nil {
			return nil, fmt.Errorf("scanning sample row: %w", err)
		}
		sm.Time = time.Unix(0, nanos)
		sm.Phase = orbit.Phase(phase)
		sm.Pose = spatial.Pose{
			Rotation:    mgl64.Quat{W: qw, V: mgl64.Vec3{qx, qy, qz}},
			Translation: mgl64.Vec3{tx, ty, tz},
		}
		samples = append(samples, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

// DeleteSession removes a session and its samples.
func (s *Store) DeleteSession(id string) error {
	if _, err := s.db.Exec("DELETE FROM samples WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("deleting samples for %s: %w", id, err)
	}
	if _, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}
