// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package journal persists per-frame pacing records to SQLite and
// summarizes them.
package journal

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/gogpu/vrrbench/internal/logging"
)

// ErrJournal wraps every storage failure.
var ErrJournal = errors.New("journal: storage failed")

// ErrNoSession is returned by Record before Begin.
var ErrNoSession = errors.New("journal: no session")

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Outcome is how a tick ended.
type Outcome uint8

const (
	OutcomePresented Outcome = iota
	OutcomeNoPose
	OutcomeNoDrawable
	OutcomeCommandBuffer
	OutcomePresentError
)

var outcomeNames = [...]string{"presented", "no_pose", "no_drawable", "command_buffer", "present_error"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	for i, n := range outcomeNames {
		if n == s {
			return Outcome(i), nil
		}
	}
	return 0, fmt.Errorf("journal: unknown outcome %q", s)
}

// FrameRecord is one tick.
type FrameRecord struct {
	Seq         int64
	Now         float64
	Predicted   float64
	Interval    float64
	Outcome     Outcome
	Drawable    int
	Levels      int
	Populate    time.Duration
	Wait        time.Duration
	Outstanding int
}

// Journal is an open frame database.
type Journal struct {
	db      *sql.DB
	session string
	seq     int64
}

// Open opens or creates the database at path and migrates it to the latest
// schema.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrJournal, path, err)
	}
	db.SetMaxOpenConns(1)
	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("%w: migrations source: %w", ErrJournal, err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("%w: sqlite driver: %w", ErrJournal, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("%w: migrate: %w", ErrJournal, err)
	}
	// m is not closed; closing it would close db.
	m.Log = migrateLogger{}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: migration up: %w", ErrJournal, err)
	}
	return nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	logging.Logger().Debug(fmt.Sprintf("journal: migrate: "+format, v...))
}

func (migrateLogger) Verbose() bool { return false }

// Version returns the schema version.
func (j *Journal) Version() (uint, error) {
	var v uint
	if err := j.db.QueryRow(`SELECT version FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("%w: schema version: %w", ErrJournal, err)
	}
	return v, nil
}

// Begin starts a new session and makes it current. It returns the session
// ID.
func (j *Journal) Begin(label string) (string, error) {
	id := uuid.NewString()
	_, err := j.db.Exec(`INSERT INTO sessions (id, label, started_at) VALUES (?, ?, ?)`,
		id, label, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("%w: begin session: %w", ErrJournal, err)
	}
	j.session = id
	j.seq = 0
	logging.Logger().Info("journal: session started", "id", id, "label", label)
	return id, nil
}

// Session returns the current session ID.
func (j *Journal) Session() string { return j.session }

// Record appends r to the current session. A zero Seq is replaced by the
// next sequence number.
func (j *Journal) Record(r FrameRecord) error {
	if j.session == "" {
		return ErrNoSession
	}
	if r.Seq == 0 {
		j.seq++
		r.Seq = j.seq
	} else {
		j.seq = r.Seq
	}
	_, err := j.db.Exec(`INSERT INTO frames
		(session_id, seq, now, predicted, interval, outcome, drawable, levels, populate_ns, wait_ns, outstanding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.session, r.Seq, r.Now, r.Predicted, r.Interval, r.Outcome.String(), r.Drawable, r.Levels,
		r.Populate.Nanoseconds(), r.Wait.Nanoseconds(), r.Outstanding)
	if err != nil {
		return fmt.Errorf("%w: record frame %d: %w", ErrJournal, r.Seq, err)
	}
	return nil
}

// SessionInfo describes a stored session.
type SessionInfo struct {
	ID        string
	Label     string
	StartedAt time.Time
	Frames    int
}

// Sessions lists stored sessions, oldest first.
func (j *Journal) Sessions() ([]SessionInfo, error) {
	rows, err := j.db.Query(`SELECT s.id, s.label, s.started_at, COUNT(f.seq)
		FROM sessions s LEFT JOIN frames f ON f.session_id = s.id
		GROUP BY s.id ORDER BY s.started_at, s.rowid`)
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %w", ErrJournal, err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var (
			s       SessionInfo
			started string
		)
		if err := rows.Scan(&s.ID, &s.Label, &started, &s.Frames); err != nil {
			return nil, fmt.Errorf("%w: scan session: %w", ErrJournal, err)
		}
		s.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list sessions: %w", ErrJournal, err)
	}
	return out, nil
}

// Records returns the frames of session in sequence order.
func (j *Journal) Records(session string) ([]FrameRecord, error) {
	rows, err := j.db.Query(`SELECT seq, now, predicted, interval, outcome, drawable, levels,
		populate_ns, wait_ns, outstanding FROM frames WHERE session_id = ? ORDER BY seq`, session)
	if err != nil {
		return nil, fmt.Errorf("%w: query frames: %w", ErrJournal, err)
	}
	defer rows.Close()

	var out []FrameRecord
	for rows.Next() {
		var (
			r                FrameRecord
			outcome          string
			populate, waitNs int64
		)
		if err := rows.Scan(&r.Seq, &r.Now, &r.Predicted, &r.Interval, &outcome, &r.Drawable, &r.Levels,
			&populate, &waitNs, &r.Outstanding); err != nil {
			return nil, fmt.Errorf("%w: scan frame: %w", ErrJournal, err)
		}
		if r.Outcome, err = ParseOutcome(outcome); err != nil {
			return nil, fmt.Errorf("%w: frame %d: %w", ErrJournal, r.Seq, err)
		}
		r.Populate = time.Duration(populate)
		r.Wait = time.Duration(waitNs)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query frames: %w", ErrJournal, err)
	}
	return out, nil
}

// Latest returns the most recent session's ID, or "" if none.
func (j *Journal) Latest() (string, error) {
	sessions, err := j.Sessions()
	if err != nil || len(sessions) == 0 {
		return "", err
	}
	return sessions[len(sessions)-1].ID, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", ErrJournal, err)
	}
	return nil
}
