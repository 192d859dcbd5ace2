package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/worktime/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS eras (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	description TEXT    NOT NULL DEFAULT '',
	current     INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS periods (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	era_id   INTEGER NOT NULL REFERENCES eras(id),
	mode     TEXT    NOT NULL DEFAULT '',
	start_at INTEGER NOT NULL,
	end_at   INTEGER
);
CREATE INDEX IF NOT EXISTS periods_era_start ON periods(era_id, start_at);
CREATE TABLE IF NOT EXISTS totals (
	era_id     INTEGER NOT NULL REFERENCES eras(id),
	mode       TEXT    NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	PRIMARY KEY (era_id, mode)
);
CREATE TABLE IF NOT EXISTS adjustments (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	era_id   INTEGER NOT NULL REFERENCES eras(id),
	mode     TEXT    NOT NULL,
	delta_ms INTEGER NOT NULL,
	at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS adjustments_era_at ON adjustments(era_id, at);
CREATE TABLE IF NOT EXISTS settings (
	name  TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite-backed store.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, storageErr(err, "create data dir")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storageErr(err, "open sqlite %q", path)
	}
	// A single connection keeps ":memory:" databases shared and serialises
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, storageErr(err, "set WAL mode")
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, storageErr(err, "enable foreign keys")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, storageErr(err, "create schema")
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Eras
// =============================================================================

func (s *SQLiteStore) CurrentEra(ctx context.Context) (*Era, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	era, err := scanEra(s.db.QueryRowContext(ctx,
		"SELECT id, description, current, created_at FROM eras WHERE current = 1 ORDER BY id DESC LIMIT 1"))
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeEraNotFound, "no current era")
	}
	if err != nil {
		return nil, storageErr(err, "get current era")
	}
	return era, nil
}

func (s *SQLiteStore) CreateEra(ctx context.Context, description string, created time.Time) (*Era, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr(err, "begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE eras SET current = 0 WHERE current = 1"); err != nil {
		return nil, storageErr(err, "archive eras")
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO eras (description, current, created_at) VALUES (?, 1, ?)",
		description, created.UnixMilli())
	if err != nil {
		return nil, storageErr(err, "insert era")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storageErr(err, "era id")
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr(err, "commit")
	}
	return &Era{ID: id, Description: description, Current: true, Created: fromMillis(created.UnixMilli())}, nil
}

func (s *SQLiteStore) SetCurrentEra(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err, "begin")
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM eras WHERE id = ?", id).Scan(&exists); err != nil {
		return storageErr(err, "look up era %d", id)
	}
	if exists == 0 {
		return eraNotFound(id)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE eras SET current = (id = ?)", id); err != nil {
		return storageErr(err, "switch era")
	}
	if err := tx.Commit(); err != nil {
		return storageErr(err, "commit")
	}
	return nil
}

func (s *SQLiteStore) ListEras(ctx context.Context) ([]Era, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, description, current, created_at FROM eras ORDER BY id")
	if err != nil {
		return nil, storageErr(err, "list eras")
	}
	defer rows.Close()

	var eras []Era
	for rows.Next() {
		era, err := scanEra(rows)
		if err != nil {
			return nil, storageErr(err, "scan era")
		}
		eras = append(eras, *era)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "list eras")
	}
	return eras, nil
}

// =============================================================================
// Periods
// =============================================================================

func (s *SQLiteStore) OpenPeriod(ctx context.Context, eraID int64) (*Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanPeriod(s.db.QueryRowContext(ctx,
		"SELECT id, era_id, mode, start_at, end_at FROM periods WHERE era_id = ? AND end_at IS NULL ORDER BY start_at DESC, id DESC LIMIT 1",
		eraID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err, "get open period")
	}
	return p, nil
}

func (s *SQLiteStore) StartPeriod(ctx context.Context, eraID int64, mode string, start time.Time) (*Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO periods (era_id, mode, start_at) VALUES (?, ?, ?)",
		eraID, mode, start.UnixMilli())
	if err != nil {
		return nil, storageErr(err, "start period")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storageErr(err, "period id")
	}
	return &Period{ID: id, EraID: eraID, Mode: mode, Start: fromMillis(start.UnixMilli())}, nil
}

func (s *SQLiteStore) EndPeriod(ctx context.Context, id int64, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE periods SET end_at = ? WHERE id = ?", end.UnixMilli(), id)
	if err != nil {
		return storageErr(err, "end period %d", id)
	}
	return requireRow(res, "period %d not found", id)
}

func (s *SQLiteStore) MovePeriod(ctx context.Context, id, eraID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE periods SET era_id = ? WHERE id = ?", eraID, id)
	if err != nil {
		return storageErr(err, "move period %d", id)
	}
	return requireRow(res, "period %d not found", id)
}

func (s *SQLiteStore) PeriodsSince(ctx context.Context, eraID int64, since time.Time) ([]Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, era_id, mode, start_at, end_at FROM periods
		WHERE era_id = ? AND (end_at IS NULL OR end_at > ?)
		ORDER BY start_at, id`,
		eraID, since.UnixMilli())
	if err != nil {
		return nil, storageErr(err, "list periods")
	}
	defer rows.Close()

	var periods []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, storageErr(err, "scan period")
		}
		periods = append(periods, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "list periods")
	}
	return periods, nil
}

// =============================================================================
// Totals and adjustments
// =============================================================================

func (s *SQLiteStore) AddElapsed(ctx context.Context, eraID int64, mode string, delta time.Duration) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageErr(err, "begin")
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx,
		"SELECT elapsed_ms FROM totals WHERE era_id = ? AND mode = ?", eraID, mode).Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return 0, storageErr(err, "get total %s", mode)
	}
	total := max(current+delta.Milliseconds(), 0)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO totals (era_id, mode, elapsed_ms) VALUES (?, ?, ?)
		ON CONFLICT(era_id, mode) DO UPDATE SET elapsed_ms = excluded.elapsed_ms`,
		eraID, mode, total); err != nil {
		return 0, storageErr(err, "update total %s", mode)
	}
	if err := tx.Commit(); err != nil {
		return 0, storageErr(err, "commit")
	}
	return time.Duration(total) * time.Millisecond, nil
}

func (s *SQLiteStore) Totals(ctx context.Context, eraID int64) (map[string]time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT mode, elapsed_ms FROM totals WHERE era_id = ?", eraID)
	if err != nil {
		return nil, storageErr(err, "list totals")
	}
	defer rows.Close()

	totals := make(map[string]time.Duration)
	for rows.Next() {
		var mode string
		var ms int64
		if err := rows.Scan(&mode, &ms); err != nil {
			return nil, storageErr(err, "scan total")
		}
		totals[mode] = time.Duration(ms) * time.Millisecond
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "list totals")
	}
	return totals, nil
}

func (s *SQLiteStore) AddAdjustment(ctx context.Context, adj Adjustment) (*Adjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO adjustments (era_id, mode, delta_ms, at) VALUES (?, ?, ?, ?)",
		adj.EraID, adj.Mode, adj.Delta.Milliseconds(), adj.Timestamp.UnixMilli())
	if err != nil {
		return nil, storageErr(err, "insert adjustment")
	}
	if adj.ID, err = res.LastInsertId(); err != nil {
		return nil, storageErr(err, "adjustment id")
	}
	adj.Delta = adj.Delta.Truncate(time.Millisecond)
	adj.Timestamp = fromMillis(adj.Timestamp.UnixMilli())
	return &adj, nil
}

func (s *SQLiteStore) AdjustmentsSince(ctx context.Context, eraID int64, since time.Time) ([]Adjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, era_id, mode, delta_ms, at FROM adjustments
		WHERE era_id = ? AND at >= ?
		ORDER BY at, id`,
		eraID, since.UnixMilli())
	if err != nil {
		return nil, storageErr(err, "list adjustments")
	}
	defer rows.Close()

	var adjs []Adjustment
	for rows.Next() {
		var a Adjustment
		var delta, at int64
		if err := rows.Scan(&a.ID, &a.EraID, &a.Mode, &delta, &at); err != nil {
			return nil, storageErr(err, "scan adjustment")
		}
		a.Delta = time.Duration(delta) * time.Millisecond
		a.Timestamp = fromMillis(at)
		adjs = append(adjs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "list adjustments")
	}
	return adjs, nil
}

// =============================================================================
// Settings
// =============================================================================

func (s *SQLiteStore) Settings(ctx context.Context) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT name, value FROM settings")
	if err != nil {
		return nil, storageErr(err, "list settings")
	}
	defer rows.Close()

	settings := make(map[string]bool)
	for rows.Next() {
		var name string
		var value bool
		if err := rows.Scan(&name, &value); err != nil {
			return nil, storageErr(err, "scan setting")
		}
		settings[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "list settings")
	}
	return settings, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, name string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name, value)
	if err != nil {
		return storageErr(err, "set %s", name)
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanEra(row scanner) (*Era, error) {
	var e Era
	var created int64
	if err := row.Scan(&e.ID, &e.Description, &e.Current, &created); err != nil {
		return nil, err
	}
	e.Created = fromMillis(created)
	return &e, nil
}

func scanPeriod(row scanner) (*Period, error) {
	var p Period
	var start int64
	var end sql.NullInt64
	if err := row.Scan(&p.ID, &p.EraID, &p.Mode, &start, &end); err != nil {
		return nil, err
	}
	p.Start = fromMillis(start)
	if end.Valid {
		p.End = fromMillis(end.Int64)
	}
	return &p, nil
}

func requireRow(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err, "rows affected")
	}
	if n == 0 {
		return errors.New(errors.ErrCodeNotFound, format, args...)
	}
	return nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
