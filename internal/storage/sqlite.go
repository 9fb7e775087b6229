package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sjawhar/screen-snark/internal/commentary"
)

// SQLiteStore keeps the history of dispatch attempts.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		dbPath = filepath.Join("data", "screen-snark.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS dispatches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			frame_count INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			status TEXT NOT NULL,
			tone TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT ''
		);
	`); err != nil {
		return fmt.Errorf("create dispatches table: %w", err)
	}

	if _, err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_dispatches_at ON dispatches(at)"); err != nil {
		return fmt.Errorf("create dispatches index: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// DispatchCompleted records d, logging instead of failing so the loop never
// depends on history.
func (s *SQLiteStore) DispatchCompleted(d commentary.Dispatch) {
	if _, err := s.RecordDispatch(d); err != nil {
		slog.Error("record dispatch failed", "status", d.Status, "error", err)
	}
}

// RecordDispatch stores d and returns its id. The timestamp keeps its
// location so dates group by the wall clock it was recorded in.
func (s *SQLiteStore) RecordDispatch(d commentary.Dispatch) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO dispatches(at, frame_count, duration_ms, status, tone, text, error) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		d.At.Format(time.RFC3339Nano),
		d.FrameCount,
		d.Duration.Milliseconds(),
		d.Status,
		d.Commentary.Tone,
		d.Commentary.Text,
		d.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("insert dispatch: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("dispatch last insert id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetDispatchesByDate(date string) ([]commentary.Dispatch, error) {
	rows, err := s.db.Query(
		`SELECT id, at, frame_count, duration_ms, status, tone, text, error
		 FROM dispatches
		 WHERE substr(at, 1, 10) = ?
		 ORDER BY at DESC, id DESC`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("query dispatches by date %s: %w", date, err)
	}
	defer func() { _ = rows.Close() }()

	dispatches := make([]commentary.Dispatch, 0, 16)
	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, err
		}
		dispatches = append(dispatches, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatch rows: %w", err)
	}

	return dispatches, nil
}

func (s *SQLiteStore) GetDispatch(id int64) (commentary.Dispatch, error) {
	row := s.db.QueryRow(
		`SELECT id, at, frame_count, duration_ms, status, tone, text, error FROM dispatches WHERE id = ?`,
		id,
	)
	d, err := scanDispatch(row)
	if err != nil {
		return commentary.Dispatch{}, fmt.Errorf("query dispatch %d: %w", id, err)
	}
	return d, nil
}

func (s *SQLiteStore) GetDates() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT substr(at, 1, 10) AS date FROM dispatches ORDER BY date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query dates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dates rows: %w", err)
	}

	return dates, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDispatch(row scanner) (commentary.Dispatch, error) {
	var d commentary.Dispatch
	var at string
	var durationMS int64
	if err := row.Scan(&d.ID, &at, &d.FrameCount, &durationMS, &d.Status, &d.Commentary.Tone, &d.Commentary.Text, &d.Error); err != nil {
		return commentary.Dispatch{}, err
	}

	parsed, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return commentary.Dispatch{}, fmt.Errorf("parse dispatch %d at: %w", d.ID, err)
	}
	d.At = parsed
	d.Duration = time.Duration(durationMS) * time.Millisecond

	return d, nil
}
