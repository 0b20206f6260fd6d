package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/wonny/fundlens/backend/internal/contracts"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id        TEXT PRIMARY KEY,
	rows_json TEXT NOT NULL,
	source    TEXT NOT NULL DEFAULT '',
	checksum  TEXT NOT NULL,
	uploaded  TEXT NOT NULL,
	note      TEXT NOT NULL DEFAULT '',
	active    INTEGER NOT NULL DEFAULT 0,
	deleted   INTEGER NOT NULL DEFAULT 0
);
CREATE UNIQUE INDEX IF NOT EXISTS snapshots_checksum_uq ON snapshots (checksum);
CREATE UNIQUE INDEX IF NOT EXISTS snapshots_single_active_uq ON snapshots (active)
	WHERE active = 1 AND deleted = 0;
`

const sqliteSelectColumns = `id, rows_json, source, checksum, uploaded, note, active, deleted`

// SQLiteStore persists snapshots in a local SQLite file (single-user mode)
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (and initialises) a SQLite store. path ":memory:" is allowed.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 단일 연결: 트랜잭션이 직렬화되고 :memory: DB가 연결마다 갈라지지 않음
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.Exec(sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Add implements Store
func (s *SQLiteStore) Add(ctx context.Context, snap contracts.Snapshot, id, note string) (string, error) {
	prepared, err := prepare(snap, id, note)
	if err != nil {
		return "", err
	}

	rowsJSON, err := json.Marshal(prepared.Rows)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rows: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM snapshots WHERE checksum = ?`, prepared.Checksum).Scan(&existing)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `UPDATE snapshots SET deleted = 0 WHERE id = ?`, existing); err != nil {
			return "", fmt.Errorf("failed to restore snapshot: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return "", fmt.Errorf("failed to commit: %w", err)
		}
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("failed to check checksum: %w", err)
	}

	var taken int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE id = ?`, prepared.ID).Scan(&taken)
	if err != nil {
		return "", fmt.Errorf("failed to check id: %w", err)
	}
	if taken > 0 {
		return "", ErrIDConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, rows_json, source, checksum, uploaded, note)
		VALUES (?, ?, ?, ?, ?, ?)`,
		prepared.ID, string(rowsJSON), prepared.Source, prepared.Checksum,
		prepared.Uploaded.UTC().Format(time.RFC3339Nano), prepared.Note,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return prepared.ID, nil
}

// List implements Store
func (s *SQLiteStore) List(ctx context.Context) ([]contracts.Snapshot, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+sqliteSelectColumns+` FROM snapshots WHERE deleted = 0 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]contracts.Snapshot, 0)
	for rows.Next() {
		snap, err := scanSQLiteSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return snapshots, nil
}

// Get implements Store
func (s *SQLiteStore) Get(ctx context.Context, id string) (*contracts.Snapshot, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+sqliteSelectColumns+` FROM snapshots WHERE id = ?`, id)
	snap, err := scanSQLiteSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return snap, err
}

// SetActive implements Store
func (s *SQLiteStore) SetActive(ctx context.Context, id string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE snapshots SET active = 0 WHERE active = 1`); err != nil {
		return fmt.Errorf("failed to clear active snapshot: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE snapshots SET active = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to activate snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit activation: %w", err)
	}
	return nil
}

// GetActive implements Store
func (s *SQLiteStore) GetActive(ctx context.Context) (*contracts.Snapshot, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+sqliteSelectColumns+` FROM snapshots WHERE active = 1 AND deleted = 0 LIMIT 1`)
	snap, err := scanSQLiteSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return snap, err
}

// SoftDelete implements Store
func (s *SQLiteStore) SoftDelete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `UPDATE snapshots SET active = 0, deleted = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type sqlScanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteSnapshot(row sqlScanner) (*contracts.Snapshot, error) {
	var snap contracts.Snapshot
	var rowsJSON, uploaded string

	err := row.Scan(
		&snap.ID, &rowsJSON, &snap.Source, &snap.Checksum, &uploaded,
		&snap.Note, &snap.Active, &snap.Deleted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	if snap.Uploaded, err = time.Parse(time.RFC3339Nano, uploaded); err != nil {
		return nil, fmt.Errorf("failed to parse upload time: %w", err)
	}
	if err := json.Unmarshal([]byte(rowsJSON), &snap.Rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}

	return &snap, nil
}
