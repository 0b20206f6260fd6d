package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fundlens/backend/internal/contracts"
)

const pgUniqueViolation = "23505"

// PostgresStore persists snapshots in fundlens.snapshots
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const pgSelectColumns = `id, rows, source, checksum, uploaded, note, active, deleted`

// Add implements Store.
// 체크섬 중복 확인과 삽입은 단일 INSERT ... ON CONFLICT 문으로 원자적으로 처리
func (s *PostgresStore) Add(ctx context.Context, snap contracts.Snapshot, id, note string) (string, error) {
	prepared, err := prepare(snap, id, note)
	if err != nil {
		return "", err
	}

	rowsJSON, err := json.Marshal(prepared.Rows)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rows: %w", err)
	}

	query := `
		INSERT INTO fundlens.snapshots (id, rows, source, checksum, uploaded, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (checksum) DO UPDATE SET deleted = FALSE
		RETURNING id
	`

	var got string
	err = s.pool.QueryRow(ctx, query,
		prepared.ID, rowsJSON, prepared.Source, prepared.Checksum, prepared.Uploaded, prepared.Note,
	).Scan(&got)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return "", ErrIDConflict
	}
	if err != nil {
		return "", fmt.Errorf("failed to add snapshot: %w", err)
	}

	return got, nil
}

// List implements Store
func (s *PostgresStore) List(ctx context.Context) ([]contracts.Snapshot, error) {
	query := `SELECT ` + pgSelectColumns + `
		FROM fundlens.snapshots
		WHERE NOT deleted
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]contracts.Snapshot, 0)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
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
func (s *PostgresStore) Get(ctx context.Context, id string) (*contracts.Snapshot, error) {
	query := `SELECT ` + pgSelectColumns + ` FROM fundlens.snapshots WHERE id = $1`

	snap, err := scanSnapshot(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// SetActive implements Store.
// clear → set 두 단계를 하나의 트랜잭션으로 묶음 (부분 unique 인덱스가 최종 상태를 보장)
func (s *PostgresStore) SetActive(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `UPDATE fundlens.snapshots SET active = FALSE WHERE active`); err != nil {
		return fmt.Errorf("failed to clear active snapshot: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE fundlens.snapshots SET active = TRUE WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return fmt.Errorf("failed to activate snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit activation: %w", err)
	}
	return nil
}

// GetActive implements Store
func (s *PostgresStore) GetActive(ctx context.Context) (*contracts.Snapshot, error) {
	query := `SELECT ` + pgSelectColumns + `
		FROM fundlens.snapshots
		WHERE active AND NOT deleted
		LIMIT 1
	`

	snap, err := scanSnapshot(s.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// SoftDelete implements Store
func (s *PostgresStore) SoftDelete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE fundlens.snapshots SET active = FALSE, deleted = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSnapshot(row pgx.Row) (*contracts.Snapshot, error) {
	var snap contracts.Snapshot
	var rowsJSON []byte

	err := row.Scan(
		&snap.ID, &rowsJSON, &snap.Source, &snap.Checksum, &snap.Uploaded,
		&snap.Note, &snap.Active, &snap.Deleted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	if err := json.Unmarshal(rowsJSON, &snap.Rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}

	return &snap, nil
}
