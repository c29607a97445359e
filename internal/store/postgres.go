package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// pgDB is the slice of pgxpool.Pool the backend needs; pgxmock satisfies it too.
type pgDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	pgSelectDocument = `SELECT value FROM frontdesk_documents WHERE key = $1`
	pgUpsertDocument = `INSERT INTO frontdesk_documents (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
)

// PostgresKV stores documents in the frontdesk_documents table (see migrations).
type PostgresKV struct {
	db pgDB
}

// NewPostgresKV creates a PostgreSQL backend.
func NewPostgresKV(db pgDB) *PostgresKV {
	if db == nil {
		panic("store: postgres pool required")
	}
	return &PostgresKV{db: db}
}

// Get reads one document.
func (p *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(ctx, pgSelectDocument, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: postgres get %s: %w", key, err)
	}
	return value, nil
}

// Commit upserts every key in one transaction.
func (p *PostgresKV) Commit(ctx context.Context, writes map[string][]byte) error {
	if len(writes) == 0 {
		return nil
	}
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: postgres begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, k := range sortedKeys(writes) {
		if _, err := tx.Exec(ctx, pgUpsertDocument, k, writes[k]); err != nil {
			return fmt.Errorf("store: postgres upsert %s: %w", k, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: postgres commit: %w", err)
	}
	return nil
}
