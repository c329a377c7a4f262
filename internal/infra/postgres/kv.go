package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS app_state (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// KV is a repository.KV backed by the app_state table.
type KV struct {
	db *pgxpool.Pool
	tx *Transactor
}

// NewKV creates a new KV.
func NewKV(db *pgxpool.Pool) *KV {
	return &KV{db: db, tx: NewTransactor(db)}
}

// Migrate creates the app_state table if it does not exist.
func (r *KV) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Get returns the stored document.
func (r *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRow(ctx, `SELECT value FROM app_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return value, nil
}

// Update locks the row for the duration of fn. A placeholder row is inserted
// first so concurrent writers to a new key also serialize on the lock.
func (r *KV) Update(ctx context.Context, key string, fn repository.UpdateFunc) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		inserted, err := tx.Exec(ctx, `
			INSERT INTO app_state (key, value)
			VALUES ($1, 'null'::jsonb)
			ON CONFLICT (key) DO NOTHING
		`, key)
		if err != nil {
			return fmt.Errorf("reserve: %w", err)
		}

		var current []byte
		err = tx.QueryRow(ctx, `SELECT value FROM app_state WHERE key = $1 FOR UPDATE`, key).Scan(&current)
		if err != nil {
			return fmt.Errorf("lock: %w", err)
		}
		if inserted.RowsAffected() == 1 {
			current = nil
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			if inserted.RowsAffected() == 1 {
				_, err = tx.Exec(ctx, `DELETE FROM app_state WHERE key = $1`, key)
				if err != nil {
					return fmt.Errorf("release: %w", err)
				}
			}
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE app_state
			SET value = $2::jsonb, updated_at = now()
			WHERE key = $1
		`, key, string(next))
		if err != nil {
			return fmt.Errorf("update: %w", err)
		}
		return nil
	})
}

// Delete removes a document.
func (r *KV) Delete(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM app_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Keys returns the sorted keys starting with prefix.
func (r *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT key FROM app_state WHERE starts_with(key, $1) ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect keys: %w", err)
	}
	return keys, nil
}
