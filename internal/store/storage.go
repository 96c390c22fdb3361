// Package store persists session entries in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Storage keeps session entries in the local_storage table. It implements
// session.Storage.
type Storage struct {
	db *sql.DB
}

// New returns a Storage backed by db.
func New(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Load returns the entries present for keys. Absent keys are omitted.
func (s *Storage) Load(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	query := `SELECT key, value FROM local_storage WHERE key IN (?` + strings.Repeat(", ?", len(keys)-1) + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying local storage: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning local storage: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Save writes all entries in one transaction.
func (s *Storage) Save(ctx context.Context, entries map[string]string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for k, v := range entries {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO local_storage (key, value) VALUES (?, ?)
				 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
				k, v,
			)
			if err != nil {
				return fmt.Errorf("saving %q: %w", k, err)
			}
		}
		return nil
	})
}

// Delete removes keys in one transaction. Absent keys are not an error.
func (s *Storage) Delete(ctx context.Context, keys ...string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, k); err != nil {
				return fmt.Errorf("deleting %q: %w", k, err)
			}
		}
		return nil
	})
}

func (s *Storage) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
