package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresKVStore backs the typed repositories with a single kv_store table:
//
//	CREATE TABLE kv_store (
//	    key        TEXT PRIMARY KEY,
//	    value      BYTEA NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type PostgresKVStore struct {
	db *sqlx.DB
}

func NewPostgresKVStore(db *sqlx.DB) *PostgresKVStore {
	return &PostgresKVStore{db: db}
}

func (s *PostgresKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var value []byte
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv_store WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kv store: get %q failed: %w", key, err)
	}
	return value, true, nil
}

func (s *PostgresKVStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at`

	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("kv store: set %q failed: %w", key, err)
	}
	return nil
}

func (s *PostgresKVStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("kv store: delete %q failed: %w", key, err)
	}
	return nil
}
