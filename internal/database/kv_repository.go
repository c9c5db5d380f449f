package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// KVRepository stores string values in the kv_store table
type KVRepository struct {
	db *sqlx.DB
}

// NewKVRepository creates a new repository instance
func NewKVRepository(db *sqlx.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the value stored under key
func (r *KVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	query := r.db.Rebind("SELECT store_value FROM kv_store WHERE store_key = ?")
	err := r.db.GetContext(ctx, &value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value stored under key
func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	// ON CONFLICT works for both sqlite (3.24+) and postgres
	query := r.db.Rebind(`
		INSERT INTO kv_store (store_key, store_value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (store_key) DO UPDATE SET
			store_value = excluded.store_value,
			updated_at = CURRENT_TIMESTAMP
	`)
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying connection
func (r *KVRepository) Close() error {
	return r.db.Close()
}
