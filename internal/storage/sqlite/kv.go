package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// KVStore is a namespaced string key-value table. It backs the session
// manager's credential storage.
type KVStore struct {
	db        *sql.DB
	namespace string
}

// KV returns a key-value view over the kv table scoped to namespace.
func (s *SQLiteStore) KV(namespace string) *KVStore {
	return &KVStore{db: s.db, namespace: namespace}
}

// Get returns the value for key and whether it was present.
func (k *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := k.db.QueryRowContext(ctx,
		"SELECT item_value FROM kv WHERE namespace = ? AND item_key = ?",
		k.namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s/%s: %w", k.namespace, key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (k *KVStore) Set(ctx context.Context, key, value string) error {
	_, err := k.db.ExecContext(ctx,
		`INSERT INTO kv (namespace, item_key, item_value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, item_key) DO UPDATE SET item_value = excluded.item_value, updated_at = excluded.updated_at`,
		k.namespace, key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", k.namespace, key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (k *KVStore) Remove(ctx context.Context, key string) error {
	_, err := k.db.ExecContext(ctx, "DELETE FROM kv WHERE namespace = ? AND item_key = ?", k.namespace, key)
	if err != nil {
		return fmt.Errorf("failed to remove %s/%s: %w", k.namespace, key, err)
	}
	return nil
}
