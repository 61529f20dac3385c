package repository

import "context"

// KVStore is the string-keyed byte substrate the typed repositories sit on.
// Keeping the interface this small lets the engine run against Postgres in
// production and a plain map in tests.
type KVStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	Set(ctx context.Context, key string, value []byte) error

	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
}
