package ports

import "context"

// KVStore is durable storage mapping a string key to a string value.
// Any store that survives a process restart satisfies it: a file, an
// embedded database, a remote database.
type KVStore interface {
	// Get returns the value stored at key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value at key, replacing any previous value, in a single write.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
