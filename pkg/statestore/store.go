package statestore

// Store is durable per-node key/value state that outlives process restarts.
// It backs the flag-guarded one-time operations (format, shared-edits init,
// cluster directory creation) and small bits of node identity (java.home,
// node.id, managed host entries).
//
// Every Set is committed before it returns; a crash immediately after a
// guarded operation succeeds must not lose the flag.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)

	// Set stores key=value durably.
	Set(key, value string) error

	// Unset removes key. Removing an absent key is a no-op.
	Unset(key string) error

	// Flag reports whether the named one-time operation has completed.
	Flag(key string) (bool, error)

	// SetFlag durably records the named one-time operation as completed.
	// Flags are never cleared by this system; only manual intervention.
	SetFlag(key string) error

	// GetRange returns all entries whose key starts with prefix, with the
	// prefix stripped from the returned keys.
	GetRange(prefix string) (map[string]string, error)

	// UnsetRange removes the given keys under prefix.
	UnsetRange(prefix string, keys ...string) error

	// Close releases the underlying database.
	Close() error
}
