// Package storage provides the persistence substrate behind the card
// cache: a byte store addressed by a logical key.
package storage

// Store is a minimal key-value byte store. The card cache serializes its
// whole state as one blob under a single fixed key, so implementations only
// need point reads and writes.
//
// Implementations must make single Get/Set calls safe for concurrent use;
// no coordination beyond that is expected of them.
type Store interface {
	// Get returns the value for key. The second result is false when the
	// key is absent.
	Get(key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Close releases the underlying resources.
	Close() error
}
