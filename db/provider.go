// Package db holds the key-value backends the chain store runs on.
package db

// DatabaseProvider abstracts the low-level database operations so the chain
// store works the same on every backend.
type DatabaseProvider interface {
	// Get retrieves a value by key, nil when the key is absent
	Get(key []byte) ([]byte, error)

	// Put stores a key-value pair
	Put(key, value []byte) error

	// Delete removes a key-value pair
	Delete(key []byte) error

	// Has checks if a key exists
	Has(key []byte) (bool, error)

	// IteratePrefix visits keys with the given prefix in ascending order.
	// The callback returns false to stop iteration.
	IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error

	// Close closes the database connection
	Close() error

	// Batch returns a new batch for atomic operations
	Batch() DatabaseBatch
}

// DatabaseBatch provides atomic batch operations
type DatabaseBatch interface {
	Put(key, value []byte)
	Delete(key []byte)

	// Write commits all operations in the batch
	Write() error

	Reset()
	Close()
}
