// Package store provides the key-value persistence collaborators the vault
// core writes its metadata through. The vault treats them as opaque get/set
// stores and performs no schema migration itself.
package store

// KV is a minimal key-value store for small JSON-serializable values.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (value []byte, ok bool, err error)
	// Set stores or replaces the value for a key.
	Set(key string, value []byte) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error
}
