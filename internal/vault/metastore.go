package vault

import (
	"encoding/json"
	"fmt"

	"github.com/karim-saade/daybook/store"
)

// MetaKey is the single persistence key under which vault metadata lives.
const MetaKey = "vault.meta"

// MetaStore persists Metadata through an externally supplied key-value
// collaborator. No cryptographic logic lives here.
type MetaStore struct {
	kv store.KV
}

// NewMetaStore binds a metadata store to a key-value collaborator.
func NewMetaStore(kv store.KV) *MetaStore {
	return &MetaStore{kv: kv}
}

// Load reads the persisted metadata. It returns (nil, nil) when the vault has
// never been enabled.
func (ms *MetaStore) Load() (*Metadata, error) {
	data, ok, err := ms.kv.Get(MetaKey)
	if err != nil {
		return nil, fmt.Errorf("load vault metadata: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode vault metadata: %w", err)
	}
	return &meta, nil
}

// Save persists the metadata.
func (ms *MetaStore) Save(meta *Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode vault metadata: %w", err)
	}
	if err := ms.kv.Set(MetaKey, data); err != nil {
		return fmt.Errorf("save vault metadata: %w", err)
	}
	return nil
}

// IsEnabled reports whether the vault has completed first-time setup.
func (ms *MetaStore) IsEnabled() (bool, error) {
	meta, err := ms.Load()
	if err != nil {
		return false, err
	}
	return meta != nil && meta.Enabled && meta.HasWraps(), nil
}
