package service

import (
	"fmt"

	"github.com/karim-saade/daybook/internal/vault"
	"github.com/karim-saade/daybook/krypto"
)

// EncryptedField is a per-record ciphertext with the schema version its
// identity was bound under.
type EncryptedField struct {
	IV         vault.B64Bytes `json:"iv"`
	Ciphertext vault.B64Bytes `json:"ciphertext"`
	Version    int            `json:"version"`
}

// entryAAD binds ciphertext to exactly the record it belongs to. Pasting the
// ciphertext into a different record, or under a different version, fails
// decryption.
func entryAAD(table, entryID string, version int) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", table, entryID, version))
}

// EncryptEntry encrypts one sensitive record field under the session DEK.
// Fails with vault.ErrLocked when no session is unlocked.
func (s *Service) EncryptEntry(table, entryID string, version int, plaintext []byte) (EncryptedField, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dek == nil {
		return EncryptedField{}, vault.ErrLocked
	}

	iv, ciphertext, err := krypto.EncryptAESGCM(s.dek, plaintext, entryAAD(table, entryID, version))
	if err != nil {
		return EncryptedField{}, fmt.Errorf("encrypt entry: %w", err)
	}
	return EncryptedField{IV: iv, Ciphertext: ciphertext, Version: version}, nil
}

// DecryptEntry is the inverse of EncryptEntry. A tampered ciphertext or a
// mismatched record identity fails with vault.ErrAuthenticationFailed.
func (s *Service) DecryptEntry(table, entryID string, version int, field EncryptedField) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dek == nil {
		return nil, vault.ErrLocked
	}

	plaintext, err := krypto.DecryptAESGCM(s.dek, field.IV, field.Ciphertext, entryAAD(table, entryID, version))
	if err != nil {
		return nil, vault.ErrAuthenticationFailed
	}
	return plaintext, nil
}
