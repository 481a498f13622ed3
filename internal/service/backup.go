package service

import (
	"github.com/karim-saade/daybook/internal/backup"
	"github.com/karim-saade/daybook/internal/vault"
)

// ExportHeader returns the portable header embedded alongside an encrypted
// backup. It contains no plaintext secret and does not require an unlocked
// session.
func (s *Service) ExportHeader() (backup.Header, error) {
	meta, err := s.loadEnabled()
	if err != nil {
		return backup.Header{}, err
	}
	return backup.NewHeader(meta), nil
}

// EncryptBackup encrypts a whole-database export under the session DEK.
func (s *Service) EncryptBackup(plaintext []byte) (backup.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dek == nil {
		return backup.Payload{}, vault.ErrLocked
	}
	return backup.EncryptPayload(s.dek, plaintext)
}

// DecryptBackupWithDEK decrypts a backup payload with the session DEK. For
// imports on a vault that is not unlocked, unwrap the DEK from the backup
// header via backup.UnwrapDEK and use backup.DecryptPayload directly.
func (s *Service) DecryptBackupWithDEK(p backup.Payload) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dek == nil {
		return nil, vault.ErrLocked
	}
	return backup.DecryptPayload(p, s.dek)
}
