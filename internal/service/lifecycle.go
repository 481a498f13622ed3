package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/karim-saade/daybook/auth"
	"github.com/karim-saade/daybook/internal/vault"
	"github.com/karim-saade/daybook/krypto"
)

// ErrAlreadyEnabled is returned when Enable runs against a vault that has
// already completed setup.
var ErrAlreadyEnabled = errors.New("vault already enabled; unlock instead")

// Enable performs first-time setup: it generates a fresh DEK, wraps it
// independently under a passphrase-derived KEK and a recovery-code-derived
// KEK, persists the metadata, and leaves the session unlocked. The returned
// recovery code is shown to the user once and never stored in retrievable
// form. A weak passphrase fails before anything is generated or persisted.
func (s *Service) Enable(passphrase string) (recoveryCode string, err error) {
	if err := auth.ValidatePassphrase(passphrase); err != nil {
		return "", err
	}

	existing, err := s.meta.Load()
	if err != nil {
		return "", err
	}
	if existing != nil && existing.Enabled && existing.HasWraps() {
		return "", ErrAlreadyEnabled
	}

	dek, err := krypto.RandomBytes(krypto.KeySize)
	if err != nil {
		return "", fmt.Errorf("generate dek: %w", err)
	}

	passSalt, err := krypto.NewRandomSalt()
	if err != nil {
		return "", err
	}
	passKEK, err := krypto.DeriveKey(passphrase, passSalt, krypto.DefaultIterations)
	if err != nil {
		return "", fmt.Errorf("derive passphrase kek: %w", err)
	}
	defer krypto.Zeroize(passKEK)

	code, err := vault.NewRecoveryCode()
	if err != nil {
		return "", err
	}
	normalized, err := vault.NormalizeRecoveryCode(code)
	if err != nil {
		return "", fmt.Errorf("normalize recovery code: %w", err)
	}
	recSalt, err := krypto.NewRandomSalt()
	if err != nil {
		return "", err
	}
	recKEK, err := krypto.DeriveKey(normalized, recSalt, krypto.DefaultIterations)
	if err != nil {
		return "", fmt.Errorf("derive recovery kek: %w", err)
	}
	defer krypto.Zeroize(recKEK)

	passWrap, err := vault.WrapDEK(passKEK, dek)
	if err != nil {
		return "", err
	}
	recWrap, err := vault.WrapDEK(recKEK, dek)
	if err != nil {
		return "", err
	}

	meta := &vault.Metadata{
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
		KDF: vault.KDFConfig{
			Algorithm:  "PBKDF2",
			Hash:       "SHA-256",
			Iterations: krypto.DefaultIterations,
			Salt:       passSalt,
		},
		Recovery: vault.RecoveryConfig{
			Iterations: krypto.DefaultIterations,
			Salt:       recSalt,
		},
		Wraps: vault.Wraps{
			Passphrase: passWrap,
			Recovery:   recWrap,
		},
		Cipher:      vault.DefaultCipher(),
		IdleMinutes: s.idleMinutes,
	}

	if err := s.meta.Save(meta); err != nil {
		krypto.Zeroize(dek)
		return "", err
	}

	s.mu.Lock()
	s.cacheDEK(dek, meta.IdleMinutes)
	s.mu.Unlock()

	return code, nil
}

// UnlockWithPassphrase derives the KEK from the stored passphrase parameters
// and unwraps the DEK. On ErrWrongSecret the metadata and session are left
// exactly as before.
func (s *Service) UnlockWithPassphrase(passphrase string) error {
	meta, err := s.loadEnabled()
	if err != nil {
		return err
	}

	kek, err := krypto.DeriveKey(passphrase, meta.KDF.Salt, meta.KDF.Iterations)
	if err != nil {
		return fmt.Errorf("derive passphrase kek: %w", err)
	}
	defer krypto.Zeroize(kek)

	dek, err := vault.UnwrapDEK(kek, meta.Wraps.Passphrase)
	if err != nil {
		return err
	}

	s.upgradeIterations(meta, passphrase, dek)

	s.mu.Lock()
	s.cacheDEK(dek, meta.IdleMinutes)
	s.mu.Unlock()
	return nil
}

// UnlockWithRecoveryCode is the recovery-path twin of UnlockWithPassphrase.
func (s *Service) UnlockWithRecoveryCode(code string) error {
	meta, err := s.loadEnabled()
	if err != nil {
		return err
	}

	normalized, err := vault.NormalizeRecoveryCode(code)
	if err != nil {
		return fmt.Errorf("%w: %v", vault.ErrWrongSecret, err)
	}

	kek, err := krypto.DeriveKey(normalized, meta.Recovery.Salt, meta.Recovery.Iterations)
	if err != nil {
		return fmt.Errorf("derive recovery kek: %w", err)
	}
	defer krypto.Zeroize(kek)

	dek, err := vault.UnwrapDEK(kek, meta.Wraps.Recovery)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cacheDEK(dek, meta.IdleMinutes)
	s.mu.Unlock()
	return nil
}

// ChangePassphrase re-validates the old passphrase, rewraps the DEK under a
// fresh salt and KEK for the new one, and persists the updated passphrase
// parameters. The recovery wrap is untouched. The stored iteration count
// never decreases.
func (s *Service) ChangePassphrase(oldPassphrase, newPassphrase string) error {
	if err := auth.ValidatePassphrase(newPassphrase); err != nil {
		return err
	}

	meta, err := s.loadEnabled()
	if err != nil {
		return err
	}

	oldKEK, err := krypto.DeriveKey(oldPassphrase, meta.KDF.Salt, meta.KDF.Iterations)
	if err != nil {
		return fmt.Errorf("derive old kek: %w", err)
	}
	defer krypto.Zeroize(oldKEK)

	dek, err := vault.UnwrapDEK(oldKEK, meta.Wraps.Passphrase)
	if err != nil {
		return err
	}

	iterations := max(meta.KDF.Iterations, krypto.DefaultIterations)
	newSalt, err := krypto.NewRandomSalt()
	if err != nil {
		krypto.Zeroize(dek)
		return err
	}
	newKEK, err := krypto.DeriveKey(newPassphrase, newSalt, iterations)
	if err != nil {
		krypto.Zeroize(dek)
		return fmt.Errorf("derive new kek: %w", err)
	}
	defer krypto.Zeroize(newKEK)

	newWrap, err := vault.WrapDEK(newKEK, dek)
	if err != nil {
		krypto.Zeroize(dek)
		return err
	}

	meta.KDF.Iterations = iterations
	meta.KDF.Salt = newSalt
	meta.Wraps.Passphrase = newWrap

	if err := s.meta.Save(meta); err != nil {
		krypto.Zeroize(dek)
		return err
	}

	s.mu.Lock()
	s.cacheDEK(dek, meta.IdleMinutes)
	s.mu.Unlock()
	return nil
}

// RegenerateRecoveryCode invalidates the old recovery code by rewrapping the
// cached DEK under a freshly generated one. Requires an unlocked session; the
// passphrase wrap is untouched. The new code is returned for one-time
// display.
func (s *Service) RegenerateRecoveryCode() (string, error) {
	meta, err := s.loadEnabled()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.dek == nil {
		s.mu.Unlock()
		return "", vault.ErrLocked
	}
	dek := make([]byte, len(s.dek))
	copy(dek, s.dek)
	s.mu.Unlock()
	defer krypto.Zeroize(dek)

	code, err := vault.NewRecoveryCode()
	if err != nil {
		return "", err
	}
	normalized, err := vault.NormalizeRecoveryCode(code)
	if err != nil {
		return "", fmt.Errorf("normalize recovery code: %w", err)
	}

	iterations := max(meta.Recovery.Iterations, krypto.DefaultIterations)
	salt, err := krypto.NewRandomSalt()
	if err != nil {
		return "", err
	}
	kek, err := krypto.DeriveKey(normalized, salt, iterations)
	if err != nil {
		return "", fmt.Errorf("derive recovery kek: %w", err)
	}
	defer krypto.Zeroize(kek)

	wrap, err := vault.WrapDEK(kek, dek)
	if err != nil {
		return "", err
	}

	meta.Recovery.Iterations = iterations
	meta.Recovery.Salt = salt
	meta.Wraps.Recovery = wrap

	if err := s.meta.Save(meta); err != nil {
		return "", err
	}
	return code, nil
}

// loadEnabled loads metadata and maps the never-enabled case to
// vault.ErrNotEnabled.
func (s *Service) loadEnabled() (*vault.Metadata, error) {
	meta, err := s.meta.Load()
	if err != nil {
		return nil, err
	}
	if meta == nil || !meta.Enabled || !meta.HasWraps() {
		return nil, vault.ErrNotEnabled
	}
	return meta, nil
}

// upgradeIterations rewraps the passphrase path at the current default
// iteration count when the stored count has fallen below it. Runs only after
// a successful passphrase unlock; failure to persist is logged and never
// surfaced, since the unlock itself already succeeded.
func (s *Service) upgradeIterations(meta *vault.Metadata, passphrase string, dek []byte) {
	if meta.KDF.Iterations >= krypto.DefaultIterations {
		return
	}

	salt, err := krypto.NewRandomSalt()
	if err != nil {
		s.log.Warnf("kdf upgrade skipped: %v", err)
		return
	}
	kek, err := krypto.DeriveKey(passphrase, salt, krypto.DefaultIterations)
	if err != nil {
		s.log.Warnf("kdf upgrade skipped: %v", err)
		return
	}
	defer krypto.Zeroize(kek)

	wrap, err := vault.WrapDEK(kek, dek)
	if err != nil {
		s.log.Warnf("kdf upgrade skipped: %v", err)
		return
	}

	meta.KDF.Iterations = krypto.DefaultIterations
	meta.KDF.Salt = salt
	meta.Wraps.Passphrase = wrap

	if err := s.meta.Save(meta); err != nil {
		s.log.Warnf("kdf upgrade not persisted: %v", err)
		return
	}
	s.log.Infof("passphrase kdf upgraded to %d iterations", krypto.DefaultIterations)
}
