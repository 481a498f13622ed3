package krypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltLengthBytes is the enforced KDF salt length.
	SaltLengthBytes = 16

	// DefaultIterations is the PBKDF2 iteration count for newly written
	// wraps. Tuned for roughly 100-400ms of derivation on current hardware.
	DefaultIterations = 310_000

	// MinIterations is the floor below which stored iteration counts are
	// never lowered.
	MinIterations = 150_000
)

// DeriveKey derives a 256-bit key from a text secret using PBKDF2-SHA256.
func DeriveKey(secret string, salt []byte, iterations int) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("secret is required")
	}
	if len(salt) != SaltLengthBytes {
		return nil, fmt.Errorf("salt must be %d bytes", SaltLengthBytes)
	}
	if iterations < MinIterations {
		return nil, fmt.Errorf("iteration count %d below floor %d", iterations, MinIterations)
	}
	return pbkdf2.Key([]byte(secret), salt, iterations, KeySize, sha256.New), nil
}

// NewRandomSalt returns a cryptographically secure random KDF salt.
func NewRandomSalt() ([]byte, error) {
	salt := make([]byte, SaltLengthBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// RandomBytes returns n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, errors.New("byte count must be positive")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate random bytes: %w", err)
	}
	return b, nil
}
