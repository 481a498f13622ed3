package krypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// IVSize is the AES-GCM IV length in bytes (96 bits).
const IVSize = 12

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// EncryptAESGCM encrypts plaintext using AES-256-GCM, returning a fresh IV and
// the ciphertext. The IV is generated per call and is never reused with the
// same key. The associated data is authenticated but not encrypted.
func EncryptAESGCM(key, plaintext, aad []byte) (iv, ciphertext []byte, err error) {
	if len(key) != KeySize {
		return nil, nil, errors.New("aes-gcm requires a 32-byte key")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("create gcm: %w", err)
	}

	iv = make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, fmt.Errorf("generate iv: %w", err)
	}

	ciphertext = gcm.Seal(nil, iv, plaintext, aad)
	return iv, ciphertext, nil
}

// DecryptAESGCM decrypts the ciphertext using AES-256-GCM. It fails when the
// ciphertext or the associated data has been altered.
func DecryptAESGCM(key, iv, ciphertext, aad []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, errors.New("aes-gcm requires a 32-byte key")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	if len(iv) != IVSize {
		return nil, errors.New("invalid iv size")
	}

	plaintext, err := gcm.Open(nil, iv, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
