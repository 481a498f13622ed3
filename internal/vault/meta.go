package vault

import (
	"fmt"
	"time"

	"github.com/karim-saade/daybook/krypto"
)

// B64Bytes is a byte slice that marshals to URL-safe unpadded base64 in JSON,
// so metadata and backup headers stay portable as plain text.
type B64Bytes []byte

// MarshalJSON implements json.Marshaler.
func (b B64Bytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + krypto.ToBase64URL(b) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *B64Bytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("b64 field must be a JSON string")
	}
	raw, err := krypto.FromBase64URL(string(data[1 : len(data)-1]))
	if err != nil {
		return fmt.Errorf("decode b64 field: %w", err)
	}
	*b = raw
	return nil
}

// KDFConfig describes the passphrase key-derivation parameters.
type KDFConfig struct {
	Algorithm  string   `json:"algorithm"` // "PBKDF2"
	Hash       string   `json:"hash"`      // "SHA-256"
	Iterations int      `json:"iterations"`
	Salt       B64Bytes `json:"salt"`
}

// RecoveryConfig describes the recovery-code key-derivation parameters. The
// algorithm and hash follow the passphrase path and are not stored twice.
type RecoveryConfig struct {
	Iterations int      `json:"iterations"`
	Salt       B64Bytes `json:"salt"`
}

// WrapBlob is a single KEK-wrapped copy of the DEK.
type WrapBlob struct {
	IV         B64Bytes `json:"iv"`
	Ciphertext B64Bytes `json:"ciphertext"`
}

// Wraps holds both wrapped-DEK blobs. Once the vault is enabled both are
// always present, and each can be rewritten independently of the other.
type Wraps struct {
	Passphrase WrapBlob `json:"passphrase"`
	Recovery   WrapBlob `json:"recovery"`
}

// CipherConfig records the AEAD parameters used for all vault ciphertext.
type CipherConfig struct {
	Algorithm string `json:"algorithm"` // "AES-GCM"
	IVLength  int    `json:"ivLength"`
	KeyBits   int    `json:"keyBits"`
}

// Metadata is the persisted, non-secret description of the vault. Both wraps
// decrypt under their respective KEKs to the same 32-byte DEK.
type Metadata struct {
	Enabled     bool           `json:"enabled"`
	CreatedAt   time.Time      `json:"createdAt"`
	KDF         KDFConfig      `json:"kdf"`
	Recovery    RecoveryConfig `json:"recovery"`
	Wraps       Wraps          `json:"wraps"`
	Cipher      CipherConfig   `json:"cipher"`
	IdleMinutes int            `json:"idleMinutes"`
}

// DefaultIdleMinutes is the idle auto-lock window applied at setup.
const DefaultIdleMinutes = 15

// DefaultCipher returns the cipher parameters for newly created vaults.
func DefaultCipher() CipherConfig {
	return CipherConfig{
		Algorithm: "AES-GCM",
		IVLength:  krypto.IVSize,
		KeyBits:   krypto.KeySize * 8,
	}
}

// HasWraps reports whether both wrapped-DEK blobs are present.
func (m *Metadata) HasWraps() bool {
	return len(m.Wraps.Passphrase.Ciphertext) > 0 && len(m.Wraps.Recovery.Ciphertext) > 0
}
