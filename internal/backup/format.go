// Package backup defines the portable encrypted-export format and the
// standalone restore path used when importing on a machine whose vault
// session is not (or cannot be) unlocked.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/karim-saade/daybook/internal/vault"
	"github.com/karim-saade/daybook/krypto"
)

// HeaderType is the discriminator tagging a vault backup header.
const HeaderType = "daybook.vault.header"

// FormatVersion is the backup file format version.
const FormatVersion = 1

// payloadContext is the associated data bound into whole-export encryption.
// The export is one unit, so there is no per-record identity here.
const payloadContext = "vault:backup:v1"

// compressionGzip marks a payload whose plaintext was gzipped before
// encryption.
const compressionGzip = "gzip"

// Header is the safe subset of vault metadata embedded alongside an encrypted
// export. It contains everything needed to re-derive a KEK and unwrap the DEK
// elsewhere, and no plaintext secret.
type Header struct {
	Type     string               `json:"type"`
	Version  int                  `json:"version"`
	KDF      vault.KDFConfig      `json:"kdf"`
	Recovery vault.RecoveryConfig `json:"recovery"`
	Wraps    vault.Wraps          `json:"wraps"`
	Cipher   vault.CipherConfig   `json:"cipher"`
}

// NewHeader copies the portable fields out of vault metadata.
func NewHeader(meta *vault.Metadata) Header {
	return Header{
		Type:     HeaderType,
		Version:  FormatVersion,
		KDF:      meta.KDF,
		Recovery: meta.Recovery,
		Wraps:    meta.Wraps,
		Cipher:   meta.Cipher,
	}
}

// Payload is an encrypted whole-export blob.
type Payload struct {
	IV          vault.B64Bytes `json:"iv"`
	Ciphertext  vault.B64Bytes `json:"ciphertext"`
	Compression string         `json:"compression,omitempty"`
}

// File is a complete backup: header plus payload.
type File struct {
	Header  Header  `json:"header"`
	Payload Payload `json:"payload"`
}

// Write serializes the backup file as indented JSON.
func (f *File) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode backup file: %w", err)
	}
	return nil
}

// Read parses a backup file and checks its discriminator and version.
func Read(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode backup file: %w", err)
	}
	if f.Header.Type != HeaderType {
		return nil, fmt.Errorf("not a vault backup header: %q", f.Header.Type)
	}
	if f.Header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported backup format version %d", f.Header.Version)
	}
	return &f, nil
}

// SecretKind selects which restore secret a caller supplies.
type SecretKind int

const (
	// SecretPassphrase restores via the passphrase wrap.
	SecretPassphrase SecretKind = iota
	// SecretRecoveryCode restores via the recovery wrap.
	SecretRecoveryCode
)

// UnwrapDEK re-derives a KEK from the header's stored parameters and the
// user-supplied secret and unwraps the DEK, without touching any local
// session. Returns vault.ErrWrongSecret when the secret does not match.
func UnwrapDEK(hdr Header, kind SecretKind, secret string) ([]byte, error) {
	var (
		derived []byte
		err     error
	)
	switch kind {
	case SecretPassphrase:
		derived, err = krypto.DeriveKey(secret, hdr.KDF.Salt, hdr.KDF.Iterations)
	case SecretRecoveryCode:
		normalized, nerr := vault.NormalizeRecoveryCode(secret)
		if nerr != nil {
			return nil, fmt.Errorf("%w: %v", vault.ErrWrongSecret, nerr)
		}
		derived, err = krypto.DeriveKey(normalized, hdr.Recovery.Salt, hdr.Recovery.Iterations)
	default:
		return nil, fmt.Errorf("unknown secret kind %d", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("derive kek: %w", err)
	}
	defer krypto.Zeroize(derived)

	wrap := hdr.Wraps.Passphrase
	if kind == SecretRecoveryCode {
		wrap = hdr.Wraps.Recovery
	}
	return vault.UnwrapDEK(derived, wrap)
}

// EncryptPayload compresses and encrypts a whole export under the DEK.
func EncryptPayload(dek, plaintext []byte) (Payload, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(plaintext); err != nil {
		return Payload{}, fmt.Errorf("compress payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return Payload{}, fmt.Errorf("compress payload: %w", err)
	}

	iv, ciphertext, err := krypto.EncryptAESGCM(dek, buf.Bytes(), []byte(payloadContext))
	if err != nil {
		return Payload{}, fmt.Errorf("encrypt payload: %w", err)
	}
	return Payload{IV: iv, Ciphertext: ciphertext, Compression: compressionGzip}, nil
}

// DecryptPayload decrypts a whole export with an already-unwrapped DEK,
// whether it came from a live session or from UnwrapDEK. Tampered input
// returns vault.ErrAuthenticationFailed.
func DecryptPayload(p Payload, dek []byte) ([]byte, error) {
	compressed, err := krypto.DecryptAESGCM(dek, p.IV, p.Ciphertext, []byte(payloadContext))
	if err != nil {
		return nil, vault.ErrAuthenticationFailed
	}
	if p.Compression == "" {
		return compressed, nil
	}
	if p.Compression != compressionGzip {
		return nil, fmt.Errorf("unsupported payload compression %q", p.Compression)
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	defer zr.Close()

	plaintext, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	return plaintext, nil
}
