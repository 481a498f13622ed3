package backup_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/karim-saade/daybook/internal/backup"
	"github.com/karim-saade/daybook/internal/vault"
	"github.com/karim-saade/daybook/krypto"
)

// fixtureHeader builds a header whose wraps unwrap to the returned DEK with
// passphrase "open-sesame-8" and recovery code "0123-4567-....".
func fixtureHeader(t *testing.T) (backup.Header, []byte, string, string) {
	t.Helper()

	dek, _ := krypto.RandomBytes(krypto.KeySize)
	passphrase := "open-sesame-8"
	code := "0123-4567-89AB-CDEF-0123-4567-89AB-CDEF"

	passSalt, _ := krypto.NewRandomSalt()
	passKEK, err := krypto.DeriveKey(passphrase, passSalt, krypto.MinIterations)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	passWrap, err := vault.WrapDEK(passKEK, dek)
	if err != nil {
		t.Fatalf("WrapDEK: %v", err)
	}

	normalized, err := vault.NormalizeRecoveryCode(code)
	if err != nil {
		t.Fatalf("NormalizeRecoveryCode: %v", err)
	}
	recSalt, _ := krypto.NewRandomSalt()
	recKEK, err := krypto.DeriveKey(normalized, recSalt, krypto.MinIterations)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	recWrap, err := vault.WrapDEK(recKEK, dek)
	if err != nil {
		t.Fatalf("WrapDEK: %v", err)
	}

	hdr := backup.Header{
		Type:     backup.HeaderType,
		Version:  backup.FormatVersion,
		KDF:      vault.KDFConfig{Algorithm: "PBKDF2", Hash: "SHA-256", Iterations: krypto.MinIterations, Salt: passSalt},
		Recovery: vault.RecoveryConfig{Iterations: krypto.MinIterations, Salt: recSalt},
		Wraps:    vault.Wraps{Passphrase: passWrap, Recovery: recWrap},
		Cipher:   vault.DefaultCipher(),
	}
	return hdr, dek, passphrase, code
}

func TestUnwrapDEKBothPaths(t *testing.T) {
	hdr, dek, passphrase, code := fixtureHeader(t)

	got, err := backup.UnwrapDEK(hdr, backup.SecretPassphrase, passphrase)
	if err != nil {
		t.Fatalf("UnwrapDEK(passphrase): %v", err)
	}
	if !bytes.Equal(got, dek) {
		t.Fatal("passphrase path unwrapped a different DEK")
	}

	got, err = backup.UnwrapDEK(hdr, backup.SecretRecoveryCode, code)
	if err != nil {
		t.Fatalf("UnwrapDEK(recovery): %v", err)
	}
	if !bytes.Equal(got, dek) {
		t.Fatal("recovery path unwrapped a different DEK")
	}
}

func TestUnwrapDEKWrongSecret(t *testing.T) {
	hdr, _, _, _ := fixtureHeader(t)

	if _, err := backup.UnwrapDEK(hdr, backup.SecretPassphrase, "not-the-passphrase"); !errors.Is(err, vault.ErrWrongSecret) {
		t.Fatalf("wrong passphrase: got %v, want ErrWrongSecret", err)
	}
	if _, err := backup.UnwrapDEK(hdr, backup.SecretRecoveryCode, "FFFF-FFFF-FFFF-FFFF-FFFF-FFFF-FFFF-FFFF"); !errors.Is(err, vault.ErrWrongSecret) {
		t.Fatalf("wrong recovery code: got %v, want ErrWrongSecret", err)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	dek, _ := krypto.RandomBytes(krypto.KeySize)
	plaintext := bytes.Repeat([]byte("journal export "), 1000)

	payload, err := backup.EncryptPayload(dek, plaintext)
	if err != nil {
		t.Fatalf("EncryptPayload: %v", err)
	}
	if payload.Compression != "gzip" {
		t.Fatalf("compression = %q, want gzip", payload.Compression)
	}
	if len(payload.Ciphertext) >= len(plaintext) {
		t.Fatal("repetitive payload did not compress before encryption")
	}

	got, err := backup.DecryptPayload(payload, dek)
	if err != nil {
		t.Fatalf("DecryptPayload: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatal("payload round trip mismatch")
	}
}

func TestPayloadTamperDetection(t *testing.T) {
	dek, _ := krypto.RandomBytes(krypto.KeySize)
	payload, err := backup.EncryptPayload(dek, []byte("export"))
	if err != nil {
		t.Fatalf("EncryptPayload: %v", err)
	}

	tampered := payload
	tampered.Ciphertext = append([]byte(nil), payload.Ciphertext...)
	tampered.Ciphertext[0] ^= 0x01
	if _, err := backup.DecryptPayload(tampered, dek); !errors.Is(err, vault.ErrAuthenticationFailed) {
		t.Fatalf("tampered ciphertext: got %v, want ErrAuthenticationFailed", err)
	}

	tampered = payload
	tampered.IV = append([]byte(nil), payload.IV...)
	tampered.IV[0] ^= 0x01
	if _, err := backup.DecryptPayload(tampered, dek); !errors.Is(err, vault.ErrAuthenticationFailed) {
		t.Fatalf("tampered IV: got %v, want ErrAuthenticationFailed", err)
	}
}

func TestFileWriteReadRoundTrip(t *testing.T) {
	hdr, dek, _, _ := fixtureHeader(t)
	payload, err := backup.EncryptPayload(dek, []byte("export"))
	if err != nil {
		t.Fatalf("EncryptPayload: %v", err)
	}

	var buf bytes.Buffer
	f := backup.File{Header: hdr, Payload: payload}
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := backup.Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Header.Type != backup.HeaderType {
		t.Fatalf("header type = %q", got.Header.Type)
	}

	plaintext, err := backup.DecryptPayload(got.Payload, dek)
	if err != nil {
		t.Fatalf("DecryptPayload after round trip: %v", err)
	}
	if string(plaintext) != "export" {
		t.Fatalf("plaintext = %q", plaintext)
	}
}

func TestReadRejectsForeignHeader(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(`{"header":{"type":"something.else","version":1},"payload":{"iv":"","ciphertext":""}}`)
	if _, err := backup.Read(&buf); err == nil {
		t.Fatal("expected error for foreign header type")
	}
}
