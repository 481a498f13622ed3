package vault_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/karim-saade/daybook/internal/vault"
	"github.com/karim-saade/daybook/krypto"
)

func TestWrapUnwrapRoundTrip(t *testing.T) {
	kek, _ := krypto.RandomBytes(krypto.KeySize)
	dek, _ := krypto.RandomBytes(krypto.KeySize)

	wrap, err := vault.WrapDEK(kek, dek)
	if err != nil {
		t.Fatalf("WrapDEK: %v", err)
	}

	got, err := vault.UnwrapDEK(kek, wrap)
	if err != nil {
		t.Fatalf("UnwrapDEK: %v", err)
	}
	if !bytes.Equal(got, dek) {
		t.Fatal("unwrapped DEK differs from original")
	}
}

func TestUnwrapWrongKEK(t *testing.T) {
	kek, _ := krypto.RandomBytes(krypto.KeySize)
	other, _ := krypto.RandomBytes(krypto.KeySize)
	dek, _ := krypto.RandomBytes(krypto.KeySize)

	wrap, err := vault.WrapDEK(kek, dek)
	if err != nil {
		t.Fatalf("WrapDEK: %v", err)
	}

	if _, err := vault.UnwrapDEK(other, wrap); !errors.Is(err, vault.ErrWrongSecret) {
		t.Fatalf("UnwrapDEK with wrong KEK: got %v, want ErrWrongSecret", err)
	}
}

func TestUnwrapTamperedBlob(t *testing.T) {
	kek, _ := krypto.RandomBytes(krypto.KeySize)
	dek, _ := krypto.RandomBytes(krypto.KeySize)

	wrap, err := vault.WrapDEK(kek, dek)
	if err != nil {
		t.Fatalf("WrapDEK: %v", err)
	}
	wrap.Ciphertext[3] ^= 0x80

	if _, err := vault.UnwrapDEK(kek, wrap); !errors.Is(err, vault.ErrWrongSecret) {
		t.Fatalf("UnwrapDEK on tampered blob: got %v, want ErrWrongSecret", err)
	}
}

func TestWrapRejectsShortDEK(t *testing.T) {
	kek, _ := krypto.RandomBytes(krypto.KeySize)
	if _, err := vault.WrapDEK(kek, make([]byte, 16)); err == nil {
		t.Fatal("expected error for 16-byte DEK")
	}
}
