package vault_test

import (
	"testing"
	"time"

	"github.com/karim-saade/daybook/internal/vault"
	"github.com/karim-saade/daybook/krypto"
	"github.com/karim-saade/daybook/store"
)

func newFileStore(t *testing.T) store.KV {
	t.Helper()
	kv, err := store.NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	return kv
}

func sampleMetadata(t *testing.T) *vault.Metadata {
	t.Helper()
	kek, _ := krypto.RandomBytes(krypto.KeySize)
	dek, _ := krypto.RandomBytes(krypto.KeySize)
	wrap, err := vault.WrapDEK(kek, dek)
	if err != nil {
		t.Fatalf("WrapDEK: %v", err)
	}

	salt, _ := krypto.NewRandomSalt()
	return &vault.Metadata{
		Enabled:   true,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		KDF: vault.KDFConfig{
			Algorithm:  "PBKDF2",
			Hash:       "SHA-256",
			Iterations: krypto.DefaultIterations,
			Salt:       salt,
		},
		Recovery: vault.RecoveryConfig{
			Iterations: krypto.DefaultIterations,
			Salt:       salt,
		},
		Wraps:       vault.Wraps{Passphrase: wrap, Recovery: wrap},
		Cipher:      vault.DefaultCipher(),
		IdleMinutes: vault.DefaultIdleMinutes,
	}
}

func TestMetaStoreLoadAbsent(t *testing.T) {
	ms := vault.NewMetaStore(newFileStore(t))

	meta, err := ms.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta != nil {
		t.Fatal("expected nil metadata for a never-enabled vault")
	}

	enabled, err := ms.IsEnabled()
	if err != nil {
		t.Fatalf("IsEnabled: %v", err)
	}
	if enabled {
		t.Fatal("vault reported enabled without metadata")
	}
}

func TestMetaStoreSaveLoadRoundTrip(t *testing.T) {
	ms := vault.NewMetaStore(newFileStore(t))
	meta := sampleMetadata(t)

	if err := ms.Save(meta); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := ms.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if !got.Enabled || !got.HasWraps() {
		t.Fatal("loaded metadata lost enabled state or wraps")
	}
	if got.KDF.Iterations != meta.KDF.Iterations {
		t.Fatalf("iterations = %d, want %d", got.KDF.Iterations, meta.KDF.Iterations)
	}
	if string(got.KDF.Salt) != string(meta.KDF.Salt) {
		t.Fatal("salt did not survive the round trip")
	}
	if !got.CreatedAt.Equal(meta.CreatedAt) {
		t.Fatalf("createdAt = %v, want %v", got.CreatedAt, meta.CreatedAt)
	}

	enabled, err := ms.IsEnabled()
	if err != nil {
		t.Fatalf("IsEnabled: %v", err)
	}
	if !enabled {
		t.Fatal("vault not reported enabled after Save")
	}
}
