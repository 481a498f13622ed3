package service_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/karim-saade/daybook/internal/backup"
	"github.com/karim-saade/daybook/internal/service"
	"github.com/karim-saade/daybook/internal/vault"
	"github.com/karim-saade/daybook/krypto"
)

func TestBackupRoundTripThroughSession(t *testing.T) {
	svc, _ := enabledService(t, newMemKV())

	plaintext := []byte(`{"entries":[{"id":1,"text":"hello"}]}`)
	payload, err := svc.EncryptBackup(plaintext)
	if err != nil {
		t.Fatalf("EncryptBackup: %v", err)
	}

	got, err := svc.DecryptBackupWithDEK(payload)
	if err != nil {
		t.Fatalf("DecryptBackupWithDEK: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatal("backup round trip mismatch")
	}
}

func TestBackupPortableRestore(t *testing.T) {
	// Export on one "machine", restore on another with no live session,
	// using each secret kind in turn.
	svc, code := enabledService(t, newMemKV())

	plaintext := []byte(`{"entries":[]}`)
	hdr, err := svc.ExportHeader()
	if err != nil {
		t.Fatalf("ExportHeader: %v", err)
	}
	payload, err := svc.EncryptBackup(plaintext)
	if err != nil {
		t.Fatalf("EncryptBackup: %v", err)
	}

	var buf bytes.Buffer
	f := backup.File{Header: hdr, Payload: payload}
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	svc.LockNow()

	restored, err := backup.Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	for _, tc := range []struct {
		name   string
		kind   backup.SecretKind
		secret string
	}{
		{"passphrase", backup.SecretPassphrase, testPassphrase},
		{"recovery code", backup.SecretRecoveryCode, code},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dek, err := backup.UnwrapDEK(restored.Header, tc.kind, tc.secret)
			if err != nil {
				t.Fatalf("UnwrapDEK: %v", err)
			}
			defer krypto.Zeroize(dek)

			got, err := backup.DecryptPayload(restored.Payload, dek)
			if err != nil {
				t.Fatalf("DecryptPayload: %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Fatal("restored payload mismatch")
			}
		})
	}
}

func TestBackupRequiresUnlocked(t *testing.T) {
	svc, _ := enabledService(t, newMemKV())
	payload, err := svc.EncryptBackup([]byte("x"))
	if err != nil {
		t.Fatalf("EncryptBackup: %v", err)
	}
	svc.LockNow()

	if _, err := svc.EncryptBackup([]byte("x")); !errors.Is(err, vault.ErrLocked) {
		t.Fatalf("encrypt backup while locked: got %v, want ErrLocked", err)
	}
	if _, err := svc.DecryptBackupWithDEK(payload); !errors.Is(err, vault.ErrLocked) {
		t.Fatalf("decrypt backup while locked: got %v, want ErrLocked", err)
	}
}

func TestExportHeaderNeedsEnabledNotUnlocked(t *testing.T) {
	kv := newMemKV()
	svc, _ := enabledService(t, kv)
	svc.LockNow()

	hdr, err := svc.ExportHeader()
	if err != nil {
		t.Fatalf("ExportHeader while locked: %v", err)
	}
	if hdr.Type != backup.HeaderType {
		t.Fatalf("header type = %q", hdr.Type)
	}

	if _, err := service.New(newMemKV()).ExportHeader(); !errors.Is(err, vault.ErrNotEnabled) {
		t.Fatalf("export before setup: got %v, want ErrNotEnabled", err)
	}
}
