package store_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/karim-saade/daybook/store"
)

func openSQLite(t *testing.T) *store.SQLiteKV {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "data", "daybook.db")
	kv, err := store.OpenSQLiteKV(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLiteKV: %v", err)
	}
	t.Cleanup(func() {
		kv.Close()
	})

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file at %q: %v", dbPath, err)
	}
	return kv
}

func TestSQLiteKVRoundTrip(t *testing.T) {
	kv := openSQLite(t)

	if _, ok, err := kv.Get("vault.meta"); err != nil || ok {
		t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
	}

	want := []byte(`{"enabled":true}`)
	if err := kv.Set("vault.meta", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := kv.Get("vault.meta")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || !bytes.Equal(got, want) {
		t.Fatalf("Get = %q ok=%v, want %q", got, ok, want)
	}
}

func TestSQLiteKVUpsertAndDelete(t *testing.T) {
	kv := openSQLite(t)

	if err := kv.Set("k", []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set("k", []byte("two")); err != nil {
		t.Fatalf("Set (upsert): %v", err)
	}

	got, _, err := kv.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "two" {
		t.Fatalf("Get = %q, want %q", got, "two")
	}

	if err := kv.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := kv.Get("k"); ok {
		t.Fatal("key still present after Delete")
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("Delete of absent key: %v", err)
	}
}
