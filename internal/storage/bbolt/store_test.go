package bbolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/louisbranch/ironmarch/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ironmarch.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreSetGet(t *testing.T) {
	store := openTestStore(t)

	if err := store.Set(context.Background(), "loss:ch1", []byte(`{"chapterId":"ch1"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, err := store.Get(context.Background(), "loss:ch1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(value) != `{"chapterId":"ch1"}` {
		t.Fatalf("expected stored payload, got %q", value)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "loss:absent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := openTestStore(t)

	if err := store.Set(context.Background(), "loss:ch1", []byte("x")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Delete(context.Background(), "loss:ch1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(context.Background(), "loss:ch1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting an absent key is not an error.
	if err := store.Delete(context.Background(), "loss:ch1"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}

func TestStoreListPrefix(t *testing.T) {
	store := openTestStore(t)

	keys := []string{"loss:backup:ch1", "loss:ch1", "loss:ch2", "telemetry:0001"}
	for _, key := range keys {
		if err := store.Set(context.Background(), key, []byte("x")); err != nil {
			t.Fatalf("set %q: %v", key, err)
		}
	}

	got, err := store.List(context.Background(), "loss:")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"loss:backup:ch1", "loss:ch1", "loss:ch2"}
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected key %q at %d, got %q", want[i], i, got[i])
		}
	}
}

func TestStoreEmptyKeyRejected(t *testing.T) {
	store := openTestStore(t)

	if err := store.Set(context.Background(), "  ", []byte("x")); err == nil {
		t.Fatal("expected error for blank key")
	}
	if _, err := store.Get(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestNilStoreClose(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("expected nil-safe close, got %v", err)
	}
}
