package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/ironmarch/internal/storage"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.Set(ctx, "loss:ch1", []byte("payload")); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, err := store.Get(ctx, "loss:ch1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(value) != "payload" {
		t.Fatalf("expected payload, got %q", value)
	}

	// Mutating the returned slice must not affect the stored copy.
	value[0] = 'X'
	again, err := store.Get(ctx, "loss:ch1")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if string(again) != "payload" {
		t.Fatalf("expected stored copy untouched, got %q", again)
	}
}

func TestStoreMissingKey(t *testing.T) {
	store := NewStore()

	_, err := store.Get(context.Background(), "absent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreDeleteAndLen(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.Set(ctx, "a", []byte("1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "b", []byte("2")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", store.Len())
	}
	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", store.Len())
	}
}

func TestStoreListSorted(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, key := range []string{"loss:b", "loss:a", "other:c"} {
		if err := store.Set(ctx, key, []byte("x")); err != nil {
			t.Fatalf("set: %v", err)
		}
	}

	keys, err := store.List(ctx, "loss:")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 2 || keys[0] != "loss:a" || keys[1] != "loss:b" {
		t.Fatalf("expected sorted loss keys, got %v", keys)
	}
}

func TestStoreCancelledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Set(ctx, "a", []byte("1")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
