// internal/session/memory_test.go
//
// Unit-tests for the in-memory store: TTL expiry and LRU capacity bound.

package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore(4, time.Minute)

	s := New()
	s.SetValue("user", "ada")
	if err := store.Save(context.Background(), s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Find(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if v, _ := got.Value("user"); v != "ada" {
		t.Fatalf("value = %v, want ada", v)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(4, time.Millisecond)

	s := New()
	_ = store.Save(context.Background(), s)

	time.Sleep(5 * time.Millisecond)
	if _, err := store.Find(context.Background(), s.ID); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound after expiry", err)
	}
}

func TestMemoryStore_CapacityEvictsOldest(t *testing.T) {
	store := NewMemoryStore(2, time.Minute)

	a, b, c := New(), New(), New()
	_ = store.Save(context.Background(), a)
	_ = store.Save(context.Background(), b)
	_ = store.Save(context.Background(), c) // evicts a

	if _, err := store.Find(context.Background(), a.ID); err != ErrNotFound {
		t.Fatal("oldest session must be evicted at capacity")
	}
	if _, err := store.Find(context.Background(), c.ID); err != nil {
		t.Fatalf("newest session missing: %v", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore(4, time.Minute)
	s := New()
	_ = store.Save(context.Background(), s)

	if err := store.Delete(context.Background(), s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Find(context.Background(), s.ID); err != ErrNotFound {
		t.Fatal("deleted session must not be found")
	}
	// Deleting again is not an error.
	if err := store.Delete(context.Background(), s.ID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}
