package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"celengan/internal/core"
)

func roundTrip(t *testing.T, store AccountStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, "budi"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	account := core.NewAccount("Budi", "secret1", now)
	if _, err := account.SaveToMain(500, "gaji", now); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := account.AddTarget("Laptop", 1_000_000); err != nil {
		t.Fatalf("add target: %v", err)
	}

	if err := store.Put(ctx, account); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Case-insensitive lookup, display casing preserved.
	got, err := store.Get(ctx, "BUDI")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Username != "Budi" {
		t.Fatalf("username = %q, want display casing kept", got.Username)
	}
	if got.MainBalance != 500 || len(got.Log) != 1 {
		t.Fatalf("record not round-tripped: balance=%d log=%d", got.MainBalance, len(got.Log))
	}
	if _, ok := got.Target("laptop"); !ok {
		t.Fatalf("target lost in round trip")
	}

	ok, err := store.Exists(ctx, "bUdI")
	if err != nil || !ok {
		t.Fatalf("exists = %v, %v", ok, err)
	}

	// Put is a full-record upsert: mutate and write again.
	if _, err := got.SpendFromMain(200, "", now); err != nil {
		t.Fatalf("spend: %v", err)
	}
	if err := store.Put(ctx, got); err != nil {
		t.Fatalf("second put: %v", err)
	}
	again, err := store.Get(ctx, "budi")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.MainBalance != 300 || len(again.Log) != 2 {
		t.Fatalf("upsert lost data: balance=%d log=%d", again.MainBalance, len(again.Log))
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	roundTrip(t, store)
}

func TestMemoryStoreCopiesRecords(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	account := core.NewAccount("budi", "secret1", time.Now())
	if err := store.Put(ctx, account); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	account.MainBalance = 999
	got, err := store.Get(ctx, "budi")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MainBalance != 0 {
		t.Fatalf("store shares state with caller: balance=%d", got.MainBalance)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "celengan.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	roundTrip(t, store)
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "celengan.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	account := core.NewAccount("budi", "secret1", time.Now())
	if err := store.Put(ctx, account); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(ctx, "budi"); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
}
