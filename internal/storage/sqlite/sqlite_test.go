package sqlite

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Lingz450/receiptsplit/internal/storage"
)

func TestSQLiteKV(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "receiptsplit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "nested", "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("Get on missing key returns ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "bill:1")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("err = %v, want storage.ErrNotFound", err)
		}
	})

	t.Run("Put then Get round-trips", func(t *testing.T) {
		want := []byte(`{"id":1,"title":"Dinner"}`)
		if err := store.Put(ctx, "bill:1", want); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := store.Get(ctx, "bill:1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Get = %s, want %s", got, want)
		}
	})

	t.Run("Put overwrites existing value", func(t *testing.T) {
		if err := store.Put(ctx, "bill:1", []byte(`v1`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := store.Put(ctx, "bill:1", []byte(`v2`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := store.Get(ctx, "bill:1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != "v2" {
			t.Errorf("Get = %s, want v2", got)
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		if err := store.Put(ctx, "bill:2", []byte(`other`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := store.Get(ctx, "bill:2")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != "other" {
			t.Errorf("Get = %s, want other", got)
		}
	})
}

func TestSQLiteKVReopenPersists(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "receiptsplit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "test.db")
	ctx := context.Background()

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.Put(ctx, "clock", []byte(`1000000`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "clock")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if string(got) != "1000000" {
		t.Errorf("Get = %s, want 1000000", got)
	}
}
