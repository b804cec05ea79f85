package storage

import (
	"context"
	"errors"
	"testing"
)

func TestLocalStorageReadWrite(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	ctx := context.Background()

	if err := store.Write(ctx, "tasks/a.yaml", []byte("title: hello")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := store.Read(ctx, "tasks/a.yaml")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "title: hello" {
		t.Errorf("Read = %q", data)
	}
}

func TestLocalStorageReadMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	_, err = store.Read(context.Background(), "tasks/missing.yaml")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalStorageDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	ctx := context.Background()

	if err := store.Write(ctx, "tasks/a.yaml", []byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := store.Delete(ctx, "tasks/a.yaml"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, "tasks/a.yaml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalStorageListAndExists(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	ctx := context.Background()

	paths, err := store.List(ctx, "tasks")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no entries, got %v", paths)
	}

	for _, p := range []string{"tasks/a.yaml", "tasks/b.yaml"} {
		if err := store.Write(ctx, p, []byte("x")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	paths, err = store.List(ctx, "tasks")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("len = %d, want 2: %v", len(paths), paths)
	}

	exists, err := store.Exists(ctx, "tasks/a.yaml")
	if err != nil || !exists {
		t.Errorf("Exists = %v, %v", exists, err)
	}
	exists, err = store.Exists(ctx, "tasks/c.yaml")
	if err != nil || exists {
		t.Errorf("Exists for missing path = %v, %v", exists, err)
	}
}
