package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"kasa/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "kasa.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestCreateListFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	personnelID, err := s.Create(ctx, store.CollectionDays, json.RawMessage(`{"type":"personnel","dateString":"2024-01-01"}`))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, store.CollectionDays, json.RawMessage(`{"type":"operational","dateString":"2024-01-02"}`)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	docs, err := s.List(ctx, store.CollectionDays, store.Filter{"type": "personnel"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != personnelID {
		t.Fatalf("filtered list = %+v, want one personnel document", docs)
	}

	all, err := s.List(ctx, store.CollectionDays, nil)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d documents, want 2", len(all))
	}
}

func TestUpdateMerge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, store.CollectionSettings, json.RawMessage(`{"type":"operational","initialBalance":"10"}`))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Update(ctx, store.CollectionSettings, id, json.RawMessage(`{"initialBalance":"99"}`)); err != nil {
		t.Fatalf("Update: %v", err)
	}

	docs, err := s.List(ctx, store.CollectionSettings, store.Filter{"type": "operational"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1 (type survived merge)", len(docs))
	}
	var fields map[string]any
	if err := json.Unmarshal(docs[0].Data, &fields); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fields["initialBalance"] != "99" {
		t.Errorf("initialBalance = %v, want 99", fields["initialBalance"])
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, store.CollectionDays, json.RawMessage(`{"type":"personnel"}`))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(ctx, store.CollectionDays, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, store.CollectionDays, id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
	if err := s.Update(ctx, store.CollectionDays, id, json.RawMessage(`{}`)); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update after delete = %v, want ErrNotFound", err)
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, store.CollectionDays, json.RawMessage(`{"type":"personnel"}`)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	docs, err := s.List(ctx, store.CollectionSettings, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("settings collection sees days documents: %+v", docs)
	}
}
