// Package memory is the in-memory document store, used as the default
// backend and by tests.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"kasa/internal/store"
)

type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]json.RawMessage
}

func New() *Store {
	return &Store{collections: make(map[string]map[string]json.RawMessage)}
}

func (s *Store) List(_ context.Context, collection string, filter store.Filter) ([]store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]store.Document, 0, len(s.collections[collection]))
	for id, data := range s.collections[collection] {
		ok, err := filter.Matches(data)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		docs = append(docs, store.Document{ID: id, Data: clone(data)})
	}
	return docs, nil
}

func (s *Store) Create(_ context.Context, collection string, data json.RawMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]json.RawMessage)
	}
	id := uuid.NewString()
	s.collections[collection][id] = clone(data)
	return id, nil
}

func (s *Store) Update(_ context.Context, collection, id string, partial json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.collections[collection][id]
	if !ok {
		return store.ErrNotFound
	}
	merged, err := store.MergePatch(existing, partial)
	if err != nil {
		return err
	}
	s.collections[collection][id] = merged
	return nil
}

func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return store.ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func clone(data json.RawMessage) json.RawMessage {
	out := make(json.RawMessage, len(data))
	copy(out, data)
	return out
}
