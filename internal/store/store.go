// Package store defines the document-store port the rest of the app
// persists through. Documents are schemaless JSON objects grouped into
// named collections; the app uses two of them.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collections consumed by the app.
const (
	CollectionSettings = "settings"
	CollectionDays     = "days"
)

var (
	// ErrNotConfigured is returned by every operation when the client
	// is missing or not initialized. Callers surface it as a blocking
	// error state; there is no automatic retry.
	ErrNotConfigured = errors.New("document store not configured")

	// ErrNotFound is returned when an id does not exist in the
	// collection.
	ErrNotFound = errors.New("document not found")
)

type (
	// Document is one stored JSON object and its generated id.
	Document struct {
		ID   string
		Data json.RawMessage
	}

	// Filter matches documents whose top-level string fields equal the
	// given values. The app only ever filters by "type".
	Filter map[string]string

	// Client is the abstract document-store client. Update applies a
	// top-level JSON merge: fields present in the partial document
	// replace the stored ones, everything else is preserved.
	Client interface {
		List(ctx context.Context, collection string, filter Filter) ([]Document, error)
		Create(ctx context.Context, collection string, data json.RawMessage) (string, error)
		Update(ctx context.Context, collection, id string, partial json.RawMessage) error
		Delete(ctx context.Context, collection, id string) error
	}
)

// Matches reports whether the document satisfies the filter.
func (f Filter) Matches(data json.RawMessage) (bool, error) {
	if len(f) == 0 {
		return true, nil
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return false, fmt.Errorf("decode document: %w", err)
	}
	for key, want := range f {
		got, ok := fields[key].(string)
		if !ok || got != want {
			return false, nil
		}
	}
	return true, nil
}

// MergePatch merges partial into data at the top level and returns the
// combined document. Both inputs must be JSON objects.
func MergePatch(data, partial json.RawMessage) (json.RawMessage, error) {
	var base map[string]json.RawMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("decode stored document: %w", err)
	}
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(partial, &patch); err != nil {
		return nil, fmt.Errorf("decode partial document: %w", err)
	}
	for key, value := range patch {
		base[key] = value
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("encode merged document: %w", err)
	}
	return merged, nil
}
