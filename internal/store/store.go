// Package store defines the remote document store contract: collections of
// JSON documents with get/set/update/query/delete and a multi-document atomic
// transaction primitive.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrDocumentNotFound = errors.New("document not found")

// Document is a stored record: its id within the collection and the raw JSON
// body.
type Document struct {
	ID   string
	Data []byte
}

// Decode unmarshals the document body into v.
func (d *Document) Decode(v any) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("decoding document %s: %w", d.ID, err)
	}
	return nil
}

// Filter is an equality predicate on a top-level document field.
type Filter struct {
	Field string
	Value any
}

// Update describes a partial mutation of a single document. Set replaces
// top-level fields. ArrayUnion adds the given strings to a string-array field
// if absent; ArrayRemove removes them. Union and remove are idempotent.
type Update struct {
	Set         map[string]any
	ArrayUnion  map[string][]string
	ArrayRemove map[string][]string
}

// Store is the document store used by the synchronizers.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Set(ctx context.Context, collection, id string, value any, merge bool) error
	Update(ctx context.Context, collection, id string, u Update) error
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	Delete(ctx context.Context, collection, id string) error
	GenerateID() string
	// RunTransaction executes fn atomically: either every mutation issued
	// through tx is applied, or none is. Documents read through tx are locked
	// until commit.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the view of the store inside a transaction.
type Tx interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Update(ctx context.Context, collection, id string, u Update) error
}

// ApplyUpdate applies u to a raw JSON document body and returns the new body.
// Shared by every Store implementation so update semantics cannot drift.
func ApplyUpdate(data []byte, u Update) ([]byte, error) {
	doc := make(map[string]any)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding document for update: %w", err)
		}
	}

	for field, value := range u.Set {
		doc[field] = value
	}

	for field, values := range u.ArrayUnion {
		arr := stringArray(doc[field])
		for _, v := range values {
			if !containsString(arr, v) {
				arr = append(arr, v)
			}
		}
		doc[field] = arr
	}

	for field, values := range u.ArrayRemove {
		arr := stringArray(doc[field])
		kept := make([]string, 0, len(arr))
		for _, v := range arr {
			if !containsString(values, v) {
				kept = append(kept, v)
			}
		}
		doc[field] = kept
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding updated document: %w", err)
	}
	return out, nil
}

func stringArray(v any) []string {
	switch arr := v.(type) {
	case []string:
		out := make([]string, len(arr))
		copy(out, arr)
		return out
	case []any:
		out := make([]string, 0, len(arr))
		for _, e := range arr {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

func containsString(arr []string, s string) bool {
	for _, v := range arr {
		if v == s {
			return true
		}
	}
	return false
}
