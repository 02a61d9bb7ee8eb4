// internal/store/store.go
package store

import "context"

// Document is a schemaless record as held by the remote document store.
type Document map[string]any

// String returns the named field as a string, or "" when absent or not a
// string. Field access helpers keep decoding at the read boundary tolerant
// of missing keys.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Float returns the named field as a float64, or 0 when absent. JSON numbers
// decode as float64.
func (d Document) Float(key string) float64 {
	f, _ := d[key].(float64)
	return f
}

// Bool returns the named field as a tri-state: nil when absent or not a bool.
func (d Document) Bool(key string) *bool {
	b, ok := d[key].(bool)
	if !ok {
		return nil
	}
	return &b
}

// DocumentStore is the narrow interface this layer consumes from the remote
// document/collection datastore. Implementations must return documents from
// ListCollection in stable insertion order.
type DocumentStore interface {
	// GetDocument performs a point read. Absent documents return
	// xerrors.ErrNotFound.
	GetDocument(ctx context.Context, collection, id string) (Document, error)

	// SetDocument creates or fully replaces a document.
	SetDocument(ctx context.Context, collection, id string, doc Document) error

	// ListCollection reads the full collection in insertion order.
	ListCollection(ctx context.Context, collection string) ([]Document, error)
}

// Collection names used by this service.
const (
	CollectionUsers      = "users"
	CollectionCategories = "categories"
	CollectionProducts   = "products"
)
