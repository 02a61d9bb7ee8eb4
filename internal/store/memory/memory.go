// internal/store/memory/memory.go
package memory

import (
	"context"
	"sync"

	"tishe-service/internal/store"

	xerrors "tishe-service/internal/pkg/errors"
)

type entry struct {
	id  string
	doc store.Document
}

// Store is an in-memory DocumentStore used in dev mode and tests. It
// preserves insertion order per collection and supports fault and latency
// injection so callers can exercise error paths and overlapping reads.
type Store struct {
	mu          sync.Mutex
	collections map[string][]entry

	getErr  map[string]error // keyed collection+"/"+id
	listErr map[string]error // keyed collection
	setErr  map[string]error // keyed collection

	listCalls map[string]int

	// GetHook, when set, runs before every point read, outside the store
	// lock. Tests use it to stall or fail a specific lookup.
	GetHook func(ctx context.Context, collection, id string) error
}

func NewStore() *Store {
	return &Store{
		collections: make(map[string][]entry),
		getErr:      make(map[string]error),
		listErr:     make(map[string]error),
		setErr:      make(map[string]error),
		listCalls:   make(map[string]int),
	}
}

func (s *Store) GetDocument(ctx context.Context, collection, id string) (store.Document, error) {
	if hook := s.GetHook; hook != nil {
		if err := hook(ctx, collection, id); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.getErr[collection+"/"+id]; err != nil {
		return nil, err
	}
	for _, e := range s.collections[collection] {
		if e.id == id {
			return cloneDoc(e.id, e.doc), nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (s *Store) SetDocument(ctx context.Context, collection, id string, doc store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setErr[collection]; err != nil {
		return err
	}

	stored := make(store.Document, len(doc))
	for k, v := range doc {
		if k == "id" {
			continue
		}
		stored[k] = v
	}

	entries := s.collections[collection]
	for i, e := range entries {
		if e.id == id {
			entries[i].doc = stored
			return nil
		}
	}
	s.collections[collection] = append(entries, entry{id: id, doc: stored})
	return nil
}

func (s *Store) ListCollection(ctx context.Context, collection string) ([]store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listCalls[collection]++
	if err := s.listErr[collection]; err != nil {
		return nil, err
	}

	entries := s.collections[collection]
	docs := make([]store.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, cloneDoc(e.id, e.doc))
	}
	return docs, nil
}

// FailGet makes the next point reads for collection/id return err. Pass nil
// to clear.
func (s *Store) FailGet(collection, id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.getErr, collection+"/"+id)
		return
	}
	s.getErr[collection+"/"+id] = err
}

// FailList makes ListCollection for collection return err. Pass nil to clear.
func (s *Store) FailList(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.listErr, collection)
		return
	}
	s.listErr[collection] = err
}

// FailSet makes SetDocument for collection return err. Pass nil to clear.
func (s *Store) FailSet(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.setErr, collection)
		return
	}
	s.setErr[collection] = err
}

// ListCalls reports how many times ListCollection ran for collection,
// including calls that failed.
func (s *Store) ListCalls(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls[collection]
}

func cloneDoc(id string, doc store.Document) store.Document {
	out := make(store.Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["id"] = id
	return out
}
