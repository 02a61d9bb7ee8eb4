// internal/store/postgres/documents.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tishe-service/internal/store"

	xerrors "tishe-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentStore keeps schemaless documents in a single JSONB table. The
// bigserial seq column preserves insertion order for full-collection reads.
type DocumentStore struct {
	db *pgxpool.Pool
}

func NewDocumentStore(db *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{db: db}
}

// Migrate creates the documents table if it does not exist.
func (s *DocumentStore) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			data       JSONB NOT NULL DEFAULT '{}'::jsonb,
			seq        BIGSERIAL,
			PRIMARY KEY (collection, id)
		)
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

// GetDocument performs a point read.
func (s *DocumentStore) GetDocument(ctx context.Context, collection, id string) (store.Document, error) {
	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`

	var data []byte
	err := s.db.QueryRow(ctx, query, collection, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s/%s: %w", collection, id, err)
	}

	doc, err := decode(data)
	if err != nil {
		return nil, err
	}
	doc["id"] = id
	return doc, nil
}

// SetDocument creates or fully replaces a document.
func (s *DocumentStore) SetDocument(ctx context.Context, collection, id string, doc store.Document) error {
	query := `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data
	`

	payload := make(store.Document, len(doc))
	for k, v := range doc {
		if k == "id" {
			continue // the key column is authoritative
		}
		payload[k] = v
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s/%s: %w", collection, id, err)
	}

	if _, err := s.db.Exec(ctx, query, collection, id, data); err != nil {
		return fmt.Errorf("failed to write document %s/%s: %w", collection, id, err)
	}
	return nil
}

// ListCollection reads the full collection in insertion order.
func (s *DocumentStore) ListCollection(ctx context.Context, collection string) ([]store.Document, error) {
	query := `SELECT id, data FROM documents WHERE collection = $1 ORDER BY seq`

	rows, err := s.db.Query(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		doc, err := decode(data)
		if err != nil {
			return nil, err
		}
		doc["id"] = id
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collection %s: %w", collection, err)
	}
	return docs, nil
}

func decode(data []byte) (store.Document, error) {
	doc := store.Document{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}
