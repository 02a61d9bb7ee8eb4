// internal/store/memory/memory_test.go
package memory

import (
	"context"
	"errors"
	"testing"

	"tishe-service/internal/store"

	xerrors "tishe-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDocumentMissing(t *testing.T) {
	s := NewStore()

	_, err := s.GetDocument(context.Background(), "users", "nope")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestSetAndGetDocumentInjectsID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.SetDocument(ctx, "users", "u1", store.Document{"email": "a@b.c"}))

	doc, err := s.GetDocument(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", doc.String("id"))
	assert.Equal(t, "a@b.c", doc.String("email"))
}

func TestListCollectionPreservesInsertionOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.SetDocument(ctx, "items", id, store.Document{"v": id}))
	}

	docs, err := s.ListCollection(ctx, "items")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "c", docs[0].String("id"))
	assert.Equal(t, "a", docs[1].String("id"))
	assert.Equal(t, "b", docs[2].String("id"))
}

func TestSetDocumentUpsertsInPlace(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.SetDocument(ctx, "items", "x", store.Document{"v": 1}))
	require.NoError(t, s.SetDocument(ctx, "items", "y", store.Document{"v": 2}))
	require.NoError(t, s.SetDocument(ctx, "items", "x", store.Document{"v": 3}))

	docs, err := s.ListCollection(ctx, "items")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "x", docs[0].String("id")) // order kept on update
}

func TestReturnedDocumentsAreCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.SetDocument(ctx, "items", "x", store.Document{"v": "orig"}))

	doc, err := s.GetDocument(ctx, "items", "x")
	require.NoError(t, err)
	doc["v"] = "mutated"

	again, err := s.GetDocument(ctx, "items", "x")
	require.NoError(t, err)
	assert.Equal(t, "orig", again.String("v"))
}

func TestFaultInjection(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	require.NoError(t, s.SetDocument(ctx, "items", "x", store.Document{}))

	s.FailGet("items", "x", boom)
	_, err := s.GetDocument(ctx, "items", "x")
	assert.ErrorIs(t, err, boom)

	s.FailGet("items", "x", nil)
	_, err = s.GetDocument(ctx, "items", "x")
	assert.NoError(t, err)

	s.FailList("items", boom)
	_, err = s.ListCollection(ctx, "items")
	assert.ErrorIs(t, err, boom)

	s.FailSet("items", boom)
	assert.ErrorIs(t, s.SetDocument(ctx, "items", "y", store.Document{}), boom)
}

func TestListCallsCountsFailures(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	s.FailList("items", errors.New("down"))
	s.ListCollection(ctx, "items")
	s.FailList("items", nil)
	s.ListCollection(ctx, "items")

	assert.Equal(t, 2, s.ListCalls("items"))
}
