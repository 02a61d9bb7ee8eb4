// internal/service/profile/service_test.go
package profile

import (
	"context"
	"sync"
	"testing"
	"time"

	"tishe-service/internal/domain/auth"
	"tishe-service/internal/session"
	"tishe-service/internal/store"
	"tishe-service/internal/store/memory"

	xerrors "tishe-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGateway struct {
	mu        sync.Mutex
	listeners []func(*auth.Identity)
}

func (g *stubGateway) OnAuthStateChanged(fn func(*auth.Identity)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
	return func() {}
}

func (g *stubGateway) Emit(identity *auth.Identity) {
	g.mu.Lock()
	listeners := make([]func(*auth.Identity), len(g.listeners))
	copy(listeners, g.listeners)
	g.mu.Unlock()
	for _, fn := range listeners {
		fn(identity)
	}
}

func (g *stubGateway) SignInWithPassword(ctx context.Context, email, password string) (*auth.Identity, error) {
	return nil, xerrors.ErrInvalidCredentials
}

func (g *stubGateway) SignInWithOAuth(ctx context.Context, providerID string) (*auth.Identity, error) {
	return nil, xerrors.ErrFlowAborted
}

func (g *stubGateway) SignUp(ctx context.Context, email, password, displayName string) (*auth.Identity, error) {
	return nil, xerrors.ErrInternal
}

func (g *stubGateway) SignOut(ctx context.Context) error {
	g.Emit(nil)
	return nil
}

// signedInService builds a profile service whose session has resolved to the
// given identity.
func signedInService(t *testing.T, docs *memory.Store, identity *auth.Identity) *Service {
	t.Helper()

	gw := &stubGateway{}
	sessions := session.NewManager(gw, docs, zap.NewNop())
	t.Cleanup(sessions.Close)

	gw.Emit(identity)
	if identity != nil {
		deadline := time.Now().Add(2 * time.Second)
		for sessions.Snapshot().Status != auth.StatusAuthenticated {
			if time.Now().After(deadline) {
				t.Fatal("session never authenticated")
			}
			time.Sleep(2 * time.Millisecond)
		}
	}

	return NewService(docs, sessions, zap.NewNop())
}

func TestProfileRequiresAuthenticatedSession(t *testing.T) {
	docs := memory.NewStore()
	s := signedInService(t, docs, nil)

	_, err := s.Cart(context.Background())
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)

	err = s.AddToWishlist(context.Background(), "p1")
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestCartAddMergeAndRemove(t *testing.T) {
	docs := memory.NewStore()
	s := signedInService(t, docs, &auth.Identity{ID: "u1", Email: "u1@example.com"})
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, "p1", 1))
	require.NoError(t, s.AddToCart(ctx, "p2", 2))
	require.NoError(t, s.AddToCart(ctx, "p1", 3)) // merge

	cart, err := s.Cart(ctx)
	require.NoError(t, err)
	require.Len(t, cart, 2)
	assert.Equal(t, CartItem{ProductID: "p1", Quantity: 4}, cart[0])
	assert.Equal(t, CartItem{ProductID: "p2", Quantity: 2}, cart[1])

	require.NoError(t, s.RemoveFromCart(ctx, "p1"))
	cart, err = s.Cart(ctx)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, "p2", cart[0].ProductID)
}

func TestCartRejectsInvalidInput(t *testing.T) {
	docs := memory.NewStore()
	s := signedInService(t, docs, &auth.Identity{ID: "u1"})
	ctx := context.Background()

	assert.ErrorIs(t, s.AddToCart(ctx, "", 1), xerrors.ErrInvalidInput)
	assert.ErrorIs(t, s.AddToCart(ctx, "p1", 0), xerrors.ErrInvalidInput)
	assert.ErrorIs(t, s.AddToCart(ctx, "p1", -2), xerrors.ErrInvalidInput)
}

func TestWishlistDeduplicates(t *testing.T) {
	docs := memory.NewStore()
	s := signedInService(t, docs, &auth.Identity{ID: "u1"})
	ctx := context.Background()

	require.NoError(t, s.AddToWishlist(ctx, "p1"))
	require.NoError(t, s.AddToWishlist(ctx, "p2"))
	require.NoError(t, s.AddToWishlist(ctx, "p1")) // no-op

	wishlist, err := s.Wishlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, wishlist)

	require.NoError(t, s.RemoveFromWishlist(ctx, "p1"))
	wishlist, err = s.Wishlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, wishlist)
}

func TestProfileWorksWithoutExistingUserDocument(t *testing.T) {
	docs := memory.NewStore()
	s := signedInService(t, docs, &auth.Identity{ID: "fresh", Email: "fresh@example.com"})
	ctx := context.Background()

	cart, err := s.Cart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart)

	require.NoError(t, s.AddToCart(ctx, "p1", 1))

	doc, err := docs.GetDocument(ctx, store.CollectionUsers, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh@example.com", doc.String("email"))
}

func TestCartPersistsOnUserDocument(t *testing.T) {
	docs := memory.NewStore()
	require.NoError(t, docs.SetDocument(context.Background(), store.CollectionUsers, "u1", store.Document{
		"email": "u1@example.com",
		"role":  "customer",
	}))
	s := signedInService(t, docs, &auth.Identity{ID: "u1", Email: "u1@example.com"})
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, "p1", 2))

	doc, err := docs.GetDocument(ctx, store.CollectionUsers, "u1")
	require.NoError(t, err)
	raw, ok := doc["cart"].([]any)
	require.True(t, ok)
	require.Len(t, raw, 1)

	// role survives cart updates
	assert.Equal(t, "customer", doc.String("role"))
}
