// internal/middleware/guard_test.go
package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tishe-service/internal/domain/auth"
	"tishe-service/internal/session"
	"tishe-service/internal/store"
	"tishe-service/internal/store/memory"

	xerrors "tishe-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAllowDecisions(t *testing.T) {
	resolving := session.Snapshot{Status: auth.StatusResolving}
	anonymous := session.Snapshot{Status: auth.StatusAnonymous}
	customer := session.Snapshot{
		Status:   auth.StatusAuthenticated,
		Identity: &auth.Identity{ID: "u1"},
		Role:     auth.RoleCustomer,
	}
	admin := session.Snapshot{
		Status:   auth.StatusAuthenticated,
		Identity: &auth.Identity{ID: "u2"},
		Role:     auth.RoleAdmin,
	}

	// open routes never gate, whatever the session state
	assert.Equal(t, DecisionAllowed, Allow(resolving, RequireNone))
	assert.Equal(t, DecisionAllowed, Allow(anonymous, RequireNone))

	// a resolving session is never redirected
	assert.Equal(t, DecisionPending, Allow(resolving, RequireAuthenticated))
	assert.Equal(t, DecisionPending, Allow(resolving, RequireAdmin))

	assert.Equal(t, DecisionSignIn, Allow(anonymous, RequireAuthenticated))
	assert.Equal(t, DecisionSignIn, Allow(anonymous, RequireAdmin))

	assert.Equal(t, DecisionAllowed, Allow(customer, RequireAuthenticated))
	assert.Equal(t, DecisionForbidden, Allow(customer, RequireAdmin))

	assert.Equal(t, DecisionAllowed, Allow(admin, RequireAuthenticated))
	assert.Equal(t, DecisionAllowed, Allow(admin, RequireAdmin))
}

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

func guardedRouter(t *testing.T, docs *memory.Store) (*gin.Engine, *stubGateway, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gw := &stubGateway{}
	sessions := session.NewManager(gw, docs, zap.NewNop())
	t.Cleanup(sessions.Close)

	guard := NewGuard(sessions)
	r := gin.New()
	r.GET("/me", guard.RequireAuth(), func(c *gin.Context) {
		id, _ := GetIdentityID(c)
		c.JSON(http.StatusOK, gin.H{"identity_id": id, "admin": IsAdmin(c)})
	})
	r.GET("/admin", guard.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, gw, sessions
}

func authenticate(t *testing.T, gw *stubGateway, sessions *session.Manager, identity *auth.Identity) {
	t.Helper()
	gw.Emit(identity)
	deadline := time.Now().Add(2 * time.Second)
	for sessions.Snapshot().Status == auth.StatusResolving {
		if time.Now().After(deadline) {
			t.Fatal("session never resolved")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestGuardAllowsCustomerOnAuthRoute(t *testing.T) {
	docs := memory.NewStore()
	r, gw, sessions := guardedRouter(t, docs)
	authenticate(t, gw, sessions, &auth.Identity{ID: "u1"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"identity_id":"u1"`)
}

func TestGuardRejectsAnonymous(t *testing.T) {
	docs := memory.NewStore()
	r, gw, sessions := guardedRouter(t, docs)
	authenticate(t, gw, sessions, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuardForbidsCustomerOnAdminRoute(t *testing.T) {
	docs := memory.NewStore()
	r, gw, sessions := guardedRouter(t, docs)
	authenticate(t, gw, sessions, &auth.Identity{ID: "u1"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGuardAllowsAdminOnAdminRoute(t *testing.T) {
	docs := memory.NewStore()
	require.NoError(t, docs.SetDocument(context.Background(), store.CollectionUsers, "boss", store.Document{
		"role": "admin",
	}))
	r, gw, sessions := guardedRouter(t, docs)
	authenticate(t, gw, sessions, &auth.Identity{ID: "boss"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

// While the session resolves, the guard waits rather than rejecting; a
// request deadline hit mid-resolution yields 503, never a sign-in redirect.
func TestGuardWaitsForResolution(t *testing.T) {
	docs := memory.NewStore()
	r, gw, _ := guardedRouter(t, docs)

	go func() {
		time.Sleep(20 * time.Millisecond)
		gw.Emit(&auth.Identity{ID: "u1"})
	}()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuardReportsPendingOnDeadline(t *testing.T) {
	docs := memory.NewStore()
	r, _, _ := guardedRouter(t, docs)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/me", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
