// internal/session/manager.go
package session

import (
	"context"
	"sync"
	"time"

	"tishe-service/internal/domain/auth"
	"tishe-service/internal/gateway"
	"tishe-service/internal/store"

	xerrors "tishe-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// Manager is the single source of truth for "who is signed in and with what
// role". One instance is constructed per process and passed explicitly to
// every consumer.
//
// State transitions only happen in response to gateway notifications; the
// auth actions (Login, Signup, Logout) never mutate session state directly.
// Each notification bumps a generation counter, and a role lookup that
// completes under a stale generation is discarded, so an earlier identity's
// slow lookup can never overwrite state derived from a newer notification.
type Manager struct {
	gw     gateway.Gateway
	docs   store.DocumentStore
	logger *zap.Logger

	mu          sync.Mutex
	snap        Snapshot
	generation  uint64
	subscribers map[int]func(Snapshot)
	nextSubID   int
	resolved    chan struct{} // closed once status leaves resolving

	unsubscribe func()
}

// NewManager builds the manager and registers with the gateway. The session
// starts in resolving and stays there until the gateway's initial
// notification arrives.
func NewManager(gw gateway.Gateway, docs store.DocumentStore, logger *zap.Logger) *Manager {
	m := &Manager{
		gw:          gw,
		docs:        docs,
		logger:      logger,
		snap:        Snapshot{Status: auth.StatusResolving},
		subscribers: make(map[int]func(Snapshot)),
		resolved:    make(chan struct{}),
	}
	m.unsubscribe = gw.OnAuthStateChanged(m.handleAuthState)
	return m
}

// Close detaches the manager from the gateway.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Snapshot returns the current session state synchronously.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Subscribe registers for session state transitions and returns an
// unsubscribe func. The current state is delivered synchronously before
// Subscribe returns, so a late consumer cannot miss the state it mounted
// into. Callbacks run in transition order and must not call back into the
// manager.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	fn(m.snap)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// WaitForResolution blocks while the session is resolving. It returns the
// resolved snapshot, or the current one if ctx expires first. Guards use
// this so a protected view is never redirected mid-resolution.
func (m *Manager) WaitForResolution(ctx context.Context) Snapshot {
	for {
		m.mu.Lock()
		snap := m.snap
		ch := m.resolved
		m.mu.Unlock()

		if snap.Status != auth.StatusResolving {
			return snap
		}
		select {
		case <-ctx.Done():
			return snap
		case <-ch:
		}
	}
}

// Login delegates to the gateway. On success the gateway's notification
// drives the same resolution path as an external identity change; on failure
// the classified error is returned and session state is untouched.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if _, err := m.gw.SignInWithPassword(ctx, email, password); err != nil {
		return err
	}
	return nil
}

// LoginWithOAuth runs a provider-brokered sign-in flow. An abandoned flow
// surfaces as xerrors.ErrFlowAborted with no state change; callers should
// treat it as a cancellation, not a failure.
func (m *Manager) LoginWithOAuth(ctx context.Context, providerID string) error {
	if _, err := m.gw.SignInWithOAuth(ctx, providerID); err != nil {
		return err
	}
	return nil
}

// Signup creates an identity, then creates the matching profile document
// with the default customer role. The two writes are not atomic: identity
// creation succeeding is the user-visible contract, so a failed profile
// write is logged and absorbed — the session still resolves to
// authenticated/customer through the defaulting role lookup.
func (m *Manager) Signup(ctx context.Context, email, password, displayName string) error {
	identity, err := m.gw.SignUp(ctx, email, password, displayName)
	if err != nil {
		return err
	}

	profile := store.Document{
		"uid":         identity.ID,
		"email":       identity.Email,
		"displayName": identity.DisplayName,
		"photoURL":    identity.PhotoURL,
		"provider":    identity.Provider,
		"role":        string(auth.RoleCustomer),
		"createdAt":   time.Now().UTC().Format(time.RFC3339),
	}
	if err := m.docs.SetDocument(ctx, store.CollectionUsers, identity.ID, profile); err != nil {
		m.logger.Error("profile document write failed after signup",
			zap.String("identity_id", identity.ID),
			zap.Error(err),
		)
	}
	return nil
}

// Logout delegates to the gateway; the transition to anonymous happens only
// once the gateway confirms and emits its nil-identity notification. That
// notification supersedes any role lookup still in flight for the outgoing
// identity.
func (m *Manager) Logout(ctx context.Context) error {
	return m.gw.SignOut(ctx)
}

// handleAuthState processes one gateway notification. Notifications arrive
// in emission order; each one supersedes any pending role lookup.
func (m *Manager) handleAuthState(identity *auth.Identity) {
	m.mu.Lock()
	m.generation++
	gen := m.generation

	if identity == nil {
		m.transitionLocked(Snapshot{Status: auth.StatusAnonymous})
		m.mu.Unlock()
		return
	}

	m.transitionLocked(Snapshot{Status: auth.StatusResolving, Identity: identity})
	m.mu.Unlock()

	go m.resolveRole(gen, identity)
}

// resolveRole reads the identity's profile document and promotes the session
// to authenticated. A missing profile or a failed read both fall open to the
// least-privileged role; only the failure is logged.
func (m *Manager) resolveRole(gen uint64, identity *auth.Identity) {
	role := auth.RoleCustomer

	doc, err := m.docs.GetDocument(context.Background(), store.CollectionUsers, identity.ID)
	switch {
	case err == nil:
		role = auth.ParseRole(doc.String("role"))
	case xerrors.Is(err, xerrors.ErrNotFound):
		// absent profile is the default case, not an error
	default:
		m.logger.Warn("role lookup failed, defaulting to customer",
			zap.String("identity_id", identity.ID),
			zap.Error(err),
		)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		// a newer notification superseded this lookup
		return
	}
	m.transitionLocked(Snapshot{
		Status:   auth.StatusAuthenticated,
		Identity: identity,
		Role:     role,
	})
}

// transitionLocked swaps in the new snapshot, maintains the resolution
// barrier, and fans the transition out to subscribers in order. Callers hold
// m.mu.
func (m *Manager) transitionLocked(snap Snapshot) {
	wasResolving := m.snap.Status == auth.StatusResolving
	m.snap = snap

	if snap.Status == auth.StatusResolving {
		if !wasResolving {
			m.resolved = make(chan struct{})
		}
	} else if wasResolving {
		close(m.resolved)
	}

	for _, fn := range m.subscribers {
		fn(snap)
	}
}
