// internal/gateway/local/local.go
package local

import (
	"context"
	"errors"
	"strings"
	"sync"

	"tishe-service/internal/domain/auth"
	"tishe-service/internal/gateway"
	"tishe-service/internal/gateway/oauth"
	"tishe-service/internal/repository/postgres"

	xerrors "tishe-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Gateway is the identity provider this deployment ships with: credentials
// in Postgres, the signed-in identity persisted in Redis across restarts,
// and OAuth brokered through the provider registry.
//
// It implements gateway.Gateway. Auth-state notifications are emitted in a
// strict order: the restore result first (from Start), then one notification
// per sign-in/sign-out.
type Gateway struct {
	repo     *postgres.IdentityRepository
	sessions *SessionStore
	limiter  *RateLimiter
	broker   *oauth.Broker
	logger   *zap.Logger

	mu        sync.Mutex
	emitMu    sync.Mutex
	current   *auth.Identity
	started   bool
	listeners []listener
	nextID    int
	waiters   map[string]chan *auth.Identity
}

type listener struct {
	id int
	fn func(*auth.Identity)
}

var _ gateway.Gateway = (*Gateway)(nil)

func NewGateway(
	repo *postgres.IdentityRepository,
	sessions *SessionStore,
	limiter *RateLimiter,
	broker *oauth.Broker,
	logger *zap.Logger,
) *Gateway {
	return &Gateway{
		repo:     repo,
		sessions: sessions,
		limiter:  limiter,
		broker:   broker,
		logger:   logger,
		waiters:  make(map[string]chan *auth.Identity),
	}
}

// Start restores the persisted session and emits the initial notification.
// Listeners registered before Start hear nothing until it runs; that window
// is what the session layer's resolving state covers.
func (g *Gateway) Start(ctx context.Context) {
	var identity *auth.Identity
	if g.sessions != nil {
		restored, err := g.sessions.Load(ctx)
		if err != nil {
			g.logger.Warn("failed to restore persisted session, starting signed out", zap.Error(err))
		} else {
			identity = restored
		}
	}

	g.mu.Lock()
	g.started = true
	g.mu.Unlock()

	g.emit(identity)
}

// OnAuthStateChanged registers a listener. Once the gateway has started, the
// current identity is delivered synchronously on registration.
func (g *Gateway) OnAuthStateChanged(fn func(*auth.Identity)) func() {
	g.emitMu.Lock()
	defer g.emitMu.Unlock()

	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners = append(g.listeners, listener{id: id, fn: fn})
	started := g.started
	current := g.current
	g.mu.Unlock()

	if started {
		fn(current)
	}

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, l := range g.listeners {
			if l.id == id {
				g.listeners = append(g.listeners[:i], g.listeners[i+1:]...)
				break
			}
		}
	}
}

// SignInWithPassword authenticates against the credential store.
func (g *Gateway) SignInWithPassword(ctx context.Context, email, password string) (*auth.Identity, error) {
	email = normalizeEmail(email)

	if g.limiter != nil {
		allowed, err := g.limiter.CheckLoginAttempt(ctx, email)
		if err != nil {
			// fail open: a broken limiter must not lock everyone out
			g.logger.Warn("login rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			return nil, xerrors.ErrRateLimited
		}
	}

	cred, err := g.repo.FindByEmail(ctx, email)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, xerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, xerrors.Wrap(err, "credential lookup failed")
	}
	if cred.PasswordHash == "" {
		// OAuth-only account
		return nil, xerrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, xerrors.ErrInvalidCredentials
	}

	if g.limiter != nil {
		if err := g.limiter.ResetLoginAttempts(ctx, email); err != nil {
			g.logger.Warn("failed to reset login attempts", zap.Error(err))
		}
	}
	if err := g.repo.TouchLastLogin(ctx, cred.ID); err != nil {
		g.logger.Warn("failed to record last login", zap.String("identity_id", cred.ID), zap.Error(err))
	}

	identity := credentialIdentity(cred)
	g.persist(ctx, identity)
	g.emit(identity)
	return identity, nil
}

// SignUp creates a password identity and signs it in.
func (g *Gateway) SignUp(ctx context.Context, email, password, displayName string) (*auth.Identity, error) {
	email = normalizeEmail(email)

	exists, err := g.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to check email")
	}
	if exists {
		return nil, xerrors.ErrDuplicateEntry
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to hash password")
	}

	cred := &postgres.Credential{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Provider:     "password",
	}
	if err := g.repo.Create(ctx, cred); err != nil {
		return nil, xerrors.Wrap(err, "failed to create identity")
	}

	identity := credentialIdentity(cred)
	g.persist(ctx, identity)
	g.emit(identity)
	return identity, nil
}

// BeginOAuth opens a provider-brokered flow; the view layer sends the user
// agent to flow.AuthURL.
func (g *Gateway) BeginOAuth(providerID string) (*oauth.Flow, error) {
	if g.broker == nil {
		return nil, errors.New("oauth is not configured")
	}
	return g.broker.Begin(providerID)
}

// CompleteOAuth redeems a provider callback, upserting the identity and
// signing it in.
func (g *Gateway) CompleteOAuth(ctx context.Context, state, code string) (*auth.Identity, error) {
	if g.broker == nil {
		return nil, errors.New("oauth is not configured")
	}

	claims, err := g.broker.Complete(ctx, state, code)
	if err != nil {
		return nil, err
	}

	identity, err := g.upsertOAuthIdentity(ctx, claims)
	if err != nil {
		return nil, err
	}

	g.persist(ctx, identity)
	g.emit(identity)

	g.mu.Lock()
	waiter := g.waiters[state]
	delete(g.waiters, state)
	g.mu.Unlock()
	if waiter != nil {
		waiter <- identity
	}
	return identity, nil
}

// SignInWithOAuth runs a full brokered flow and blocks until the callback
// lands or ctx gives up. The caller's context is the abandonment signal: a
// user closing the popup simply never completes the flow.
func (g *Gateway) SignInWithOAuth(ctx context.Context, providerID string) (*auth.Identity, error) {
	flow, err := g.BeginOAuth(providerID)
	if err != nil {
		return nil, err
	}

	waiter := make(chan *auth.Identity, 1)
	g.mu.Lock()
	g.waiters[flow.State] = waiter
	g.mu.Unlock()

	g.logger.Info("oauth flow started",
		zap.String("provider", providerID),
		zap.String("state", flow.State),
	)

	select {
	case identity := <-waiter:
		return identity, nil
	case <-ctx.Done():
		g.broker.Abandon(flow.State)
		g.mu.Lock()
		delete(g.waiters, flow.State)
		g.mu.Unlock()
		return nil, xerrors.ErrFlowAborted
	}
}

// SignOut revokes the persisted session, then notifies. The order matters:
// the nil notification must mean the gateway has already let go.
func (g *Gateway) SignOut(ctx context.Context) error {
	if g.sessions != nil {
		if err := g.sessions.Clear(ctx); err != nil {
			return err
		}
	}
	g.emit(nil)
	return nil
}

// emit delivers one notification to every listener, serialized so delivery
// order matches emission order.
func (g *Gateway) emit(identity *auth.Identity) {
	g.emitMu.Lock()
	defer g.emitMu.Unlock()

	g.mu.Lock()
	g.current = identity
	listeners := make([]listener, len(g.listeners))
	copy(listeners, g.listeners)
	g.mu.Unlock()

	for _, l := range listeners {
		l.fn(identity)
	}
}

func (g *Gateway) persist(ctx context.Context, identity *auth.Identity) {
	if g.sessions == nil {
		return
	}
	if err := g.sessions.Save(ctx, identity); err != nil {
		g.logger.Warn("failed to persist session", zap.Error(err))
	}
}

// upsertOAuthIdentity links provider claims to a local identity row,
// creating one on first sign-in.
func (g *Gateway) upsertOAuthIdentity(ctx context.Context, claims *oauth.Claims) (*auth.Identity, error) {
	email := normalizeEmail(claims.Email)

	cred, err := g.repo.FindByEmail(ctx, email)
	if errors.Is(err, xerrors.ErrNotFound) {
		cred = &postgres.Credential{
			ID:          ulid.Make().String(),
			Email:       email,
			DisplayName: claims.Name,
			PhotoURL:    claims.Picture,
			Provider:    claims.Provider,
		}
		if err := g.repo.Create(ctx, cred); err != nil {
			return nil, xerrors.Wrap(err, "failed to create oauth identity")
		}
	} else if err != nil {
		return nil, xerrors.Wrap(err, "credential lookup failed")
	}

	if err := g.repo.TouchLastLogin(ctx, cred.ID); err != nil {
		g.logger.Warn("failed to record last login", zap.String("identity_id", cred.ID), zap.Error(err))
	}
	return credentialIdentity(cred), nil
}

func credentialIdentity(cred *postgres.Credential) *auth.Identity {
	return &auth.Identity{
		ID:          cred.ID,
		Email:       cred.Email,
		DisplayName: cred.DisplayName,
		PhotoURL:    cred.PhotoURL,
		Provider:    cred.Provider,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
