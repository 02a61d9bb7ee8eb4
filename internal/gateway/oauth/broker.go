// internal/gateway/oauth/broker.go
package oauth

import (
	"context"
	"sync"
	"time"

	xerrors "tishe-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
)

// flowTTL bounds how long an un-completed flow stays redeemable.
const flowTTL = 10 * time.Minute

// Flow is one in-progress provider-brokered sign-in.
type Flow struct {
	State   string
	AuthURL string

	provider Provider
	created  time.Time
}

// Broker tracks pending OAuth flows between the redirect out and the
// callback in. A flow the user walks away from simply expires; abandonment
// is not an error condition on the broker.
type Broker struct {
	registry *Registry

	mu      sync.Mutex
	pending map[string]*Flow
}

func NewBroker(registry *Registry) *Broker {
	return &Broker{
		registry: registry,
		pending:  make(map[string]*Flow),
	}
}

// Begin opens a flow for the provider and returns the authorization URL the
// user agent must visit.
func (b *Broker) Begin(providerID string) (*Flow, error) {
	provider, err := b.registry.Get(providerID)
	if err != nil {
		return nil, err
	}

	state := ulid.Make().String()
	flow := &Flow{
		State:    state,
		provider: provider,
		created:  time.Now(),
	}
	flow.AuthURL = provider.AuthCodeURL(state)

	b.mu.Lock()
	b.expireLocked()
	b.pending[state] = flow
	b.mu.Unlock()

	return flow, nil
}

// Complete redeems a callback. Unknown or expired state returns
// ErrFlowAborted: the flow it belonged to is gone.
func (b *Broker) Complete(ctx context.Context, state, code string) (*Claims, error) {
	b.mu.Lock()
	b.expireLocked()
	flow, ok := b.pending[state]
	if ok {
		delete(b.pending, state)
	}
	b.mu.Unlock()

	if !ok {
		return nil, xerrors.ErrFlowAborted
	}

	claims, err := flow.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Abandon drops a pending flow.
func (b *Broker) Abandon(state string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, state)
}

// expireLocked drops flows older than flowTTL. Callers hold b.mu.
func (b *Broker) expireLocked() {
	cutoff := time.Now().Add(-flowTTL)
	for state, flow := range b.pending {
		if flow.created.Before(cutoff) {
			delete(b.pending, state)
		}
	}
}
