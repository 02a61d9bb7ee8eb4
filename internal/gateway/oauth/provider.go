// internal/gateway/oauth/provider.go
package oauth

import (
	"context"
	"fmt"
)

// Claims are the normalized identity facts returned by a provider. No auth
// decisions are made at this level.
type Claims struct {
	Subject  string
	Email    string
	Name     string
	Picture  string
	Provider string // provider tag, e.g. "google.com"
}

// Provider is the contract every external OAuth provider implements.
type Provider interface {
	// ID returns the provider identifier used by the registry ("google").
	ID() string

	// ProviderTag is the tag recorded on identities ("google.com").
	ProviderTag() string

	// AuthCodeURL builds the authorization URL for one flow state.
	AuthCodeURL(state string) string

	// Exchange trades the authorization code for normalized claims.
	Exchange(ctx context.Context, code string) (*Claims, error)
}

// Registry holds the configured providers by id.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(list ...Provider) *Registry {
	m := make(map[string]Provider, len(list))
	for _, p := range list {
		m[p.ID()] = p
	}
	return &Registry{providers: m}
}

// Get returns the provider by id or an error if not registered.
func (r *Registry) Get(id string) (Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("unknown oauth provider: %s", id)
	}
	return p, nil
}
