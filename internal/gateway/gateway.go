// internal/gateway/gateway.go
package gateway

import (
	"context"

	"tishe-service/internal/domain/auth"
)

// Gateway is the narrow interface the session layer consumes from the
// identity provider.
//
// Notification contract: OnAuthStateChanged callbacks fire in emission
// order. The first notification is emitted once the provider has determined
// its initial state (a restored identity, or nil); until then consumers are
// expected to treat the session as still resolving. Every subsequent
// sign-in/sign-out emits exactly one notification carrying the new identity
// (nil on sign-out).
type Gateway interface {
	// OnAuthStateChanged registers for identity-change notifications and
	// returns an unsubscribe func.
	OnAuthStateChanged(fn func(*auth.Identity)) (unsubscribe func())

	// SignInWithPassword authenticates with email/password. Failures are
	// classified: xerrors.ErrInvalidCredentials, ErrRateLimited, ErrNetwork,
	// or an unknown error. No notification is emitted on failure.
	SignInWithPassword(ctx context.Context, email, password string) (*auth.Identity, error)

	// SignInWithOAuth runs a provider-brokered flow (redirect/popup). An
	// abandoned flow returns xerrors.ErrFlowAborted and emits nothing.
	SignInWithOAuth(ctx context.Context, providerID string) (*auth.Identity, error)

	// SignUp creates a new identity and signs it in.
	SignUp(ctx context.Context, email, password, displayName string) (*auth.Identity, error)

	// SignOut revokes the current session. The nil-identity notification is
	// emitted only after revocation succeeds.
	SignOut(ctx context.Context) error
}
