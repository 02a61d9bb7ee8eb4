// internal/middleware/guard.go
package middleware

import (
	"net/http"

	"tishe-service/internal/domain/auth"
	"tishe-service/internal/pkg/response"
	"tishe-service/internal/session"

	"github.com/gin-gonic/gin"
)

// Requirement is what a protected view demands of the session.
type Requirement int

const (
	RequireNone Requirement = iota
	RequireAuthenticated
	RequireAdmin
)

// Decision is the guard's verdict for one navigation.
type Decision int

const (
	// DecisionPending means the session is still resolving: the view must
	// neither proceed nor redirect. Redirecting here would bounce users
	// with a valid persisted session to the login page and back.
	DecisionPending Decision = iota
	DecisionAllowed
	// DecisionSignIn means the session resolved anonymous; redirect to login.
	DecisionSignIn
	// DecisionForbidden means authenticated but lacking the required role.
	DecisionForbidden
)

// Allow is the pure access decision over a session snapshot.
func Allow(snap session.Snapshot, req Requirement) Decision {
	if req == RequireNone {
		return DecisionAllowed
	}
	switch snap.Status {
	case auth.StatusResolving:
		return DecisionPending
	case auth.StatusAnonymous:
		return DecisionSignIn
	}
	if req == RequireAdmin && snap.Role != auth.RoleAdmin {
		return DecisionForbidden
	}
	return DecisionAllowed
}

// Guard gates protected routes against the shared session manager.
type Guard struct {
	sessions *session.Manager
}

func NewGuard(sessions *session.Manager) *Guard {
	return &Guard{sessions: sessions}
}

// RequireAuth admits only authenticated sessions. A resolving session is
// waited on (bounded by the request context) rather than rejected.
func (g *Guard) RequireAuth() gin.HandlerFunc {
	return g.require(RequireAuthenticated)
}

// RequireAdmin admits only authenticated sessions carrying the admin role.
// MUST guard every admin view; customer sessions get 403, not a redirect.
func (g *Guard) RequireAdmin() gin.HandlerFunc {
	return g.require(RequireAdmin)
}

func (g *Guard) require(req Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := g.sessions.WaitForResolution(c.Request.Context())

		switch Allow(snap, req) {
		case DecisionAllowed:
			c.Set("identity_id", snap.Identity.ID)
			c.Set("role", string(snap.Role))
			c.Next()
		case DecisionPending:
			// request deadline hit while the session was still resolving
			response.Error(c, http.StatusServiceUnavailable, "session still resolving", nil)
		case DecisionSignIn:
			response.Unauthorized(c, "sign in required")
		case DecisionForbidden:
			response.Forbidden(c, "insufficient permissions")
		}
	}
}

// GetIdentityID returns the guarded request's identity id.
func GetIdentityID(c *gin.Context) (string, bool) {
	v, exists := c.Get("identity_id")
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// IsAdmin reports whether the guarded request carries the admin role.
func IsAdmin(c *gin.Context) bool {
	v, exists := c.Get("role")
	if !exists {
		return false
	}
	role, ok := v.(string)
	return ok && role == string(auth.RoleAdmin)
}
