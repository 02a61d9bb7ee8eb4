// internal/session/types.go
package session

import "tishe-service/internal/domain/auth"

// Snapshot is the session tuple shared by every consumer: who is signed in,
// with what role, and how far along resolution is.
//
// Invariant: Status == StatusAuthenticated implies Identity and Role are both
// populated and consistent with the last gateway notification.
type Snapshot struct {
	Status   auth.Status
	Identity *auth.Identity
	Role     auth.Role
}

// Authenticated reports whether the session has resolved to a signed-in user.
func (s Snapshot) Authenticated() bool {
	return s.Status == auth.StatusAuthenticated
}

// IsAdmin reports whether the resolved session carries the admin role.
func (s Snapshot) IsAdmin() bool {
	return s.Status == auth.StatusAuthenticated && s.Role == auth.RoleAdmin
}

// View converts the snapshot to its wire representation.
func (s Snapshot) View() auth.SessionView {
	return auth.SessionView{
		Status:   s.Status,
		Identity: s.Identity,
		Role:     s.Role,
	}
}
