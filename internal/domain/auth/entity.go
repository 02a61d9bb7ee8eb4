// internal/domain/auth/entity.go
package auth

// Identity is the provider-issued user record. The session layer holds a
// read-only copy; the identity gateway owns it.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Provider    string `json:"provider"` // password, google.com, etc.
}

// Role is the access tier controlling which views are reachable.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a raw role value from a profile document to the closed
// enum. Absent or unrecognized values default to customer; the defaulting
// happens here, at the read boundary, and nowhere else.
func ParseRole(raw string) Role {
	if raw == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleCustomer
}

// Status describes where the session is in its resolution lifecycle.
type Status string

const (
	// StatusResolving is the initial state on every process start and on
	// every identity change until the role lookup completes.
	StatusResolving     Status = "resolving"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)
