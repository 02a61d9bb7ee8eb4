// internal/domain/auth/dto.go
package auth

// LoginRequest for password login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest for account creation
type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

// SessionView is the session tuple exposed to the view layer.
type SessionView struct {
	Status   Status    `json:"status"`
	Identity *Identity `json:"identity,omitempty"`
	Role     Role      `json:"role,omitempty"`
}

// OAuthStartResponse carries the redirect URL for a provider-brokered flow.
type OAuthStartResponse struct {
	Provider string `json:"provider"`
	AuthURL  string `json:"auth_url"`
	State    string `json:"state"`
}
