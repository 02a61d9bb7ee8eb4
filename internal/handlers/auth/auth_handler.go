// internal/handlers/auth/auth_handler.go
package auth

import (
	"context"
	"errors"
	"net/http"

	"tishe-service/internal/domain/auth"
	"tishe-service/internal/gateway/oauth"
	"tishe-service/internal/pkg/response"
	"tishe-service/internal/session"

	xerrors "tishe-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OAuthGateway is the slice of the identity gateway the callback endpoints
// need. The session manager drives the rest.
type OAuthGateway interface {
	BeginOAuth(providerID string) (*oauth.Flow, error)
	CompleteOAuth(ctx context.Context, state, code string) (*auth.Identity, error)
}

type AuthHandler struct {
	sessions *session.Manager
	oauthGW  OAuthGateway
	logger   *zap.Logger
}

func NewAuthHandler(sessions *session.Manager, oauthGW OAuthGateway, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		oauthGW:  oauthGW,
		logger:   logger,
	}
}

// Login handles password sign-in.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.sessions.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		h.logger.Warn("login failed",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		response.Error(c, statusFor(err), "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", h.sessions.Snapshot().View())
}

// Signup handles account creation.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.sessions.Signup(c.Request.Context(), req.Email, req.Password, req.DisplayName); err != nil {
		h.logger.Warn("signup failed",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		response.Error(c, statusFor(err), "signup failed", err)
		return
	}

	response.Success(c, http.StatusCreated, "signup successful", h.sessions.Snapshot().View())
}

// Logout revokes the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context()); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "logout failed", err)
		return
	}
	response.Success(c, http.StatusOK, "logout successful", nil)
}

// Session returns the current session tuple. While resolution is in flight it
// waits, bounded by the request context, so clients never observe a guess.
func (h *AuthHandler) Session(c *gin.Context) {
	snap := h.sessions.WaitForResolution(c.Request.Context())
	response.Success(c, http.StatusOK, "session", snap.View())
}

// OAuthStart opens a provider-brokered flow and returns the redirect URL.
func (h *AuthHandler) OAuthStart(c *gin.Context) {
	providerID := c.Param("provider")

	flow, err := h.oauthGW.BeginOAuth(providerID)
	if err != nil {
		h.logger.Warn("oauth start failed",
			zap.String("provider", providerID),
			zap.Error(err),
		)
		response.Error(c, http.StatusBadRequest, "oauth start failed", err)
		return
	}

	response.Success(c, http.StatusOK, "oauth flow started", auth.OAuthStartResponse{
		Provider: providerID,
		AuthURL:  flow.AuthURL,
		State:    flow.State,
	})
}

// OAuthCallback redeems the provider redirect. Completing here signs the
// identity in; any blocked LoginWithOAuth call observes it through the
// gateway notification.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		response.ValidationError(c, "missing state or code", xerrors.ErrInvalidInput)
		return
	}

	identity, err := h.oauthGW.CompleteOAuth(c.Request.Context(), state, code)
	if err != nil {
		h.logger.Warn("oauth callback failed", zap.Error(err))
		response.Error(c, statusFor(err), "oauth sign-in failed", err)
		return
	}

	h.logger.Info("oauth sign-in completed",
		zap.String("identity_id", identity.ID),
		zap.String("provider", identity.Provider),
	)
	response.Success(c, http.StatusOK, "oauth sign-in completed", h.sessions.Snapshot().View())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, xerrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, xerrors.ErrDuplicateEntry):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrFlowAborted):
		return http.StatusBadRequest
	case errors.Is(err, xerrors.ErrInvalidInput):
		return http.StatusBadRequest
	case xerrors.IsNetwork(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
