// internal/gateway/local/session_store.go
package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tishe-service/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sessionKey = "gateway:session"

// sessionClaims is the persisted-session token payload.
type sessionClaims struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Provider    string `json:"provider"`
	jwt.RegisteredClaims
}

// SessionStore persists the signed-in identity across process restarts as a
// signed token in Redis. This is what makes the initial session state a
// resolution problem instead of a constant: on boot the slot may hold a
// still-valid identity.
type SessionStore struct {
	client *redis.Client
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

func NewSessionStore(client *redis.Client, secret []byte, ttl time.Duration, logger *zap.Logger) *SessionStore {
	return &SessionStore{client: client, secret: secret, ttl: ttl, logger: logger}
}

// Save signs the identity into the session slot.
func (s *SessionStore) Save(ctx context.Context, identity *auth.Identity) error {
	now := time.Now()
	claims := sessionClaims{
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		PhotoURL:    identity.PhotoURL,
		Provider:    identity.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	return nil
}

// Load restores the identity from the session slot. An empty slot or an
// invalid/expired token both restore to nil without error; only transport
// failures are errors.
func (s *SessionStore) Load(ctx context.Context) (*auth.Identity, error) {
	raw, err := s.client.Get(ctx, sessionKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session token: %w", err)
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		s.logger.Warn("discarding invalid persisted session token", zap.Error(err))
		return nil, nil
	}

	return &auth.Identity{
		ID:          claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		PhotoURL:    claims.PhotoURL,
		Provider:    claims.Provider,
	}, nil
}

// Clear empties the session slot.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}
