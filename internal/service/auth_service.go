package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/SamSnead85/622-sub012/internal/cache"
	"github.com/SamSnead85/622-sub012/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and validates the bearer tokens that gate the game
// socket. A token is only accepted while its session id is still present
// in the session store, so signatures alone are not enough.
type AuthService struct {
	jwtSecret []byte
	sessions  cache.SessionStore
}

// NewAuthService creates an auth service over the given session store.
func NewAuthService(sessions cache.SessionStore) *AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super-secret-key-change-in-production"
	}
	return &AuthService{
		jwtSecret: []byte(secret),
		sessions:  sessions,
	}
}

// Issue creates a bearer token for a logged-in user and registers its
// session in the store. The account service calls this at login.
func (s *AuthService) Issue(ctx context.Context, userID, name string) (string, error) {
	sessionID := uuid.New().String()

	claims := &model.UserClaims{
		UserID:    userID,
		Name:      name,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Save(ctx, sessionID, userID); err != nil {
		return "", err
	}
	return signed, nil
}

// Validate checks a bearer token's signature and confirms its session is
// still live in the store, refreshing the session TTL on success.
func (s *AuthService) Validate(ctx context.Context, tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if userID == "" || userID != claims.UserID {
		return nil, ErrInvalidToken
	}
	if err := s.sessions.Touch(ctx, claims.SessionID); err != nil {
		return nil, err
	}
	return claims, nil
}

// Revoke drops a session from the store, invalidating its token.
func (s *AuthService) Revoke(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}
