package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims carried by a client's bearer token. The
// SessionID must still exist in the session store for the token to be
// accepted at connection time.
type UserClaims struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}
