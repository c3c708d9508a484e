// Package auth implements credential verification and bearer-token handling.
//
// jwt.go covers the token issuer/parser: a verified identity becomes a signed,
// time-bound HS256 token embedding {sub, username, role}; parsing verifies the
// signature and expiration and reconstructs the claims without any store
// lookup. The organization ID is deliberately not embedded — callers that need
// organization scoping re-fetch the user row by the token's subject, so a
// membership change takes effect on the next request instead of surviving
// until token expiry.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taskboard/taskboard/internal/db/models"
)

// DefaultTokenTTL is the token lifetime when none is configured.
const DefaultTokenTTL = 24 * time.Hour

const tokenIssuer = "taskboard"

// ErrInvalidToken is returned for any token that fails signature, expiry, or
// structural checks. Callers surface it uniformly as unauthorized without
// leaking which check failed.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the transient actor identity carried through a request. It is
// never persisted; it is produced by credential verification at login and
// reconstructed from token claims (plus a user re-fetch) on every request.
type Identity struct {
	UserID         int64
	Username       string
	Role           models.Role
	OrganizationID *int64
}

// Claims is the JWT claims structure. UserID shadows the registered "sub"
// claim so the subject is serialized as an integer user ID.
type Claims struct {
	UserID   int64       `json:"sub"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed bearer token for a verified identity.
// A zero ttl falls back to DefaultTokenTTL.
func GenerateToken(identity Identity, secret string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := &Claims{
		UserID:   identity.UserID,
		Username: identity.Username,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and validates a bearer token, returning the embedded
// claims. Expired, tampered, and structurally invalid tokens all return
// ErrInvalidToken.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
