// password.go implements credential verification against stored bcrypt
// hashes. bcrypt's comparison is constant-time over the hash output, and the
// unknown-user path performs the same comparison work against a fixed dummy
// hash so the two failure modes are indistinguishable by timing — a
// correctness requirement, not a style choice.
package auth

import (
	"context"

	"github.com/taskboard/taskboard/internal/db/models"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost used for all stored password hashes.
const HashCost = 10

// dummyHash is a bcrypt hash of an unguessable throwaway value, compared
// against when the username does not resolve so that lookup misses cost the
// same as password mismatches.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserFinder is the slice of the identity store the verifier needs.
type UserFinder interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// HashPassword returns the bcrypt hash of a plaintext secret.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyCredentials checks a submitted username/secret pair against the
// identity store. The username lookup is an exact, case-sensitive match.
// Both an unknown username and a wrong secret return (nil, nil) through the
// same code path; the caller is responsible for recording a LOGIN_FAILED
// audit event on a nil identity.
func VerifyCredentials(ctx context.Context, users UserFinder, username, secret string) (*Identity, error) {
	user, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	hash := dummyHash
	if user != nil {
		hash = user.PasswordHash
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) != nil || user == nil {
		return nil, nil
	}

	return &Identity{
		UserID:         user.ID,
		Username:       user.Username,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
	}, nil
}
