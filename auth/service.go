// Package auth holds the credential store and token service: password
// hashing, bearer-token issuance, and token-to-user resolution.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tdnguyen/novelnest/datastore"
	"github.com/tdnguyen/novelnest/models"
)

// Tokens expire a fixed window after issuance.
const tokenLifetime = 59 * time.Minute

var (
	// ErrInvalidCredentials covers both an unknown username and a hash
	// mismatch. Callers cannot tell the two apart, so failed logins
	// leak no user-enumeration signal.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers a bad signature, an expired token, and a
	// missing subject claim.
	ErrInvalidToken = errors.New("invalid token")
)

// Service issues and validates bearer tokens against the user store.
type Service struct {
	users  *datastore.UserRepository
	secret []byte
}

func NewService(users *datastore.UserRepository, secret []byte) *Service {
	return &Service{users: users, secret: secret}
}

// Authenticate verifies a username/password pair and returns the user.
// Every failure path returns ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user for login: %w", err)
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken signs an HS256 token with subject = username and the fixed
// expiry window.
func (s *Service) IssueToken(username string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// DecodeToken verifies the signature and expiry, then re-resolves the
// subject to a current user record. The lookup filters on the active
// flag, so a deactivated user's still-valid tokens stop authenticating
// immediately. Signature, expiry, and missing-subject failures are
// ErrInvalidToken; a vanished or deactivated user is
// datastore.ErrNotFound.
func (s *Service) DecodeToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetActiveUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return nil, fmt.Errorf("token subject %q: %w", claims.Subject, datastore.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	return user, nil
}
