// Package auth is the identity gate: it issues and verifies identity tokens,
// hashes passwords and turns a bearer token into a Principal by re-reading
// the user from the store on every request.
package auth

import (
	"context"
	"errors"
	"strings"

	"aiContentStudio/internal/apperr"
	"aiContentStudio/models"
)

// UserLookup reads the authoritative user row.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Authenticator verifies tokens and loads the live user behind them.
type Authenticator struct {
	issuer *Issuer
	users  UserLookup
}

func NewAuthenticator(issuer *Issuer, users UserLookup) *Authenticator {
	return &Authenticator{issuer: issuer, users: users}
}

// Issuer returns the token issuer the authenticator verifies against.
func (a *Authenticator) Issuer() *Issuer { return a.issuer }

// Authenticate verifies tokenStr and returns the caller with their current
// role, name and credits. A token for a deleted user is rejected.
func (a *Authenticator) Authenticate(ctx context.Context, tokenStr string) (*Principal, error) {
	id, err := a.issuer.Verify(tokenStr)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, apperr.Unauthenticated("Token expired")
		}
		return nil, apperr.Unauthenticated("Invalid token")
	}
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.Unauthenticated("User not found")
	}
	return PrincipalFromUser(u), nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", apperr.Unauthenticated("Access token required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperr.Unauthenticated("Invalid authorization header")
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", apperr.Unauthenticated("Access token required")
	}
	return tok, nil
}

// RequirePrincipal ensures a principal is present in context.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, apperr.Unauthenticated("Access token required")
	}
	return p, nil
}

// RequireAdmin ensures the caller held the admin role when this request was
// authenticated.
func RequireAdmin(ctx context.Context) (*Principal, error) {
	p, err := RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		return nil, apperr.Forbidden("Admin access required")
	}
	return p, nil
}
