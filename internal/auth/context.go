package auth

import (
	"context"

	"aiContentStudio/models"
)

// Principal is the authenticated caller as read from the store on this
// request.
type Principal struct {
	UserID  int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Credits int64  `json:"credits"`
}

// IsAdmin reports whether the caller held the admin role when authenticated.
func (p *Principal) IsAdmin() bool { return p != nil && p.Role == models.RoleAdmin }

// PrincipalFromUser builds a principal from a freshly read user row.
func PrincipalFromUser(u *models.User) *Principal {
	return &Principal{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Credits: u.Credits}
}

type principalKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the principal from context (if any).
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
