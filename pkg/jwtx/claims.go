package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// AccountKind distinguishes regular customers from student accounts.
type AccountKind string

const (
	KindUser    AccountKind = "user"
	KindStudent AccountKind = "student"
)

// PreauthDenied is the preauthorization claim value meaning "not preauthorized".
const PreauthDenied = "N"

// Claims are the access-token claims the client reads. They are decoded
// without signature verification and must only drive local UI decisions.
type Claims struct {
	jwt.RegisteredClaims

	// Username for the authenticated account
	Username string `json:"username,omitempty"`

	Email string `json:"email,omitempty"`

	// Role is optional, staff accounts carry one
	Role string `json:"role,omitempty"`

	// Kind is "user" or "student"
	Kind AccountKind `json:"type,omitempty"`

	// Preauth is present when the account went through preauthorization.
	// "N" means it was explicitly denied.
	Preauth *string `json:"preauth,omitempty"`
}

// IsStudent reports whether the claims describe a student account.
func (c *Claims) IsStudent() bool {
	return c.Kind == KindStudent
}

// IsPreauthorized is true when the preauth claim is present and not "N".
func (c *Claims) IsPreauthorized() bool {
	return c.Preauth != nil && *c.Preauth != PreauthDenied
}

// Expiration returns the exp claim, if any.
func (c *Claims) Expiration() (time.Time, bool) {
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// ValidateExpiry ensures the token hasn’t expired (exp) and isn’t before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}

// ExpiresWithin reports whether the token expires in less than d from now.
// Tokens without exp never expire.
func (c *Claims) ExpiresWithin(d time.Duration) bool {
	exp, ok := c.Expiration()
	if !ok {
		return false
	}
	return time.Until(exp) < d
}
