package goToken

import (
	"context"

	"github.com/MrEthical07/goToken/jwt"
)

// Role is the closed set of authorization roles carried in token claims.
// Unknown or absent role strings resolve to [RoleViewer], the least-privileged
// role.
type Role uint8

const (
	// RoleViewer is an exported constant or variable used by the token engine.
	RoleViewer Role = iota
	// RoleEditor is an exported constant or variable used by the token engine.
	RoleEditor
	// RoleAdmin is an exported constant or variable used by the token engine.
	RoleAdmin
)

// String returns the wire representation of the role.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleEditor:
		return "editor"
	default:
		return "viewer"
	}
}

// ParseRole maps a role string to its [Role] value. The second return is false
// when the string names no known role; callers that need the least-privilege
// fallback can ignore it.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "admin":
		return RoleAdmin, true
	case "editor":
		return RoleEditor, true
	case "viewer":
		return RoleViewer, true
	default:
		return RoleViewer, false
	}
}

// UserSnapshot is the account view fetched from the [UserDirectory]. It is read
// fresh on every verify and refresh and never cached by this package.
type UserSnapshot struct {
	ID     string
	Email  string
	Name   string
	Role   Role
	Active bool
}

// TokenPair holds two independently signed token strings minted from one user
// snapshot. A pair is never partially issued: if either signing fails, neither
// token is returned.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Identity is returned by [Engine.Verify]. It merges the fresh user snapshot
// with the claims of the presented token so callers can reach both the account
// state and the token metadata (jti, expiry) for later revocation.
type Identity struct {
	User   UserSnapshot
	Claims *jwt.Claims
}

// UserDirectory is the narrow lookup interface callers must implement.
// Implementations return [ErrUserNotFound] (or a nil snapshot) when no account
// exists for the id.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*UserSnapshot, error)
}

// CredentialVerifier validates an email/password pair and returns the stable
// user identifier on success. Implementations return [ErrInvalidCredentials]
// on mismatch; goToken never sees the password storage behind this interface.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, email, password string) (string, error)
}

// BlacklistStats is the admin introspection view of the revocation store.
type BlacklistStats struct {
	Count      int64
	MemoryUsed int64
}
