package goToken

import "errors"

var (
	// ErrUnauthorized is an exported constant or variable used by the token engine.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is an exported constant or variable used by the token engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is an exported constant or variable used by the token engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenInvalid is an exported constant or variable used by the token engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenRevoked is an exported constant or variable used by the token engine.
	ErrTokenRevoked = errors.New("token has been revoked")
	// ErrAccountDeactivated is an exported constant or variable used by the token engine.
	ErrAccountDeactivated = errors.New("account is deactivated")
	// ErrRefreshInvalid is an exported constant or variable used by the token engine.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrRefreshRateLimited is an exported constant or variable used by the token engine.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrLoginRateLimited is an exported constant or variable used by the token engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrBlacklistUnavailable is an exported constant or variable used by the token engine.
	ErrBlacklistUnavailable = errors.New("blacklist backend unavailable")
	// ErrIssueFailed is an exported constant or variable used by the token engine.
	ErrIssueFailed = errors.New("token issuance failed")
	// ErrEngineNotReady is an exported constant or variable used by the token engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrCredentialVerifierRequired is an exported constant or variable used by the token engine.
	ErrCredentialVerifierRequired = errors.New("credential verifier not configured")
)
