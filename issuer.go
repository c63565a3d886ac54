package goToken

import (
	"fmt"
	"time"

	"github.com/MrEthical07/goToken/jwt"
	"github.com/google/uuid"
)

// Issuer mints access/refresh token pairs from one user identity snapshot.
// Both tokens share a claims template and differ only in jti and expiry.
type Issuer struct {
	codec      *jwt.Manager
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer creates an Issuer over the given codec and expiry horizons.
func NewIssuer(codec *jwt.Manager, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair signs an access and a refresh token for user. The two signings run
// concurrently; the pair is returned only when both succeed, so a caller never
// observes a half-issued pair. The role claim falls back to the least-privileged
// role for a zero-value snapshot role, which [Role] already guarantees.
func (i *Issuer) IssuePair(user UserSnapshot) (*TokenPair, error) {
	accessJTI := uuid.NewString()
	refreshJTI := uuid.NewString()

	role := user.Role.String()

	type signed struct {
		token string
		err   error
	}

	refreshCh := make(chan signed, 1)
	go func() {
		token, err := i.codec.Sign(
			jwt.NewClaims(user.ID, user.Email, user.Name, role, refreshJTI),
			i.refreshTTL,
		)
		refreshCh <- signed{token: token, err: err}
	}()

	access, accessErr := i.codec.Sign(
		jwt.NewClaims(user.ID, user.Email, user.Name, role, accessJTI),
		i.accessTTL,
	)
	refresh := <-refreshCh

	if accessErr != nil {
		return nil, fmt.Errorf("%w: access: %v", ErrIssueFailed, accessErr)
	}
	if refresh.err != nil {
		return nil, fmt.Errorf("%w: refresh: %v", ErrIssueFailed, refresh.err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh.token,
	}, nil
}
