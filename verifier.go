package goToken

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goToken/blacklist"
	"github.com/MrEthical07/goToken/jwt"
)

// Verifier validates a token's signature, expiry, revocation status, and the
// live account state behind it. The user snapshot is fetched on every call so
// deactivation takes effect immediately.
type Verifier struct {
	codec       *jwt.Manager
	revocations *blacklist.Store
	directory   UserDirectory
	failClosed  bool

	// onStoreError observes revocation-store failures that the availability
	// policy recovers from. Optional; used by the Engine for metrics/audit.
	onStoreError func(err error)
}

// NewVerifier creates a Verifier. failClosed selects the availability policy
// for revocation-store outages: false accepts the token (missed revocations
// heal at expiry), true rejects it as revoked.
func NewVerifier(codec *jwt.Manager, revocations *blacklist.Store, directory UserDirectory, failClosed bool) *Verifier {
	return &Verifier{
		codec:       codec,
		revocations: revocations,
		directory:   directory,
		failClosed:  failClosed,
	}
}

// Verify runs the four checks in order: codec (signature + expiry), revocation
// by jti, directory lookup by subject, active flag. The first failure wins and
// no later step runs, so a malformed token never touches Redis or the
// directory.
func (v *Verifier) Verify(ctx context.Context, tokenStr string) (*Identity, error) {
	claims, err := v.codec.Parse(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.ID != "" {
		revoked, err := v.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			if v.onStoreError != nil {
				v.onStoreError(err)
			}
			if v.failClosed {
				return nil, fmt.Errorf("%w: revocation check unavailable", ErrTokenRevoked)
			}
		} else if revoked {
			return nil, ErrTokenRevoked
		}
	}

	user, err := v.lookup(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, ErrAccountDeactivated
	}

	return &Identity{
		User:   *user,
		Claims: claims,
	}, nil
}

func (v *Verifier) lookup(ctx context.Context, id string) (*UserSnapshot, error) {
	if id == "" {
		return nil, ErrUserNotFound
	}

	user, err := v.directory.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}
