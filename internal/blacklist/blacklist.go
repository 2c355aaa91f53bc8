// Package blacklist records revoked refresh tokens.
package blacklist

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyRevoked is returned when the same token id is revoked twice.
var ErrAlreadyRevoked = errors.New("token already revoked")

type Blacklist interface {
	// Revoke stores jti until expiresAt. Revoking a jti twice returns ErrAlreadyRevoked.
	Revoke(ctx context.Context, jti string, userID uint64, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
