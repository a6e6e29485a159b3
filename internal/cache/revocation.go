package cache

import (
	"context"
	"time"
)

const revokedPrefix = "session:revoked:"

// KV is the subset of Cache that revocation needs.
type KV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Exists(ctx context.Context, keys ...string) (int64, error)
}

// Revocations tracks logged-out session token ids until they would expire anyway.
type Revocations struct {
	kv KV
}

// NewRevocations creates a revocation list over kv.
func NewRevocations(kv KV) *Revocations {
	return &Revocations{kv: kv}
}

// Revoke marks a token id as revoked until expiresAt.
// Tokens that already expired need no entry.
func (r *Revocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.kv.Set(ctx, revokedPrefix+tokenID, "1", ttl)
}

// IsRevoked reports whether a token id was revoked.
func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.kv.Exists(ctx, revokedPrefix+tokenID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
