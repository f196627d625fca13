package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRepo keeps a deny list of logged-out session ids in Redis.  Each
// entry expires together with the token it revokes.  A nil client turns
// every call into a no-op, so sessions then live until their expiry.
type SessionRepo struct {
	rdb    *redis.Client
	prefix string
}

func NewSessionRepo(rdb *redis.Client, prefix string) *SessionRepo {
	if prefix == "" {
		prefix = "ireserve:session"
	}
	return &SessionRepo{rdb: rdb, prefix: prefix}
}

func (r *SessionRepo) key(jti string) string { return r.prefix + ":revoked:" + jti }

// Revoke marks jti as logged out until exp.
func (r *SessionRepo) Revoke(ctx context.Context, jti string, exp time.Time) error {
	if r.rdb == nil || jti == "" {
		return nil
	}
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, r.key(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti was logged out.
func (r *SessionRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r.rdb == nil || jti == "" {
		return false, nil
	}
	err := r.rdb.Get(ctx, r.key(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
