package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore tracks sessions invalidated before their natural expiry.
type RevocationStore interface {
	// RevokeSession invalidates one session until expiresAt.
	RevokeSession(ctx context.Context, sessionID string, expiresAt time.Time) error
	// RevokeUser invalidates every session of userID issued at or before at.
	RevokeUser(ctx context.Context, userID string, at time.Time) error
	IsRevoked(ctx context.Context, s *Session) (bool, error)
}

const (
	sessionRevokedPrefix = "auth:revoked:"
	userRevokedPrefix    = "auth:user-revoked:"
)

// RedisRevocationStore keeps revocation markers in Redis with a TTL equal to
// the remaining session lifetime, so the key space never outgrows the set of
// live sessions.
type RedisRevocationStore struct {
	client     *redis.Client
	sessionTTL time.Duration
	now        func() time.Time
}

func NewRedisRevocationStore(client *redis.Client, sessionTTL time.Duration) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, sessionTTL: sessionTTL, now: time.Now}
}

func (s *RedisRevocationStore) RevokeSession(ctx context.Context, sessionID string, expiresAt time.Time) error {
	if sessionID == "" {
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, sessionRevokedPrefix+sessionID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *RedisRevocationStore) RevokeUser(ctx context.Context, userID string, at time.Time) error {
	if userID == "" {
		return nil
	}
	// Any session issued before at expires within one TTL of it.
	ttl := at.Add(s.sessionTTL).Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	val := strconv.FormatInt(at.Unix(), 10)
	if err := s.client.Set(ctx, userRevokedPrefix+userID, val, ttl).Err(); err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}
	return nil
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, sess *Session) (bool, error) {
	n, err := s.client.Exists(ctx, sessionRevokedPrefix+sess.ID).Result()
	if err != nil {
		return false, fmt.Errorf("check session revocation: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	val, err := s.client.Get(ctx, userRevokedPrefix+sess.UserID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user revocation: %w", err)
	}
	revokedAt, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse user revocation marker: %w", err)
	}
	// Token timestamps have second precision.
	return sess.IssuedAt.Unix() <= revokedAt, nil
}

// NopRevocationStore never revokes anything: sessions stay valid until expiry.
type NopRevocationStore struct{}

func (NopRevocationStore) RevokeSession(context.Context, string, time.Time) error { return nil }
func (NopRevocationStore) RevokeUser(context.Context, string, time.Time) error    { return nil }
func (NopRevocationStore) IsRevoked(context.Context, *Session) (bool, error)      { return false, nil }

// ConnectRedis accepts either a redis:// URL or a bare host:port address.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}
