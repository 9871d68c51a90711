// Package cache provides a Redis read-through cache in front of session lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/logger"
	"alcyxob/gym-attendance/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const DefaultSessionTTL = 10 * time.Minute

// SessionCache implements repository.SessionLookup. Redis failures degrade to
// reading the underlying store; they never fail a lookup.
type SessionCache struct {
	next repository.SessionLookup
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

// NewSessionCache wraps next with a Redis read-through layer. Sessions are
// immutable once created, so entries only leave the cache by expiring.
func NewSessionCache(next repository.SessionLookup, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *SessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionCache{next: next, rdb: rdb, ttl: ttl, log: log}
}

func sessionKey(id primitive.ObjectID) string {
	return "session:" + id.Hex()
}

// GetByID serves the session from Redis when possible, otherwise from the
// underlying store, caching the result for ttl.
func (c *SessionCache) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	key := sessionKey(id)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var s domain.Session
		if jsonErr := json.Unmarshal(raw, &s); jsonErr == nil {
			return &s, nil
		}
		c.log.Warn("discarding undecodable cached session", zap.String(logger.FieldSessionID, id.Hex()))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("session cache read failed", zap.String(logger.FieldSessionID, id.Hex()), zap.Error(err))
	}

	s, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(s); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("session cache write failed", zap.String(logger.FieldSessionID, id.Hex()), zap.Error(err))
		}
	}
	return s, nil
}

