package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/logger"
	"github.com/athukorala/storefront-api/pkg/redis"
)

// Store persists the whole cart blob per session.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, cart *Cart) error
	Clear(ctx context.Context, sessionID string) error
}

type cartKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// RedisStore keeps each session's cart as one JSON document. The whole
// blob is read-modify-written per mutation; sessions do not contend.
type RedisStore struct {
	kv   cartKV
	ttl  time.Duration
	logg *logger.Logger
}

// NewRedisStore wires the cart store onto the shared redis client.
func NewRedisStore(kv cartKV, ttl time.Duration, logg *logger.Logger) (*RedisStore, error) {
	if kv == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "redis client required")
	}
	return &RedisStore{kv: kv, ttl: ttl, logg: logg}, nil
}

// Load restores the cart. A missing key means an empty cart; a corrupt
// blob is dropped and logged, never surfaced to the shopper.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	key := s.kv.CartKey(sessionID)
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &Cart{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "discarding corrupt cart blob")
		}
		if delErr := s.kv.Del(ctx, key); delErr != nil && s.logg != nil {
			s.logg.Error(ctx, "removing corrupt cart blob", delErr)
		}
		return &Cart{}, nil
	}
	return &cart, nil
}

// Save writes the full line-item list back.
func (s *RedisStore) Save(ctx context.Context, sessionID string, cart *Cart) error {
	encoded, err := json.Marshal(cart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(sessionID), string(encoded), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

// Clear removes the cart blob.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.kv.Del(ctx, s.kv.CartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
