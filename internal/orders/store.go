package orders

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/logger"
	"github.com/athukorala/storefront-api/pkg/redis"
)

// Store persists the session's last-order summary for the confirmation
// page.
type Store interface {
	SaveLast(ctx context.Context, sessionID string, summary *Summary) error
	LoadLast(ctx context.Context, sessionID string) (*Summary, error)
	ClearLast(ctx context.Context, sessionID string) error
}

type orderKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	LastOrderKey(sessionID string) string
}

// RedisStore keeps one summary blob per session.
type RedisStore struct {
	kv   orderKV
	ttl  time.Duration
	logg *logger.Logger
}

// NewRedisStore wires the order summary store onto the shared redis client.
func NewRedisStore(kv orderKV, ttl time.Duration, logg *logger.Logger) (*RedisStore, error) {
	if kv == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "redis client required")
	}
	return &RedisStore{kv: kv, ttl: ttl, logg: logg}, nil
}

// SaveLast writes the summary blob.
func (s *RedisStore) SaveLast(ctx context.Context, sessionID string, summary *Summary) error {
	encoded, err := json.Marshal(summary)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order summary")
	}
	if err := s.kv.Set(ctx, s.kv.LastOrderKey(sessionID), string(encoded), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order summary")
	}
	return nil
}

// LoadLast returns the stored summary, or nil when the session has no
// placed order. A corrupt blob is dropped and logged.
func (s *RedisStore) LoadLast(ctx context.Context, sessionID string) (*Summary, error) {
	key := s.kv.LastOrderKey(sessionID)
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order summary")
	}

	var summary Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "discarding corrupt order summary blob")
		}
		if delErr := s.kv.Del(ctx, key); delErr != nil && s.logg != nil {
			s.logg.Error(ctx, "removing corrupt order summary blob", delErr)
		}
		return nil, nil
	}
	return &summary, nil
}

// ClearLast removes the summary blob.
func (s *RedisStore) ClearLast(ctx context.Context, sessionID string) error {
	if err := s.kv.Del(ctx, s.kv.LastOrderKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear order summary")
	}
	return nil
}
