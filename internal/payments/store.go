package payments

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/logger"
	"github.com/athukorala/storefront-api/pkg/redis"
)

// Store persists the payment draft document and the one-shot gateway
// feedback message per session.
type Store interface {
	LoadDraft(ctx context.Context, sessionID string) (*Draft, error)
	SaveDraft(ctx context.Context, sessionID string, draft *Draft) error
	ClearDraft(ctx context.Context, sessionID string) error
	SaveFeedback(ctx context.Context, sessionID string, feedback Feedback) error
	ConsumeFeedback(ctx context.Context, sessionID string) (*Feedback, error)
}

type draftKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	PaymentDraftKey(sessionID string) string
	FeedbackKey(sessionID string) string
}

// RedisStore keeps the draft as one JSON document per session, mirroring
// the cart store's whole-blob read-modify-write contract.
type RedisStore struct {
	kv   draftKV
	ttl  time.Duration
	logg *logger.Logger
}

// NewRedisStore wires the draft store onto the shared redis client.
func NewRedisStore(kv draftKV, ttl time.Duration, logg *logger.Logger) (*RedisStore, error) {
	if kv == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "redis client required")
	}
	return &RedisStore{kv: kv, ttl: ttl, logg: logg}, nil
}

// LoadDraft restores the draft. A missing key means an empty draft; a
// corrupt blob is dropped and logged, never surfaced to the shopper.
func (s *RedisStore) LoadDraft(ctx context.Context, sessionID string) (*Draft, error) {
	key := s.kv.PaymentDraftKey(sessionID)
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &Draft{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment draft")
	}

	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "discarding corrupt payment draft blob")
		}
		if delErr := s.kv.Del(ctx, key); delErr != nil && s.logg != nil {
			s.logg.Error(ctx, "removing corrupt payment draft blob", delErr)
		}
		return &Draft{}, nil
	}
	return &draft, nil
}

// SaveDraft writes the full document back. An empty draft deletes the
// key instead of storing an empty object.
func (s *RedisStore) SaveDraft(ctx context.Context, sessionID string, draft *Draft) error {
	if draft == nil || draft.IsEmpty() {
		return s.ClearDraft(ctx, sessionID)
	}
	encoded, err := json.Marshal(draft)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode payment draft")
	}
	if err := s.kv.Set(ctx, s.kv.PaymentDraftKey(sessionID), string(encoded), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save payment draft")
	}
	return nil
}

// ClearDraft removes the draft blob.
func (s *RedisStore) ClearDraft(ctx context.Context, sessionID string) error {
	if err := s.kv.Del(ctx, s.kv.PaymentDraftKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear payment draft")
	}
	return nil
}

// SaveFeedback stores the gateway's one-shot message for the session.
func (s *RedisStore) SaveFeedback(ctx context.Context, sessionID string, feedback Feedback) error {
	encoded, err := json.Marshal(feedback)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode gateway feedback")
	}
	if err := s.kv.Set(ctx, s.kv.FeedbackKey(sessionID), string(encoded), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save gateway feedback")
	}
	return nil
}

// ConsumeFeedback reads and deletes the message so a refresh cannot
// replay it. Absence is not an error; the caller gets nil.
func (s *RedisStore) ConsumeFeedback(ctx context.Context, sessionID string) (*Feedback, error) {
	key := s.kv.FeedbackKey(sessionID)
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gateway feedback")
	}
	if err := s.kv.Del(ctx, key); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume gateway feedback")
	}

	var feedback Feedback
	if err := json.Unmarshal([]byte(raw), &feedback); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "discarding corrupt gateway feedback blob")
		}
		return nil, nil
	}
	return &feedback, nil
}
