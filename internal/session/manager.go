package session

import (
	"context"
	"time"

	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/google/uuid"
)

type sessionKV interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	SessionKey(sessionID string) string
}

// Manager mints and refreshes the anonymous shopper session that scopes
// every cart, draft, and order-summary blob.
type Manager struct {
	kv  sessionKV
	ttl time.Duration
}

// NewManager builds the session manager.
func NewManager(kv sessionKV, ttl time.Duration) (*Manager, error) {
	if kv == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "redis client required")
	}
	return &Manager{kv: kv, ttl: ttl}, nil
}

// Ensure returns a live session id, reusing the presented one when its
// marker still exists and minting a fresh id otherwise. The second
// return reports whether a new session was created.
func (m *Manager) Ensure(ctx context.Context, presented string) (string, bool, error) {
	if presented != "" {
		alive, err := m.kv.Expire(ctx, m.kv.SessionKey(presented), m.ttl)
		if err != nil {
			return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refreshing session")
		}
		if alive {
			return presented, false, nil
		}
	}
	return m.mint(ctx)
}

func (m *Manager) mint(ctx context.Context) (string, bool, error) {
	// uuid collisions are not a realistic concern, but SetNX keeps the
	// marker write race-free across concurrent first requests.
	for attempt := 0; attempt < 3; attempt++ {
		id := uuid.NewString()
		created, err := m.kv.SetNX(ctx, m.kv.SessionKey(id), time.Now().UTC().Format(time.RFC3339), m.ttl)
		if err != nil {
			return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating session")
		}
		if created {
			return id, true, nil
		}
	}
	return "", false, pkgerrors.New(pkgerrors.CodeInternal, "could not mint a session id")
}
