package middleware

import (
	"context"

	"github.com/athukorala/storefront-api/pkg/auth"
)

type contextKey string

const (
	ctxSessionID contextKey = "session_id"
	ctxCustomer  contextKey = "customer"
)

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

func CustomerFromContext(ctx context.Context) auth.Identity {
	if ctx == nil {
		return auth.Identity{}
	}
	if v, ok := ctx.Value(ctxCustomer).(auth.Identity); ok {
		return v
	}
	return auth.Identity{}
}

// WithSessionID injects the shopper session id into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// WithCustomer injects the authenticated customer identity into the context.
func WithCustomer(ctx context.Context, identity auth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCustomer, identity)
}
