package middleware

import (
	"context"
	"net/http"

	"github.com/athukorala/storefront-api/api/responses"
	"github.com/athukorala/storefront-api/pkg/config"
	"github.com/athukorala/storefront-api/pkg/logger"
)

type sessionEnsurer interface {
	Ensure(ctx context.Context, presented string) (string, bool, error)
}

// Session resolves the shopper session cookie, minting one on first
// contact, and puts the session id on the request context. Every cart,
// draft, and order-summary key downstream is scoped by this id.
func Session(manager sessionEnsurer, cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := ""
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				presented = cookie.Value
			}

			sessionID, created, err := manager.Ensure(r.Context(), presented)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
