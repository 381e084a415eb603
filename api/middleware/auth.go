package middleware

import (
	"net/http"

	"github.com/athukorala/storefront-api/api/responses"
	"github.com/athukorala/storefront-api/pkg/auth"
	"github.com/athukorala/storefront-api/pkg/config"
	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/logger"
)

// CustomerToken reads the optional bearer token minted by the external
// auth service. Anonymous shoppers pass through; a presented but
// invalid token is rejected.
func CustomerToken(cfg config.TokenConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseCustomerToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid customer token"))
				return
			}

			identity := claims.Identity()
			ctx := WithCustomer(r.Context(), identity)
			if logg != nil && identity.CustomerID != "" {
				ctx = logg.WithCustomerID(ctx, identity.CustomerID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCustomer guards routes that only make sense for a signed-in
// customer, such as the order history.
func RequireCustomer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := CustomerFromContext(r.Context())
			if identity.CustomerID == "" && identity.Username == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view orders"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
