package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/athukorala/storefront-api/api/middleware"
	"github.com/athukorala/storefront-api/api/responses"
	"github.com/athukorala/storefront-api/api/validators"
	checkoutsvc "github.com/athukorala/storefront-api/internal/checkout"
	paymentsvc "github.com/athukorala/storefront-api/internal/payments"
	pkgcheckout "github.com/athukorala/storefront-api/pkg/checkout"
	"github.com/athukorala/storefront-api/pkg/enums"
	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/logger"
)

func methodParam(r *http.Request) (enums.PaymentMethod, error) {
	method, err := enums.ParsePaymentMethod(chi.URLParam(r, "method"))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	return method, nil
}

// GatewayStart opens the handshake: it prices the cart and returns the
// payment context, minting the transaction id on first start.
func GatewayStart(gateway paymentsvc.Service, checkout checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		method, err := methodParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := checkout.Quote(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paymentCtx, err := gateway.Start(r.Context(), sessionID, method, quote.Totals.Total, quote.Totals.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentCtx)
	}
}

// GatewayPrefill returns the stored draft entry so a previous attempt's
// masked details can seed the form.
func GatewayPrefill(gateway paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		method, err := methodParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := gateway.Prefill(r.Context(), sessionID, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"draft": entry})
	}
}

type authorizeRequest struct {
	Card        *pkgcheckout.CardDetails `json:"card,omitempty"`
	PayPalEmail string                   `json:"paypalEmail,omitempty"`
}

// GatewayAuthorize validates the mock payment input and marks the
// method authorized.
func GatewayAuthorize(gateway paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		method, err := methodParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload authorizeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		feedback, err := gateway.Authorize(r.Context(), sessionID, method, paymentsvc.AuthorizationInput{
			Card:        payload.Card,
			PayPalEmail: payload.PayPalEmail,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, feedback)
	}
}

type failRequest struct {
	Message string `json:"message,omitempty"`
}

// GatewayFail simulates a declined authorization.
func GatewayFail(gateway paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		method, err := methodParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload failRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		feedback, err := gateway.Fail(r.Context(), sessionID, method, payload.Message)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, feedback)
	}
}

// GatewayDisconnect drops one method's draft entry.
func GatewayDisconnect(gateway paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		method, err := methodParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := gateway.Disconnect(r.Context(), sessionID, method); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "disconnected"})
	}
}
