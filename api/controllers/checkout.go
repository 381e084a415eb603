package controllers

import (
	"net/http"

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

// CheckoutQuote prices the session's cart for the checkout page.
func CheckoutQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		quote, err := svc.Quote(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

type submitRequest struct {
	Billing       pkgcheckout.BillingInfo  `json:"billing"`
	Shipping      pkgcheckout.ShippingInfo `json:"shipping"`
	ShipToBilling bool                     `json:"shipToBilling"`
	PaymentMethod string                   `json:"paymentMethod" validate:"required"`
}

// CheckoutSubmit runs the submission pipeline. The terminal state is
// always a 200 payload; only infrastructure failures map to errors.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		customer := middleware.CustomerFromContext(r.Context())

		var payload submitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		result, err := svc.Submit(r.Context(), checkoutsvc.SubmitInput{
			SessionID:     sessionID,
			CustomerID:    customer.CustomerID,
			Username:      customer.Username,
			CustomerEmail: customer.Email,
			Billing:       payload.Billing,
			Shipping:      payload.Shipping,
			ShipToBilling: payload.ShipToBilling,
			Method:        method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CheckoutFeedback pops the one-shot gateway banner message. Reading
// it twice yields an empty payload by design.
func CheckoutFeedback(gateway paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		feedback, err := gateway.ConsumeFeedback(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"feedback": feedback})
	}
}
