package controllers

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/athukorala/storefront-api/api/middleware"
	"github.com/athukorala/storefront-api/api/responses"
	"github.com/athukorala/storefront-api/api/validators"
	cartsvc "github.com/athukorala/storefront-api/internal/cart"
	catalogsvc "github.com/athukorala/storefront-api/internal/catalog"
	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/logger"
)

type cartView struct {
	Items      []cartsvc.Line  `json:"items"`
	ItemsCount int             `json:"itemsCount"`
	Total      decimal.Decimal `json:"total"`
}

func newCartView(c *cartsvc.Cart) cartView {
	items := c.Lines
	if items == nil {
		items = []cartsvc.Line{}
	}
	return cartView{Items: items, ItemsCount: c.ItemsCount(), Total: c.Total()}
}

// CartGet returns the session's cart.
func CartGet(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		current, err := carts.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(current))
	}
}

type addItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"min=0"`
}

// CartAddItem snapshots the product from the catalog and runs the
// three-way add. Stock rejections are part of the success payload, not
// HTTP errors.
func CartAddItem(carts cartsvc.Service, catalog catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := catalog.Snapshot(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, result, err := carts.Add(r.Context(), sessionID, snapshot, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"result": result,
			"cart":   newCartView(current),
		})
	}
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// CartUpdateItem sets a line quantity, refreshing the stored snapshot
// when the product is still in the catalog.
func CartUpdateItem(carts cartsvc.Service, catalog catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var fresh *cartsvc.ProductSnapshot
		if snapshot, err := catalog.Snapshot(r.Context(), productID); err == nil {
			fresh = &snapshot
		} else if logg != nil {
			logg.Warn(logg.WithField(r.Context(), "product_id", productID), "updating cart line without a fresh snapshot")
		}

		current, err := carts.UpdateQuantity(r.Context(), sessionID, productID, payload.Quantity, fresh)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(current))
	}
}

// CartRemoveItem deletes a line unconditionally.
func CartRemoveItem(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := carts.Remove(r.Context(), sessionID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(current))
	}
}

// CartClear empties the session's cart.
func CartClear(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := carts.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(&cartsvc.Cart{}))
	}
}

// CartCanAdd answers the what-if check without mutating the cart.
func CartCanAdd(carts cartsvc.Service, catalog catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		productID, err := strconv.ParseInt(r.URL.Query().Get("productId"), 10, 64)
		if err != nil || productID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
			return
		}
		quantity, _ := strconv.Atoi(r.URL.Query().Get("quantity"))
		if quantity < 1 {
			quantity = 1
		}

		snapshot, err := catalog.Snapshot(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := carts.CanAdd(r.Context(), sessionID, snapshot, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartValidateStock re-checks every line against fresh catalog stock
// and reports the drifted lines without touching the cart.
func CartValidateStock(carts cartsvc.Service, catalog catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		current, err := carts.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ids := make([]int64, 0, len(current.Lines))
		for _, line := range current.Lines {
			ids = append(ids, line.Product.ID)
		}
		fresh, err := catalog.Snapshots(r.Context(), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		drifts, err := carts.ValidateStock(r.Context(), sessionID, fresh)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if drifts == nil {
			drifts = []cartsvc.StockDrift{}
		}
		responses.WriteSuccess(w, map[string]any{"drifts": drifts})
	}
}
