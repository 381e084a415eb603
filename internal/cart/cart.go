package cart

import (
	"fmt"

	"github.com/athukorala/storefront-api/pkg/enums"
	"github.com/shopspring/decimal"
)

// ProductSnapshot is the denormalized product captured when a line is
// added. It is not re-synced automatically; ValidateAgainstStock reports
// drift against freshly fetched stock instead.
type ProductSnapshot struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Stock     int             `json:"stock"`
	Image     string          `json:"image,omitempty"`
}

// Line pairs a product snapshot with its quantity. Unique per product id;
// quantity stays within [1, stock] by clamping, never by erroring.
type Line struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart holds the session's line items in insertion order.
type Cart struct {
	Lines []Line `json:"lines"`
}

// AddResult is the three-way outcome of an add: full success, partial
// (clamped to stock, surfaced as a warning), or rejection.
type AddResult struct {
	Success        bool             `json:"success"`
	Kind           enums.ResultKind `json:"type"`
	ActualQuantity int              `json:"actualQuantity"`
	Reason         string           `json:"reason,omitempty"`
}

// CanAddResult answers a what-if add without mutating the cart.
type CanAddResult struct {
	CanAdd      bool   `json:"canAdd"`
	Reason      string `json:"reason,omitempty"`
	MaxQuantity int    `json:"maxQuantity"`
}

// StockDrift flags a line whose quantity now exceeds fresh stock.
type StockDrift struct {
	ProductID      int64  `json:"productId"`
	Name           string `json:"name"`
	CartQuantity   int    `json:"cartQuantity"`
	AvailableStock int    `json:"availableStock"`
}

const (
	reasonOutOfStock  = "product is out of stock"
	reasonMaxQuantity = "maximum available quantity already in cart"
)

// Add applies the stock-aware quantity arithmetic and reports what
// actually happened. Stock violations never error; they come back as
// structured results so the caller can message the shopper.
func (c *Cart) Add(product ProductSnapshot, quantity int) AddResult {
	if quantity < 1 {
		quantity = 1
	}
	if product.Stock <= 0 {
		return AddResult{Success: false, Kind: enums.ResultKindError, Reason: reasonOutOfStock}
	}

	current := c.ItemQuantity(product.ID)
	availableToAdd := product.Stock - current
	if availableToAdd <= 0 {
		return AddResult{Success: false, Kind: enums.ResultKindError, Reason: reasonMaxQuantity}
	}

	actual := quantity
	result := AddResult{Success: true, Kind: enums.ResultKindSuccess}
	if quantity > availableToAdd {
		actual = availableToAdd
		result.Kind = enums.ResultKindWarning
		result.Reason = fmt.Sprintf("only %d more available, added %d", availableToAdd, actual)
	}
	result.ActualQuantity = actual

	if line := c.line(product.ID); line != nil {
		line.Quantity += actual
		line.Product = product
	} else {
		c.Lines = append(c.Lines, Line{Product: product, Quantity: actual})
	}
	return result
}

// CanAdd runs the same three-way logic as Add without mutating anything.
func (c *Cart) CanAdd(product ProductSnapshot, quantity int) CanAddResult {
	if product.Stock <= 0 {
		return CanAddResult{CanAdd: false, Reason: reasonOutOfStock}
	}
	availableToAdd := product.Stock - c.ItemQuantity(product.ID)
	if availableToAdd <= 0 {
		return CanAddResult{CanAdd: false, Reason: reasonMaxQuantity}
	}
	result := CanAddResult{CanAdd: true, MaxQuantity: availableToAdd}
	if quantity > availableToAdd {
		result.Reason = fmt.Sprintf("only %d more available", availableToAdd)
	}
	return result
}

// UpdateQuantity sets a line's quantity: zero or less removes the line,
// anything else clamps to the freshest known stock. The optional product
// refreshes the stored snapshot.
func (c *Cart) UpdateQuantity(productID int64, quantity int, product *ProductSnapshot) {
	line := c.line(productID)
	if line == nil {
		return
	}
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	if product != nil {
		line.Product = *product
	}
	if quantity > line.Product.Stock {
		quantity = line.Product.Stock
	}
	line.Quantity = quantity
}

// Remove deletes the line unconditionally.
func (c *Cart) Remove(productID int64) {
	for i, line := range c.Lines {
		if line.Product.ID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear empties all lines.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Total is the sum of unit price times quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Product.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// ItemsCount is the sum of quantities over all lines.
func (c *Cart) ItemsCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// ItemQuantity returns the quantity held for a product, or zero.
func (c *Cart) ItemQuantity(productID int64) int {
	if line := c.line(productID); line != nil {
		return line.Quantity
	}
	return 0
}

// InCart reports whether the product has a line.
func (c *Cart) InCart(productID int64) bool {
	return c.line(productID) != nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// AvailableQuantity is how much more of the product could be added given
// the current stock, never negative.
func (c *Cart) AvailableQuantity(productID int64, currentStock int) int {
	available := currentStock - c.ItemQuantity(productID)
	if available < 0 {
		return 0
	}
	return available
}

// ValidateAgainstStock compares cart quantities against freshly fetched
// stock and returns the lines that now exceed it. The caller decides
// whether to act; nothing is applied here.
func (c *Cart) ValidateAgainstStock(fresh []ProductSnapshot) []StockDrift {
	stockByID := make(map[int64]int, len(fresh))
	for _, product := range fresh {
		stockByID[product.ID] = product.Stock
	}

	var drifts []StockDrift
	for _, line := range c.Lines {
		stock, known := stockByID[line.Product.ID]
		if !known {
			continue
		}
		if line.Quantity > stock {
			drifts = append(drifts, StockDrift{
				ProductID:      line.Product.ID,
				Name:           line.Product.Name,
				CartQuantity:   line.Quantity,
				AvailableStock: stock,
			})
		}
	}
	return drifts
}

func (c *Cart) line(productID int64) *Line {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}
