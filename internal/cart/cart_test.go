package cart

import (
	"testing"

	"github.com/athukorala/storefront-api/pkg/enums"
	"github.com/shopspring/decimal"
)

func snapshot(id int64, price string, stock int) ProductSnapshot {
	return ProductSnapshot{
		ID:        id,
		Name:      "product",
		SKU:       "SKU",
		UnitPrice: decimal.RequireFromString(price),
		Stock:     stock,
	}
}

func TestAddRejectsOutOfStock(t *testing.T) {
	cart := &Cart{}
	result := cart.Add(snapshot(1, "10", 0), 1)

	if result.Success {
		t.Fatal("out-of-stock add must fail")
	}
	if result.Kind != enums.ResultKindError {
		t.Fatalf("unexpected kind %s", result.Kind)
	}
	if !cart.IsEmpty() {
		t.Fatal("no line may be inserted for zero stock")
	}
}

func TestAddRejectsAtMaximum(t *testing.T) {
	cart := &Cart{}
	cart.Add(snapshot(1, "10", 2), 2)

	result := cart.Add(snapshot(1, "10", 2), 1)
	if result.Success {
		t.Fatal("add past stock ceiling must fail")
	}
	if result.Reason != reasonMaxQuantity {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
	if got := cart.ItemQuantity(1); got != 2 {
		t.Fatalf("quantity must stay clamped, got %d", got)
	}
}

func TestAddPartialClampsToStock(t *testing.T) {
	cart := &Cart{}
	result := cart.Add(snapshot(1, "10", 2), 3)

	if !result.Success {
		t.Fatal("partial add is still a success")
	}
	if result.Kind != enums.ResultKindWarning {
		t.Fatalf("expected warning, got %s", result.Kind)
	}
	if result.ActualQuantity != 2 {
		t.Fatalf("expected 2 added, got %d", result.ActualQuantity)
	}
	if got := cart.Total(); !got.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected total 20, got %s", got)
	}
}

func TestAddQuantityArithmetic(t *testing.T) {
	cases := []struct {
		name      string
		stock     int
		inCart    int
		requested int
		wantLine  int
		wantAdded int
	}{
		{"full add", 10, 0, 3, 3, 3},
		{"top up", 10, 4, 3, 7, 3},
		{"clamp on top up", 5, 4, 3, 5, 1},
		{"exact fit", 5, 2, 3, 5, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cart := &Cart{}
			if tc.inCart > 0 {
				cart.Add(snapshot(1, "10", tc.stock), tc.inCart)
			}
			result := cart.Add(snapshot(1, "10", tc.stock), tc.requested)
			if got := cart.ItemQuantity(1); got != tc.wantLine {
				t.Fatalf("line quantity: want %d got %d", tc.wantLine, got)
			}
			if result.ActualQuantity != tc.wantAdded {
				t.Fatalf("actual quantity: want %d got %d", tc.wantAdded, result.ActualQuantity)
			}
		})
	}
}

func TestAddDefaultsQuantityToOne(t *testing.T) {
	cart := &Cart{}
	result := cart.Add(snapshot(1, "10", 5), 0)
	if result.ActualQuantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", result.ActualQuantity)
	}
}

func TestCanAddReportsMaxQuantity(t *testing.T) {
	cart := &Cart{}
	result := cart.CanAdd(snapshot(2, "10", 5), 10)

	if !result.CanAdd {
		t.Fatal("expected canAdd true")
	}
	if result.MaxQuantity != 5 {
		t.Fatalf("expected max 5, got %d", result.MaxQuantity)
	}
}

func TestCanAddAfterPartialFill(t *testing.T) {
	cart := &Cart{}
	cart.Add(snapshot(2, "10", 5), 3)

	result := cart.CanAdd(snapshot(2, "10", 5), 1)
	if !result.CanAdd || result.MaxQuantity != 2 {
		t.Fatalf("unexpected result %+v", result)
	}

	full := cart.CanAdd(snapshot(2, "10", 3), 1)
	if full.CanAdd {
		t.Fatal("expected canAdd false when cart already holds the stock")
	}
}

func TestUpdateQuantityRemovesAtZero(t *testing.T) {
	cart := &Cart{}
	cart.Add(snapshot(1, "10", 5), 2)

	cart.UpdateQuantity(1, 0, nil)
	if cart.InCart(1) {
		t.Fatal("zero quantity must remove the line")
	}
}

func TestUpdateQuantityClampsToStock(t *testing.T) {
	cart := &Cart{}
	cart.Add(snapshot(1, "10", 5), 2)

	cart.UpdateQuantity(1, 9, nil)
	if got := cart.ItemQuantity(1); got != 5 {
		t.Fatalf("expected clamp to 5, got %d", got)
	}

	fresh := snapshot(1, "10", 3)
	cart.UpdateQuantity(1, 9, &fresh)
	if got := cart.ItemQuantity(1); got != 3 {
		t.Fatalf("expected clamp to refreshed stock 3, got %d", got)
	}
}

func TestTotalsAndCounts(t *testing.T) {
	cart := &Cart{}
	cart.Add(snapshot(1, "10.50", 5), 2)
	cart.Add(snapshot(2, "3.25", 10), 4)

	want := decimal.RequireFromString("34")
	if got := cart.Total(); !got.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got)
	}
	if got := cart.Total(); !got.Equal(want) {
		t.Fatal("total must be stable without mutation")
	}
	if got := cart.ItemsCount(); got != 6 {
		t.Fatalf("expected 6 items, got %d", got)
	}
}

func TestAvailableQuantityNeverNegative(t *testing.T) {
	cart := &Cart{}
	cart.Add(snapshot(1, "10", 5), 5)

	if got := cart.AvailableQuantity(1, 3); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := cart.AvailableQuantity(1, 8); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestValidateAgainstStock(t *testing.T) {
	cart := &Cart{}
	cart.Add(snapshot(1, "10", 5), 5)
	cart.Add(snapshot(2, "10", 5), 2)

	drifts := cart.ValidateAgainstStock([]ProductSnapshot{
		snapshot(1, "10", 3),
		snapshot(2, "10", 5),
	})
	if len(drifts) != 1 {
		t.Fatalf("expected one drift, got %v", drifts)
	}
	if drifts[0].ProductID != 1 || drifts[0].AvailableStock != 3 || drifts[0].CartQuantity != 5 {
		t.Fatalf("unexpected drift %+v", drifts[0])
	}
	if got := cart.ItemQuantity(1); got != 5 {
		t.Fatal("validation must not mutate the cart")
	}
}

func TestRemoveDeletesUnconditionally(t *testing.T) {
	cart := &Cart{}
	cart.Add(snapshot(1, "10", 5), 2)
	cart.Add(snapshot(2, "10", 5), 1)

	cart.Remove(1)
	if cart.InCart(1) {
		t.Fatal("line should be gone")
	}
	if !cart.InCart(2) {
		t.Fatal("other lines must survive")
	}
}
