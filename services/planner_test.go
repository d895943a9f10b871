package services_test

import (
	"errors"
	"testing"

	"pharmacy-backend/models"
	"pharmacy-backend/services"
)

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

// summaryFixture: product 10 won by supplier 2 at 1.50 (qty 15), product 11
// won by supplier 1 at 3.00 (qty 10). Supplier 1 also quoted product 10 at 2.00.
func summaryFixture() *models.ComparisonSummary {
	return &models.ComparisonSummary{
		QuotationID:   1,
		QuotationName: "Jan-2026",
		Comparisons: []models.PriceComparison{
			{
				ProductID: 10, ProductName: "Dipirona", TotalQuantity: 15,
				Prices: []models.SupplierPrice{
					{SupplierID: 1, SupplierName: "Supplier A", UnitPrice: price(2.00), TotalPrice: 30.00, Available: true},
					{SupplierID: 2, SupplierName: "Supplier B", UnitPrice: price(1.50), TotalPrice: 22.50, Available: true},
				},
				BestPrice: &models.BestPrice{SupplierID: 2, SupplierName: "Supplier B", UnitPrice: 1.50, TotalPrice: 22.50, Savings: 7.50},
			},
			{
				ProductID: 11, ProductName: "Paracetamol", TotalQuantity: 10,
				Prices: []models.SupplierPrice{
					{SupplierID: 1, SupplierName: "Supplier A", UnitPrice: price(3.00), TotalPrice: 30.00, Available: true},
					{SupplierID: 2, SupplierName: "Supplier B", Available: false},
				},
				BestPrice: &models.BestPrice{SupplierID: 1, SupplierName: "Supplier A", UnitPrice: 3.00, TotalPrice: 30.00},
			},
		},
		SupplierTotals: []models.SupplierTotal{
			{SupplierID: 1, SupplierName: "Supplier A"},
			{SupplierID: 2, SupplierName: "Supplier B"},
		},
	}
}

func TestPlanOrders_NoOverridesFollowsWinners(t *testing.T) {
	orders, err := services.PlanOrders(summaryFixture(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Fatalf("want one order per supplier, got %d", len(orders))
	}
	// ascending supplier id
	if orders[0].SupplierID != 1 || orders[1].SupplierID != 2 {
		t.Fatalf("orders out of order: %d, %d", orders[0].SupplierID, orders[1].SupplierID)
	}
	if orders[0].Status != models.OrderStatusDraft || orders[1].Status != models.OrderStatusDraft {
		t.Fatal("planned orders must start as drafts")
	}

	a := orders[0]
	if len(a.Items) != 1 || a.Items[0].ProductID != 11 || a.Items[0].Subtotal != 30.00 || a.TotalValue != 30.00 {
		t.Fatalf("bad order for supplier A: %+v", a)
	}
	b := orders[1]
	if len(b.Items) != 1 || b.Items[0].ProductID != 10 || b.TotalValue != 22.50 {
		t.Fatalf("bad order for supplier B: %+v", b)
	}
	if a.OrderNumber == "" || a.OrderNumber == b.OrderNumber {
		t.Fatalf("order numbers must be distinct and non-empty: %q vs %q", a.OrderNumber, b.OrderNumber)
	}
}

func TestPlanOrders_SupplierOverrideMerges(t *testing.T) {
	overrides := map[int]models.OrderOverride{
		10: {SupplierID: intp(1)},
	}
	orders, err := services.PlanOrders(summaryFixture(), overrides)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 {
		t.Fatalf("both products moved to supplier 1, want a single order, got %d", len(orders))
	}
	order := orders[0]
	if order.SupplierID != 1 || len(order.Items) != 2 {
		t.Fatalf("bad merged order: %+v", order)
	}
	// redirected product keeps supplier 1's own quoted price
	if order.Items[0].ProductID != 10 || order.Items[0].UnitPrice != 2.00 {
		t.Fatalf("redirect must use the chosen supplier's quote: %+v", order.Items[0])
	}
	if order.TotalValue != 60.00 {
		t.Fatalf("want total 60.00, got %v", order.TotalValue)
	}
}

func TestPlanOrders_QuantityAndPriceOverrides(t *testing.T) {
	overrides := map[int]models.OrderOverride{
		10: {Quantity: intp(20), UnitPrice: price(1.40), TargetStore: strp("GS")},
	}
	orders, err := services.PlanOrders(summaryFixture(), overrides)
	if err != nil {
		t.Fatal(err)
	}
	var item *models.PurchaseOrderItem
	for i := range orders {
		for j := range orders[i].Items {
			if orders[i].Items[j].ProductID == 10 {
				item = &orders[i].Items[j]
			}
		}
	}
	if item == nil {
		t.Fatal("product 10 missing from plan")
	}
	if item.Quantity != 20 || item.UnitPrice != 1.40 || item.Subtotal != 28.00 || item.TargetStore != "GS" {
		t.Fatalf("overrides not applied: %+v", item)
	}
}

func TestPlanOrders_ZeroQuantityDropsProduct(t *testing.T) {
	overrides := map[int]models.OrderOverride{
		11: {Quantity: intp(0)},
	}
	orders, err := services.PlanOrders(summaryFixture(), overrides)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || orders[0].SupplierID != 2 {
		t.Fatalf("dropping product 11 should leave only supplier 2's order, got %+v", orders)
	}
}

func TestPlanOrders_Errors(t *testing.T) {
	noWinner := summaryFixture()
	noWinner.Comparisons[0].BestPrice = nil

	tests := []struct {
		name      string
		summary   *models.ComparisonSummary
		overrides map[int]models.OrderOverride
		want      error
	}{
		{
			name:      "negative quantity",
			summary:   summaryFixture(),
			overrides: map[int]models.OrderOverride{10: {Quantity: intp(-1)}},
			want:      services.ErrInvalidQuantity,
		},
		{
			name:      "negative unit price",
			summary:   summaryFixture(),
			overrides: map[int]models.OrderOverride{10: {UnitPrice: price(-0.5)}},
			want:      services.ErrInvalidPrice,
		},
		{
			name:      "unknown target store",
			summary:   summaryFixture(),
			overrides: map[int]models.OrderOverride{10: {TargetStore: strp("XX")}},
			want:      services.ErrUnknownStore,
		},
		{
			name:    "no winner and no override",
			summary: noWinner,
			want:    services.ErrNoPriceAvailable,
		},
		{
			name:      "override supplier never quoted the product",
			summary:   summaryFixture(),
			overrides: map[int]models.OrderOverride{11: {SupplierID: intp(2)}},
			want:      services.ErrNoPriceAvailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.PlanOrders(tt.summary, tt.overrides)
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}
