package services_test

import (
	"reflect"
	"testing"

	"pharmacy-backend/models"
	"pharmacy-backend/services"
)

func price(v float64) *float64 { return &v }

// quotationFixture builds the "Jan-2026" scenario: one product, quantities
// JR:10 GS:5, supplier 1 at 2.00 and supplier 2 at 1.50.
func quotationFixture() *models.QuotationRequest {
	return &models.QuotationRequest{
		ID:     1,
		Name:   "Jan-2026",
		Status: models.QuotationStatusOpen,
		Items: []models.QuotationItem{
			{
				ProductID:   10,
				ProductName: "Dipirona",
				Quantities:  models.PharmacyQuantities{"JR": 10, "GS": 5, "BARAO": 0, "LB": 0},
			},
		},
		SupplierQuotations: []models.SupplierQuotation{
			{
				ID: 1, SupplierID: 1, SupplierName: "Supplier A",
				Status: models.SupplierQuotationSubmitted,
				Prices: map[int]models.SupplierPriceEntry{
					10: {ProductID: 10, UnitPrice: price(2.00), Available: true},
				},
			},
			{
				ID: 2, SupplierID: 2, SupplierName: "Supplier B",
				Status: models.SupplierQuotationSubmitted,
				Prices: map[int]models.SupplierPriceEntry{
					10: {ProductID: 10, UnitPrice: price(1.50), Available: true},
				},
			},
		},
	}
}

func TestBuildComparison_BestPriceAndSavings(t *testing.T) {
	summary := services.BuildComparison(quotationFixture())

	if summary.TotalProducts != 1 || summary.TotalSuppliers != 2 || summary.RespondedSuppliers != 2 {
		t.Fatalf("bad counters: %+v", summary)
	}
	if len(summary.Comparisons) != 1 {
		t.Fatalf("want 1 comparison, got %d", len(summary.Comparisons))
	}

	comp := summary.Comparisons[0]
	if comp.TotalQuantity != 15 {
		t.Fatalf("want totalQuantity 15, got %d", comp.TotalQuantity)
	}
	best := comp.BestPrice
	if best == nil {
		t.Fatal("expected a best price")
	}
	if best.SupplierID != 2 || best.UnitPrice != 1.50 || best.TotalPrice != 22.50 {
		t.Fatalf("wrong winner: %+v", best)
	}
	// (2.00 - 1.50) x 15
	if best.Savings != 7.50 {
		t.Fatalf("want savings 7.50, got %v", best.Savings)
	}
	if summary.MaxSavings != 7.50 {
		t.Fatalf("want maxSavings 7.50, got %v", summary.MaxSavings)
	}
}

func TestBuildComparison_UnavailableSupplierStaysVisible(t *testing.T) {
	q := quotationFixture()
	q.SupplierQuotations[0].Prices[10] = models.SupplierPriceEntry{
		ProductID: 10, UnitPrice: price(2.00), Available: false,
	}

	summary := services.BuildComparison(q)
	comp := summary.Comparisons[0]

	// supplier A is still in the output, marked unavailable
	if len(comp.Prices) != 2 {
		t.Fatalf("want 2 price rows, got %d", len(comp.Prices))
	}
	if comp.Prices[0].SupplierID != 1 || comp.Prices[0].Available || comp.Prices[0].UnitPrice != nil {
		t.Fatalf("supplier A should be an empty unavailable row: %+v", comp.Prices[0])
	}

	// single candidate wins with zero savings
	best := comp.BestPrice
	if best == nil || best.SupplierID != 2 {
		t.Fatalf("want supplier B as winner, got %+v", best)
	}
	if best.Savings != 0 {
		t.Fatalf("single candidate must have zero savings, got %v", best.Savings)
	}
}

func TestBuildComparison_NoAvailableEntries(t *testing.T) {
	q := quotationFixture()
	q.SupplierQuotations[0].Prices[10] = models.SupplierPriceEntry{ProductID: 10, Available: false}
	q.SupplierQuotations[1].Prices[10] = models.SupplierPriceEntry{ProductID: 10, Available: false}

	summary := services.BuildComparison(q)
	if summary.Comparisons[0].BestPrice != nil {
		t.Fatalf("want no best price, got %+v", summary.Comparisons[0].BestPrice)
	}
	if summary.MaxSavings != 0 {
		t.Fatalf("want zero maxSavings, got %v", summary.MaxSavings)
	}
}

func TestBuildComparison_TieGoesToLowerSupplierID(t *testing.T) {
	q := quotationFixture()
	q.SupplierQuotations[0].Prices[10] = models.SupplierPriceEntry{
		ProductID: 10, UnitPrice: price(1.50), Available: true,
	}
	// both quote 1.50; feed the quotations in reverse order to prove the
	// tie-break does not depend on input order
	q.SupplierQuotations[0], q.SupplierQuotations[1] = q.SupplierQuotations[1], q.SupplierQuotations[0]

	summary := services.BuildComparison(q)
	best := summary.Comparisons[0].BestPrice
	if best == nil || best.SupplierID != 1 {
		t.Fatalf("tie must go to supplier 1, got %+v", best)
	}
}

func TestBuildComparison_Deterministic(t *testing.T) {
	q := quotationFixture()
	first := services.BuildComparison(q)
	second := services.BuildComparison(q)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("comparison is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestBuildComparison_DraftQuotationsDoNotCount(t *testing.T) {
	q := quotationFixture()
	q.SupplierQuotations[0].Status = models.SupplierQuotationInProgress

	summary := services.BuildComparison(q)
	if summary.RespondedSuppliers != 1 {
		t.Fatalf("want 1 responded supplier, got %d", summary.RespondedSuppliers)
	}
	if len(summary.Comparisons[0].Prices) != 1 {
		t.Fatalf("draft prices must not appear, got %+v", summary.Comparisons[0].Prices)
	}
	if len(summary.SupplierTotals) != 1 || summary.SupplierTotals[0].SupplierID != 2 {
		t.Fatalf("want totals for supplier 2 only, got %+v", summary.SupplierTotals)
	}
}

func TestBuildComparison_SupplierTotals(t *testing.T) {
	q := quotationFixture()
	q.Items = append(q.Items, models.QuotationItem{
		ProductID:   11,
		ProductName: "Paracetamol",
		Quantities:  models.PharmacyQuantities{"JR": 4, "GS": 0, "BARAO": 6, "LB": 0},
	})
	// supplier A wins product 11, supplier B wins product 10
	q.SupplierQuotations[0].Prices[11] = models.SupplierPriceEntry{ProductID: 11, UnitPrice: price(3.00), Available: true}
	q.SupplierQuotations[1].Prices[11] = models.SupplierPriceEntry{ProductID: 11, UnitPrice: price(3.20), Available: true}

	summary := services.BuildComparison(q)
	if len(summary.SupplierTotals) != 2 {
		t.Fatalf("want 2 supplier totals, got %+v", summary.SupplierTotals)
	}

	a, b := summary.SupplierTotals[0], summary.SupplierTotals[1]
	if a.SupplierID != 1 || a.ProductsQuoted != 2 || a.ProductsWithBestPrice != 1 || a.TotalValue != 30.00 {
		t.Fatalf("bad totals for supplier A: %+v", a)
	}
	if b.SupplierID != 2 || b.ProductsQuoted != 2 || b.ProductsWithBestPrice != 1 || b.TotalValue != 22.50 {
		t.Fatalf("bad totals for supplier B: %+v", b)
	}
}

func TestBuildComparison_SubmittedButNothingAvailable(t *testing.T) {
	q := quotationFixture()
	q.SupplierQuotations[0].Prices = map[int]models.SupplierPriceEntry{
		10: {ProductID: 10, Available: false},
	}

	summary := services.BuildComparison(q)
	if len(summary.SupplierTotals) != 2 {
		t.Fatalf("supplier with nothing available must still appear: %+v", summary.SupplierTotals)
	}
	empty := summary.SupplierTotals[0]
	if empty.SupplierID != 1 || empty.ProductsQuoted != 0 || empty.TotalValue != 0 {
		t.Fatalf("want zero-value totals for supplier 1, got %+v", empty)
	}
}
