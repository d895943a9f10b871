package models

// SupplierPrice is one supplier's line inside a product comparison. UnitPrice is
// nil when the supplier did not quote an available price for the product; such
// lines are kept so the buyer can see who did not quote.
type SupplierPrice struct {
	SupplierID   int      `json:"supplier_id" example:"3"`
	SupplierName string   `json:"supplier_name" example:"Distribuidora Santa Cruz"`
	UnitPrice    *float64 `json:"unit_price,omitempty" example:"1.50"`
	TotalPrice   float64  `json:"total_price" example:"22.50"`
	Available    bool     `json:"available" example:"true"`
}

// BestPrice identifies the winning supplier for a product and what picking the
// worst available offer instead would have cost.
type BestPrice struct {
	SupplierID   int     `json:"supplier_id" example:"3"`
	SupplierName string  `json:"supplier_name" example:"Distribuidora Santa Cruz"`
	UnitPrice    float64 `json:"unit_price" example:"1.50"`
	TotalPrice   float64 `json:"total_price" example:"22.50"`
	Savings      float64 `json:"savings" example:"7.50"`
}

// PriceComparison is the derived per-product view of every supplier's offer.
// Recomputed on demand from a quotation snapshot, never mutated in place.
type PriceComparison struct {
	ProductID     int                `json:"product_id" example:"10"`
	ProductName   string             `json:"product_name" example:"Dipirona 500mg"`
	TotalQuantity int                `json:"total_quantity" example:"15"`
	Quantities    PharmacyQuantities `json:"quantities"`
	Prices        []SupplierPrice    `json:"prices"`
	BestPrice     *BestPrice         `json:"best_price,omitempty"`
}

// SupplierTotal aggregates one supplier's standing across the whole quotation.
type SupplierTotal struct {
	SupplierID            int     `json:"supplier_id" example:"3"`
	SupplierName          string  `json:"supplier_name" example:"Distribuidora Santa Cruz"`
	TotalValue            float64 `json:"total_value" example:"1250.00"`
	ProductsWithBestPrice int     `json:"products_with_best_price" example:"4"`
	ProductsQuoted        int     `json:"products_quoted" example:"12"`
}

// ComparisonSummary is the full comparison for one quotation snapshot.
type ComparisonSummary struct {
	QuotationID        int               `json:"quotation_id" example:"1"`
	QuotationName      string            `json:"quotation_name" example:"Cotacao Jan-2026"`
	TotalProducts      int               `json:"total_products" example:"12"`
	TotalSuppliers     int               `json:"total_suppliers" example:"5"`
	RespondedSuppliers int               `json:"responded_suppliers" example:"3"`
	Comparisons        []PriceComparison `json:"comparisons"`
	SupplierTotals     []SupplierTotal   `json:"supplier_totals"`
	MaxSavings         float64           `json:"max_savings" example:"87.30"`
}

// FindComparison returns the product's comparison row, or nil.
func (s *ComparisonSummary) FindComparison(productID int) *PriceComparison {
	for i := range s.Comparisons {
		if s.Comparisons[i].ProductID == productID {
			return &s.Comparisons[i]
		}
	}
	return nil
}
