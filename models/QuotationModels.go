package models

import (
	"time"
)

// Quotation statuses
const (
	QuotationStatusDraft     = "draft"
	QuotationStatusOpen      = "open"
	QuotationStatusClosed    = "closed"
	QuotationStatusCompleted = "completed"
)

// Supplier quotation statuses
const (
	SupplierQuotationPending    = "pending"
	SupplierQuotationInProgress = "in_progress"
	SupplierQuotationSubmitted  = "submitted"
)

// DefaultStoreCodes is the ordered set of destination pharmacies. The list can be
// overridden from the pharmacy_stores table at startup; nothing below this file
// hard-codes the four literals.
var DefaultStoreCodes = []string{"JR", "GS", "BARAO", "LB"}

// StoreCodes is the active ordered store set, replaced by SetStoreCodes at boot.
var StoreCodes = DefaultStoreCodes

// SetStoreCodes replaces the active store set with the codes loaded from the DB.
func SetStoreCodes(codes []string) {
	if len(codes) > 0 {
		StoreCodes = codes
	}
}

// IsValidStoreCode reports whether code belongs to the active store set.
func IsValidStoreCode(code string) bool {
	for _, s := range StoreCodes {
		if s == code {
			return true
		}
	}
	return false
}

// PharmacyQuantities maps a store code to the quantity that store needs.
type PharmacyQuantities map[string]int

// Total returns the summed quantity across all stores.
func (pq PharmacyQuantities) Total() int {
	total := 0
	for _, code := range StoreCodes {
		total += pq[code]
	}
	return total
}

// HasNegative reports whether any store quantity is below zero.
func (pq PharmacyQuantities) HasNegative() bool {
	for _, qty := range pq {
		if qty < 0 {
			return true
		}
	}
	return false
}

// QuotationItem is one product line inside a quotation. TotalQuantity is always
// recomputed from the per-store quantities, never set independently.
type QuotationItem struct {
	ProductID     int                `json:"product_id" example:"10"`
	ProductName   string             `json:"product_name" example:"Dipirona 500mg"`
	Quantities    PharmacyQuantities `json:"quantities"`
	TotalQuantity int                `json:"total_quantity" example:"15"`
}

// Recompute refreshes TotalQuantity from the store quantities.
func (qi *QuotationItem) Recompute() {
	qi.TotalQuantity = qi.Quantities.Total()
}

// SupplierPriceEntry is one supplier's answer for one product. A nil UnitPrice
// means the supplier left the price blank; Available=false means the supplier
// cannot supply the product regardless of price.
type SupplierPriceEntry struct {
	ProductID   int      `json:"product_id" example:"10"`
	UnitPrice   *float64 `json:"unit_price,omitempty" example:"1.50"`
	Available   bool     `json:"available" example:"true"`
	Observation string   `json:"observation,omitempty" example:"Generic brand"`
}

// SupplierQuotation is one supplier's response record for a quotation, reached
// through an opaque access token. Once submitted it is locked for good.
type SupplierQuotation struct {
	ID           int                        `json:"id" example:"1"`
	QuotationID  int                        `json:"quotation_id" example:"1"`
	SupplierID   int                        `json:"supplier_id" example:"3"`
	SupplierName string                     `json:"supplier_name" example:"Distribuidora Santa Cruz"`
	AccessToken  string                     `json:"access_token" example:"b2f7c6a1-..."`
	Status       string                     `json:"status" example:"pending"`
	SubmittedAt  *time.Time                 `json:"submitted_at,omitempty"`
	Version      int                        `json:"version" example:"1"`
	Prices       map[int]SupplierPriceEntry `json:"prices"`
}

// QuotationRequest is a request for prices on a list of products, sent to one or
// more suppliers. It exclusively owns its items and supplier quotations.
type QuotationRequest struct {
	ID                 int                 `json:"id" example:"1"`
	Name               string              `json:"name" example:"Cotacao Jan-2026"`
	Status             string              `json:"status" example:"open"`
	Deadline           *time.Time          `json:"deadline,omitempty"`
	Items              []QuotationItem     `json:"items"`
	SupplierQuotations []SupplierQuotation `json:"supplier_quotations"`
	CreatedAt          time.Time           `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt          time.Time           `json:"updated_at" example:"2026-01-15T10:30:00Z"`
	CreatedBy          string              `json:"created_by" example:"admin"`
}

// HasItem reports whether productID is part of the quotation's item list.
func (q *QuotationRequest) HasItem(productID int) bool {
	for i := range q.Items {
		if q.Items[i].ProductID == productID {
			return true
		}
	}
	return false
}

// CreateQuotationRequest is the payload for creating a quotation.
type CreateQuotationRequest struct {
	Name     string          `json:"name" binding:"required"`
	Deadline *time.Time      `json:"deadline"`
	Items    []QuotationItem `json:"items" binding:"required"`
}

// UpdateQuotationItemsRequest replaces a draft quotation's item list.
type UpdateQuotationItemsRequest struct {
	Items []QuotationItem `json:"items" binding:"required"`
}

// GenerateLinkRequest asks for a supplier portal link on a quotation.
type GenerateLinkRequest struct {
	SupplierID int `json:"supplier_id" binding:"required"`
}

// SubmitPricesRequest is the supplier portal payload for draft saves and final
// submissions.
type SubmitPricesRequest struct {
	Entries     []SupplierPriceEntry `json:"entries" binding:"required"`
	FinalSubmit bool                 `json:"final_submit"`
}
