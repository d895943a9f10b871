package models

import (
	"time"
)

type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid session"`
	Details string `json:"details,omitempty" example:""`
}

type MessageResponse struct {
	Message string `json:"message" example:"OK"`
}

// SupplierPortalView is what a supplier sees after resolving its access token:
// the quotation items to price, plus whatever the supplier already saved.
// Other suppliers' prices are never included.
type SupplierPortalView struct {
	QuotationID   int                  `json:"quotation_id" example:"1"`
	QuotationName string               `json:"quotation_name" example:"Cotacao Jan-2026"`
	Deadline      *time.Time           `json:"deadline,omitempty"`
	Status        string               `json:"status" example:"in_progress"`
	SubmittedAt   *time.Time           `json:"submitted_at,omitempty"`
	SupplierName  string               `json:"supplier_name" example:"Distribuidora Santa Cruz"`
	Items         []QuotationItem      `json:"items"`
	SavedPrices   []SupplierPriceEntry `json:"saved_prices"`
}

// QuotationListEntry is the list view of quotations with response counters.
type QuotationListEntry struct {
	ID                 int        `json:"id" example:"1"`
	Name               string     `json:"name" example:"Cotacao Jan-2026"`
	Status             string     `json:"status" example:"open"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	TotalProducts      int        `json:"total_products" example:"12"`
	TotalSuppliers     int        `json:"total_suppliers" example:"5"`
	RespondedSuppliers int        `json:"responded_suppliers" example:"3"`
	CreatedAt          time.Time  `json:"created_at" example:"2026-01-15T10:30:00Z"`
	CreatedBy          string     `json:"created_by" example:"admin"`
}

// GenerateLinkResponse returns the portal link data for one supplier.
type GenerateLinkResponse struct {
	SupplierQuotationID int    `json:"supplier_quotation_id" example:"7"`
	SupplierID          int    `json:"supplier_id" example:"3"`
	AccessToken         string `json:"access_token" example:"b2f7c6a1-..."`
	PortalURL           string `json:"portal_url" example:"https://cotacao.example.com/portal/b2f7c6a1-..."`
}
