package models

import (
	"time"
)

// Purchase order statuses, strictly forward in this order.
const (
	OrderStatusDraft     = "draft"
	OrderStatusConfirmed = "confirmed"
	OrderStatusSent      = "sent"
	OrderStatusDelivered = "delivered"
)

// OrderStatusSequence is the only legal progression for a purchase order.
var OrderStatusSequence = []string{
	OrderStatusDraft,
	OrderStatusConfirmed,
	OrderStatusSent,
	OrderStatusDelivered,
}

// PurchaseOrderItem is one line of a purchase order. Subtotal is always
// quantity x unit price, recomputed rather than stored independently.
type PurchaseOrderItem struct {
	ProductID   int     `json:"product_id" example:"10"`
	ProductName string  `json:"product_name" example:"Dipirona 500mg"`
	Quantity    int     `json:"quantity" example:"15"`
	UnitPrice   float64 `json:"unit_price" example:"1.50"`
	Subtotal    float64 `json:"subtotal" example:"22.50"`
	TargetStore string  `json:"target_store,omitempty" example:"JR"`
}

// PurchaseOrder is a supplier-scoped commitment to buy specific quantities at
// specific prices. It references its quotation by id only, so deleting the
// quotation never deletes already-generated orders.
type PurchaseOrder struct {
	ID           int                 `json:"id" example:"1"`
	OrderNumber  string              `json:"order_number" example:"PO-AB12345"`
	QuotationID  int                 `json:"quotation_id" example:"1"`
	SupplierID   int                 `json:"supplier_id" example:"3"`
	SupplierName string              `json:"supplier_name" example:"Distribuidora Santa Cruz"`
	Status       string              `json:"status" example:"draft"`
	Items        []PurchaseOrderItem `json:"items"`
	TotalValue   float64             `json:"total_value" example:"22.50"`
	CreatedAt    time.Time           `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt    time.Time           `json:"updated_at" example:"2026-01-15T10:30:00Z"`
	CreatedBy    string              `json:"created_by" example:"admin"`
}

// RecomputeTotals refreshes every item subtotal and the order total.
func (po *PurchaseOrder) RecomputeTotals() {
	total := 0.0
	for i := range po.Items {
		po.Items[i].Subtotal = float64(po.Items[i].Quantity) * po.Items[i].UnitPrice
		total += po.Items[i].Subtotal
	}
	po.TotalValue = total
}

// OrderOverride adjusts one product's line before order generation. Nil fields
// fall back to the comparison's best-price winner and the quotation quantity.
// Quantity zero drops the product from the generated orders.
type OrderOverride struct {
	Quantity    *int     `json:"quantity,omitempty" example:"10"`
	SupplierID  *int     `json:"supplier_id,omitempty" example:"3"`
	UnitPrice   *float64 `json:"unit_price,omitempty" example:"1.45"`
	TargetStore *string  `json:"target_store,omitempty" example:"JR"`
}

// GenerateOrdersRequest is the payload for turning a comparison into draft
// purchase orders. Override keys are product ids.
type GenerateOrdersRequest struct {
	Overrides map[int]OrderOverride `json:"overrides"`
}

// ReplaceOrderItemsRequest swaps a draft order's item list wholesale.
type ReplaceOrderItemsRequest struct {
	Items []PurchaseOrderItem `json:"items" binding:"required"`
}

// TransitionOrderRequest moves an order to the next status.
type TransitionOrderRequest struct {
	Status string `json:"status" binding:"required"`
}
