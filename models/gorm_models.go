package models

import (
	"time"

	"gorm.io/gorm"
)

// GORM-compatible models with proper tags. The purchase-order tables are written
// through GORM; the quotation tables stay on the raw database/sql path.

// PurchaseOrderGorm represents the purchase_order table with GORM tags
type PurchaseOrderGorm struct {
	ID           uint           `gorm:"primaryKey;column:id" json:"id"`
	OrderNumber  string         `gorm:"column:order_number;uniqueIndex;not null" json:"order_number"`
	QuotationID  int            `gorm:"column:quotation_id;not null" json:"quotation_id"`
	SupplierID   int            `gorm:"column:supplier_id;not null" json:"supplier_id"`
	SupplierName string         `gorm:"-" json:"supplier_name"` // Virtual field, joined on read
	Status       string         `gorm:"column:status;not null;default:'draft'" json:"status"`
	TotalValue   float64        `gorm:"column:total_value;type:numeric(12,2);not null" json:"total_value"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	CreatedBy    string         `gorm:"column:created_by;not null" json:"created_by"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Items []PurchaseOrderItemGorm `gorm:"foreignKey:PurchaseOrderID" json:"items"`
}

// TableName specifies the table name for PurchaseOrderGorm
func (PurchaseOrderGorm) TableName() string {
	return "purchase_order"
}

// PurchaseOrderItemGorm represents the purchase_order_item table with GORM tags
type PurchaseOrderItemGorm struct {
	ID              uint    `gorm:"primaryKey;column:id" json:"id"`
	PurchaseOrderID uint    `gorm:"column:purchase_order_id;not null;index" json:"purchase_order_id"`
	ProductID       int     `gorm:"column:product_id;not null" json:"product_id"`
	ProductName     string  `gorm:"column:product_name;not null" json:"product_name"`
	Quantity        int     `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice       float64 `gorm:"column:unit_price;type:numeric(12,4);not null" json:"unit_price"`
	Subtotal        float64 `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	TargetStore     string  `gorm:"column:target_store" json:"target_store"`
}

// TableName specifies the table name for PurchaseOrderItemGorm
func (PurchaseOrderItemGorm) TableName() string {
	return "purchase_order_item"
}

// ToPurchaseOrder converts the GORM row into the API model, recomputing the
// derived totals from the line items.
func (g *PurchaseOrderGorm) ToPurchaseOrder() PurchaseOrder {
	po := PurchaseOrder{
		ID:           int(g.ID),
		OrderNumber:  g.OrderNumber,
		QuotationID:  g.QuotationID,
		SupplierID:   g.SupplierID,
		SupplierName: g.SupplierName,
		Status:       g.Status,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
		CreatedBy:    g.CreatedBy,
	}
	for _, it := range g.Items {
		po.Items = append(po.Items, PurchaseOrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TargetStore: it.TargetStore,
		})
	}
	po.RecomputeTotals()
	return po
}

// FromPurchaseOrder builds a GORM row set from the API model.
func FromPurchaseOrder(po PurchaseOrder) PurchaseOrderGorm {
	g := PurchaseOrderGorm{
		ID:          uint(po.ID),
		OrderNumber: po.OrderNumber,
		QuotationID: po.QuotationID,
		SupplierID:  po.SupplierID,
		Status:      po.Status,
		TotalValue:  po.TotalValue,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
		CreatedBy:   po.CreatedBy,
	}
	for _, it := range po.Items {
		g.Items = append(g.Items, PurchaseOrderItemGorm{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
			TargetStore: it.TargetStore,
		})
	}
	return g
}
