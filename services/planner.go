package services

import (
	"fmt"
	"sort"

	"pharmacy-backend/models"
	"pharmacy-backend/repository"
)

// PlanOrders turns a comparison summary plus per-product overrides into draft
// purchase orders, one per distinct chosen supplier. With no overrides the
// result buys every product from its best-price winner. Products resolved to
// quantity zero are dropped. The planner performs no storage I/O; the caller
// persists the returned drafts.
func PlanOrders(summary *models.ComparisonSummary, overrides map[int]models.OrderOverride) ([]models.PurchaseOrder, error) {
	type line struct {
		item models.PurchaseOrderItem
		name string
	}
	grouped := make(map[int][]line)

	for _, comp := range summary.Comparisons {
		override := overrides[comp.ProductID]

		quantity := comp.TotalQuantity
		if override.Quantity != nil {
			quantity = *override.Quantity
		}
		if quantity < 0 {
			return nil, fmt.Errorf("product %d: %w", comp.ProductID, ErrInvalidQuantity)
		}
		if quantity == 0 {
			continue
		}

		var supplierID int
		switch {
		case override.SupplierID != nil:
			supplierID = *override.SupplierID
		case comp.BestPrice != nil:
			supplierID = comp.BestPrice.SupplierID
		default:
			return nil, fmt.Errorf("product %d has no winner and no supplier override: %w",
				comp.ProductID, ErrNoPriceAvailable)
		}

		supplierName := supplierNameFor(summary, supplierID)

		var unitPrice float64
		if override.UnitPrice != nil {
			if *override.UnitPrice < 0 {
				return nil, fmt.Errorf("product %d: %w", comp.ProductID, ErrInvalidPrice)
			}
			unitPrice = *override.UnitPrice
		} else {
			quoted, ok := quotedPriceFor(&comp, supplierID)
			if !ok {
				return nil, fmt.Errorf("supplier %d has no available price for product %d: %w",
					supplierID, comp.ProductID, ErrNoPriceAvailable)
			}
			unitPrice = quoted
		}

		targetStore := ""
		if override.TargetStore != nil {
			if !models.IsValidStoreCode(*override.TargetStore) {
				return nil, fmt.Errorf("product %d store %q: %w", comp.ProductID, *override.TargetStore, ErrUnknownStore)
			}
			targetStore = *override.TargetStore
		}

		grouped[supplierID] = append(grouped[supplierID], line{
			item: models.PurchaseOrderItem{
				ProductID:   comp.ProductID,
				ProductName: comp.ProductName,
				Quantity:    quantity,
				UnitPrice:   unitPrice,
				TargetStore: targetStore,
			},
			name: supplierName,
		})
	}

	supplierIDs := make([]int, 0, len(grouped))
	for id := range grouped {
		supplierIDs = append(supplierIDs, id)
	}
	sort.Ints(supplierIDs)

	var orders []models.PurchaseOrder
	for _, id := range supplierIDs {
		lines := grouped[id]
		order := models.PurchaseOrder{
			OrderNumber:  repository.GenerateOrderNumber(),
			QuotationID:  summary.QuotationID,
			SupplierID:   id,
			SupplierName: lines[0].name,
			Status:       models.OrderStatusDraft,
		}
		for _, l := range lines {
			order.Items = append(order.Items, l.item)
		}
		order.RecomputeTotals()
		orders = append(orders, order)
	}
	return orders, nil
}

func quotedPriceFor(comp *models.PriceComparison, supplierID int) (float64, bool) {
	for _, p := range comp.Prices {
		if p.SupplierID == supplierID && p.Available && p.UnitPrice != nil {
			return *p.UnitPrice, true
		}
	}
	return 0, false
}

func supplierNameFor(summary *models.ComparisonSummary, supplierID int) string {
	for _, t := range summary.SupplierTotals {
		if t.SupplierID == supplierID {
			return t.SupplierName
		}
	}
	return ""
}
