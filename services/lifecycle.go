package services

import (
	"fmt"

	"pharmacy-backend/models"
)

// TransitionOrder moves a purchase order to target. Only the immediate successor
// in draft -> confirmed -> sent -> delivered is legal; nothing is skipped and
// nothing goes backwards.
func TransitionOrder(order *models.PurchaseOrder, target string) error {
	current := indexOfStatus(order.Status)
	next := indexOfStatus(target)
	if current < 0 || next < 0 {
		return fmt.Errorf("status %q: %w", target, ErrInvalidTransition)
	}
	if next != current+1 {
		return fmt.Errorf("%s -> %s: %w", order.Status, target, ErrInvalidTransition)
	}
	order.Status = target
	return nil
}

// ReplaceOrderItems swaps the item list wholesale. Allowed only while the order
// is still a draft; confirmed items are immutable.
func ReplaceOrderItems(order *models.PurchaseOrder, items []models.PurchaseOrderItem) error {
	if order.Status != models.OrderStatusDraft {
		return fmt.Errorf("items are frozen after %s: %w", models.OrderStatusDraft, ErrInvalidTransition)
	}
	for _, it := range items {
		if it.Quantity < 0 {
			return fmt.Errorf("product %d: %w", it.ProductID, ErrInvalidQuantity)
		}
		if it.UnitPrice < 0 {
			return fmt.Errorf("product %d: %w", it.ProductID, ErrInvalidPrice)
		}
		if it.TargetStore != "" && !models.IsValidStoreCode(it.TargetStore) {
			return fmt.Errorf("product %d store %q: %w", it.ProductID, it.TargetStore, ErrUnknownStore)
		}
	}
	order.Items = items
	order.RecomputeTotals()
	return nil
}

func indexOfStatus(status string) int {
	for i, s := range models.OrderStatusSequence {
		if s == status {
			return i
		}
	}
	return -1
}
