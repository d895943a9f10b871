package services_test

import (
	"errors"
	"testing"

	"pharmacy-backend/models"
	"pharmacy-backend/services"
)

func draftOrder() *models.PurchaseOrder {
	order := &models.PurchaseOrder{
		OrderNumber: "PO-AB12345",
		SupplierID:  2,
		Status:      models.OrderStatusDraft,
		Items: []models.PurchaseOrderItem{
			{ProductID: 10, ProductName: "Dipirona", Quantity: 15, UnitPrice: 1.50},
		},
	}
	order.RecomputeTotals()
	return order
}

func TestTransitionOrder_FullLifecycle(t *testing.T) {
	order := draftOrder()
	for _, target := range []string{
		models.OrderStatusConfirmed,
		models.OrderStatusSent,
		models.OrderStatusDelivered,
	} {
		if err := services.TransitionOrder(order, target); err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
		if order.Status != target {
			t.Fatalf("status not applied, want %s got %s", target, order.Status)
		}
	}
}

func TestTransitionOrder_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		from   string
		target string
	}{
		{"skip ahead", models.OrderStatusDraft, models.OrderStatusSent},
		{"backwards", models.OrderStatusSent, models.OrderStatusConfirmed},
		{"same status", models.OrderStatusConfirmed, models.OrderStatusConfirmed},
		{"unknown status", models.OrderStatusDraft, "archived"},
		{"past the end", models.OrderStatusDelivered, models.OrderStatusDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := draftOrder()
			order.Status = tt.from
			err := services.TransitionOrder(order, tt.target)
			if !errors.Is(err, services.ErrInvalidTransition) {
				t.Fatalf("want ErrInvalidTransition, got %v", err)
			}
			if order.Status != tt.from {
				t.Fatalf("failed transition must not change status, got %s", order.Status)
			}
		})
	}
}

func TestReplaceOrderItems_RecomputesTotals(t *testing.T) {
	order := draftOrder()
	err := services.ReplaceOrderItems(order, []models.PurchaseOrderItem{
		{ProductID: 10, ProductName: "Dipirona", Quantity: 20, UnitPrice: 1.40, TargetStore: "JR"},
		{ProductID: 11, ProductName: "Paracetamol", Quantity: 5, UnitPrice: 3.00},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("want 2 items, got %d", len(order.Items))
	}
	if order.Items[0].Subtotal != 28.00 || order.Items[1].Subtotal != 15.00 {
		t.Fatalf("subtotals not recomputed: %+v", order.Items)
	}
	if order.TotalValue != 43.00 {
		t.Fatalf("want total 43.00, got %v", order.TotalValue)
	}
}

func TestReplaceOrderItems_Rejections(t *testing.T) {
	valid := []models.PurchaseOrderItem{{ProductID: 10, Quantity: 1, UnitPrice: 1.00}}

	t.Run("frozen after confirmation", func(t *testing.T) {
		order := draftOrder()
		order.Status = models.OrderStatusConfirmed
		if err := services.ReplaceOrderItems(order, valid); !errors.Is(err, services.ErrInvalidTransition) {
			t.Fatalf("want ErrInvalidTransition, got %v", err)
		}
	})
	t.Run("negative quantity", func(t *testing.T) {
		order := draftOrder()
		items := []models.PurchaseOrderItem{{ProductID: 10, Quantity: -1, UnitPrice: 1.00}}
		if err := services.ReplaceOrderItems(order, items); !errors.Is(err, services.ErrInvalidQuantity) {
			t.Fatalf("want ErrInvalidQuantity, got %v", err)
		}
		if order.Items[0].Quantity != 15 {
			t.Fatal("failed replacement must leave items intact")
		}
	})
	t.Run("negative price", func(t *testing.T) {
		order := draftOrder()
		items := []models.PurchaseOrderItem{{ProductID: 10, Quantity: 1, UnitPrice: -1.00}}
		if err := services.ReplaceOrderItems(order, items); !errors.Is(err, services.ErrInvalidPrice) {
			t.Fatalf("want ErrInvalidPrice, got %v", err)
		}
	})
	t.Run("unknown store", func(t *testing.T) {
		order := draftOrder()
		items := []models.PurchaseOrderItem{{ProductID: 10, Quantity: 1, UnitPrice: 1.00, TargetStore: "ZZ"}}
		if err := services.ReplaceOrderItems(order, items); !errors.Is(err, services.ErrUnknownStore) {
			t.Fatalf("want ErrUnknownStore, got %v", err)
		}
	})
}
