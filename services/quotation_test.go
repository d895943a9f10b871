package services_test

import (
	"errors"
	"testing"

	"pharmacy-backend/models"
	"pharmacy-backend/services"
)

func TestAdvanceQuotation(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		target  string
		wantErr bool
	}{
		{"draft to open", models.QuotationStatusDraft, models.QuotationStatusOpen, false},
		{"open to closed", models.QuotationStatusOpen, models.QuotationStatusClosed, false},
		{"closed to completed", models.QuotationStatusClosed, models.QuotationStatusCompleted, false},
		{"draft closed directly", models.QuotationStatusDraft, models.QuotationStatusClosed, false},
		{"open to completed skips closed", models.QuotationStatusOpen, models.QuotationStatusCompleted, false},
		{"reopen after close", models.QuotationStatusClosed, models.QuotationStatusOpen, true},
		{"back to draft", models.QuotationStatusOpen, models.QuotationStatusDraft, true},
		{"same status", models.QuotationStatusOpen, models.QuotationStatusOpen, true},
		{"unknown target", models.QuotationStatusOpen, "cancelled", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &models.QuotationRequest{ID: 1, Status: tt.from}
			err := services.AdvanceQuotation(q, tt.target)
			if tt.wantErr {
				if !errors.Is(err, services.ErrInvalidTransition) {
					t.Fatalf("want ErrInvalidTransition, got %v", err)
				}
				if q.Status != tt.from {
					t.Fatalf("failed transition changed status to %s", q.Status)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if q.Status != tt.target {
				t.Fatalf("want %s, got %s", tt.target, q.Status)
			}
		})
	}
}

func TestValidateItems_RecomputesTotals(t *testing.T) {
	items := []models.QuotationItem{
		{
			ProductID:   10,
			ProductName: "Dipirona",
			Quantities:  models.PharmacyQuantities{"JR": 10, "GS": 5},
			// stale value, must be overwritten
			TotalQuantity: 99,
		},
	}
	if err := services.ValidateItems(items); err != nil {
		t.Fatal(err)
	}
	if items[0].TotalQuantity != 15 {
		t.Fatalf("want recomputed total 15, got %d", items[0].TotalQuantity)
	}
}

func TestValidateItems_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		items []models.QuotationItem
		want  error
	}{
		{
			name: "duplicate product",
			items: []models.QuotationItem{
				{ProductID: 10, Quantities: models.PharmacyQuantities{"JR": 1}},
				{ProductID: 10, Quantities: models.PharmacyQuantities{"GS": 2}},
			},
			want: services.ErrDuplicateProduct,
		},
		{
			name: "unknown store code",
			items: []models.QuotationItem{
				{ProductID: 10, Quantities: models.PharmacyQuantities{"MATRIZ": 1}},
			},
			want: services.ErrUnknownStore,
		},
		{
			name: "negative quantity",
			items: []models.QuotationItem{
				{ProductID: 10, Quantities: models.PharmacyQuantities{"JR": -1}},
			},
			want: services.ErrInvalidQuantity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := services.ValidateItems(tt.items); !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}
