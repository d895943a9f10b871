package services_test

import (
	"errors"
	"testing"

	"pharmacy-backend/models"
	"pharmacy-backend/services"
)

func portalFixture() (*models.QuotationRequest, *models.SupplierQuotation) {
	q := quotationFixture()
	sq := &models.SupplierQuotation{
		ID: 3, QuotationID: 1, SupplierID: 3, SupplierName: "Supplier C",
		Status: models.SupplierQuotationPending,
	}
	return q, sq
}

func TestSubmitPrices_SaveThenFinalSubmit(t *testing.T) {
	q, sq := portalFixture()

	// partial save moves pending to in_progress without locking
	err := services.SubmitPrices(q, sq, []models.SupplierPriceEntry{
		{ProductID: 10, UnitPrice: price(1.80), Available: true, Observation: "caixa com 10"},
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	if sq.Status != models.SupplierQuotationInProgress {
		t.Fatalf("want in_progress, got %s", sq.Status)
	}
	if sq.SubmittedAt != nil {
		t.Fatal("partial save must not stamp submittedAt")
	}

	// second save overwrites the entry for the same product
	err = services.SubmitPrices(q, sq, []models.SupplierPriceEntry{
		{ProductID: 10, UnitPrice: price(1.70), Available: true},
	}, true)
	if err != nil {
		t.Fatal(err)
	}
	if sq.Status != models.SupplierQuotationSubmitted || sq.SubmittedAt == nil {
		t.Fatalf("final submit must lock the record: %+v", sq)
	}
	if got := sq.Prices[10]; got.UnitPrice == nil || *got.UnitPrice != 1.70 || got.Observation != "" {
		t.Fatalf("entry not replaced: %+v", got)
	}
}

func TestSubmitPrices_AfterSubmitIsRejected(t *testing.T) {
	q, sq := portalFixture()
	if err := services.SubmitPrices(q, sq, []models.SupplierPriceEntry{
		{ProductID: 10, UnitPrice: price(1.70), Available: true},
	}, true); err != nil {
		t.Fatal(err)
	}

	err := services.SubmitPrices(q, sq, []models.SupplierPriceEntry{
		{ProductID: 10, UnitPrice: price(0.01), Available: true},
	}, true)
	if !errors.Is(err, services.ErrAlreadySubmitted) {
		t.Fatalf("want ErrAlreadySubmitted, got %v", err)
	}
	if *sq.Prices[10].UnitPrice != 1.70 {
		t.Fatal("rejected resubmission must leave prices untouched")
	}
}

func TestSubmitPrices_ClosedQuotation(t *testing.T) {
	for _, status := range []string{models.QuotationStatusClosed, models.QuotationStatusCompleted} {
		q, sq := portalFixture()
		q.Status = status
		err := services.SubmitPrices(q, sq, nil, false)
		if !errors.Is(err, services.ErrQuotationClosed) {
			t.Fatalf("status %s: want ErrQuotationClosed, got %v", status, err)
		}
	}
}

func TestSubmitPrices_ValidationBeforeMerge(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.SupplierPriceEntry
		want    error
	}{
		{
			name: "unknown product",
			entries: []models.SupplierPriceEntry{
				{ProductID: 10, UnitPrice: price(1.80), Available: true},
				{ProductID: 999, UnitPrice: price(1.00), Available: true},
			},
			want: services.ErrUnknownProduct,
		},
		{
			name: "negative price",
			entries: []models.SupplierPriceEntry{
				{ProductID: 10, UnitPrice: price(-1.00), Available: true},
			},
			want: services.ErrInvalidPrice,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, sq := portalFixture()
			err := services.SubmitPrices(q, sq, tt.entries, false)
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
			// nothing merged, not even the valid leading entry
			if len(sq.Prices) != 0 {
				t.Fatalf("failed submission must not merge anything: %+v", sq.Prices)
			}
			if sq.Status != models.SupplierQuotationPending {
				t.Fatalf("failed submission must not advance status, got %s", sq.Status)
			}
		})
	}
}

func TestSubmitPrices_UnavailableEntryNeedsNoPrice(t *testing.T) {
	q, sq := portalFixture()
	err := services.SubmitPrices(q, sq, []models.SupplierPriceEntry{
		{ProductID: 10, Available: false, Observation: "fora de linha"},
	}, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := sq.Prices[10]; got.Available || got.UnitPrice != nil {
		t.Fatalf("unavailable entry stored wrong: %+v", got)
	}
}
