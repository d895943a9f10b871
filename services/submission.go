package services

import (
	"fmt"
	"time"

	"pharmacy-backend/models"
)

// SubmitPrices merges a supplier's price entries into its quotation record.
// Validation runs before any merge, so a failed submission leaves the record
// untouched. A non-final save keeps the record editable (pending ->
// in_progress); finalSubmit locks it for good (status submitted, submittedAt
// stamped). The caller serializes concurrent submissions to the same record.
func SubmitPrices(q *models.QuotationRequest, sq *models.SupplierQuotation, entries []models.SupplierPriceEntry, finalSubmit bool) error {
	if q.Status == models.QuotationStatusClosed || q.Status == models.QuotationStatusCompleted {
		return fmt.Errorf("quotation %d: %w", q.ID, ErrQuotationClosed)
	}
	if sq.Status == models.SupplierQuotationSubmitted {
		return fmt.Errorf("supplier quotation %d: %w", sq.ID, ErrAlreadySubmitted)
	}
	for _, e := range entries {
		if !q.HasItem(e.ProductID) {
			return fmt.Errorf("product %d: %w", e.ProductID, ErrUnknownProduct)
		}
		if e.UnitPrice != nil && *e.UnitPrice < 0 {
			return fmt.Errorf("product %d: %w", e.ProductID, ErrInvalidPrice)
		}
	}

	if sq.Prices == nil {
		sq.Prices = make(map[int]models.SupplierPriceEntry, len(entries))
	}
	for _, e := range entries {
		sq.Prices[e.ProductID] = e
	}

	if finalSubmit {
		now := time.Now()
		sq.Status = models.SupplierQuotationSubmitted
		sq.SubmittedAt = &now
	} else if sq.Status == models.SupplierQuotationPending {
		sq.Status = models.SupplierQuotationInProgress
	}
	return nil
}
