package services

import (
	"fmt"

	"pharmacy-backend/models"
)

// Quotation statuses move strictly forward: draft -> open -> closed ->
// completed. There is no regression from closed back to open.
var quotationStatusOrder = map[string]int{
	models.QuotationStatusDraft:     0,
	models.QuotationStatusOpen:      1,
	models.QuotationStatusClosed:    2,
	models.QuotationStatusCompleted: 3,
}

// AdvanceQuotation moves the quotation forward to target. Unlike order statuses,
// quotation stages may be skipped (a draft closed manually never passes through
// open), but never reversed.
func AdvanceQuotation(q *models.QuotationRequest, target string) error {
	current, ok := quotationStatusOrder[q.Status]
	next, ok2 := quotationStatusOrder[target]
	if !ok || !ok2 {
		return fmt.Errorf("status %q: %w", target, ErrInvalidTransition)
	}
	if next <= current {
		return fmt.Errorf("%s -> %s: %w", q.Status, target, ErrInvalidTransition)
	}
	q.Status = target
	return nil
}

// ValidateItems checks a quotation item list before it is accepted: product ids
// unique, no negative store quantities, only known store codes. Totals are
// recomputed in place so TotalQuantity can never drift from the store split.
func ValidateItems(items []models.QuotationItem) error {
	seen := make(map[int]bool, len(items))
	for i := range items {
		it := &items[i]
		if seen[it.ProductID] {
			return fmt.Errorf("product %d: %w", it.ProductID, ErrDuplicateProduct)
		}
		seen[it.ProductID] = true
		for code, qty := range it.Quantities {
			if !models.IsValidStoreCode(code) {
				return fmt.Errorf("product %d store %q: %w", it.ProductID, code, ErrUnknownStore)
			}
			if qty < 0 {
				return fmt.Errorf("product %d store %s: %w", it.ProductID, code, ErrInvalidQuantity)
			}
		}
		it.Recompute()
	}
	return nil
}
