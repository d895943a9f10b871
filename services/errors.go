package services

import (
	"errors"
)

// Engine errors. All of them are returned to the caller; none is recovered
// silently, and a failed operation leaves the record in its pre-failure state.
var (
	// ErrQuotationClosed rejects supplier submissions against a closed or
	// completed quotation.
	ErrQuotationClosed = errors.New("quotation is closed for submissions")

	// ErrAlreadySubmitted rejects any write against a supplier quotation that
	// has already been finally submitted.
	ErrAlreadySubmitted = errors.New("supplier quotation already submitted")

	// ErrUnknownProduct rejects a price entry whose product is not part of the
	// quotation's item list.
	ErrUnknownProduct = errors.New("product is not part of the quotation")

	// ErrNoPriceAvailable rejects order planning for a product/supplier pair
	// with neither a comparison-derived price nor an explicit override.
	ErrNoPriceAvailable = errors.New("no price available for product")

	// ErrInvalidTransition rejects any non-adjacent or backward status move.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidQuantity rejects negative quantities anywhere in store
	// quantities, overrides, or order items. The engine rejects rather than
	// clamping.
	ErrInvalidQuantity = errors.New("quantity cannot be negative")

	// ErrInvalidPrice rejects negative unit prices in submissions or overrides.
	ErrInvalidPrice = errors.New("unit price cannot be negative")

	// ErrUnknownStore rejects a target store code outside the active store set.
	ErrUnknownStore = errors.New("unknown store code")

	// ErrDuplicateProduct rejects an item list naming the same product twice.
	ErrDuplicateProduct = errors.New("duplicate product in item list")
)
