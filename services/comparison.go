package services

import (
	"sort"

	"pharmacy-backend/models"
)

// BuildComparison derives the per-product best-price comparison and per-supplier
// totals from a quotation snapshot. It is a pure function: calling it twice on
// the same snapshot produces identical output, tie-breaks included.
//
// Only supplier quotations in submitted status contribute prices; drafts are not
// final offers. Ties on the lowest unit price go to the lower supplier id, which
// is stable regardless of submission order.
func BuildComparison(q *models.QuotationRequest) *models.ComparisonSummary {
	summary := &models.ComparisonSummary{
		QuotationID:    q.ID,
		QuotationName:  q.Name,
		TotalProducts:  len(q.Items),
		TotalSuppliers: len(q.SupplierQuotations),
	}

	submitted := make([]models.SupplierQuotation, 0, len(q.SupplierQuotations))
	for _, sq := range q.SupplierQuotations {
		if sq.Status == models.SupplierQuotationSubmitted {
			submitted = append(submitted, sq)
		}
	}
	sort.Slice(submitted, func(i, j int) bool {
		return submitted[i].SupplierID < submitted[j].SupplierID
	})
	summary.RespondedSuppliers = len(submitted)

	totals := make(map[int]*models.SupplierTotal, len(submitted))
	for _, sq := range submitted {
		totals[sq.SupplierID] = &models.SupplierTotal{
			SupplierID:   sq.SupplierID,
			SupplierName: sq.SupplierName,
		}
	}

	for _, item := range q.Items {
		comp := models.PriceComparison{
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			TotalQuantity: item.Quantities.Total(),
			Quantities:    item.Quantities,
		}

		var best *models.BestPrice
		maxAvailable := 0.0

		for _, sq := range submitted {
			price := models.SupplierPrice{
				SupplierID:   sq.SupplierID,
				SupplierName: sq.SupplierName,
			}
			entry, ok := sq.Prices[item.ProductID]
			if ok && entry.Available && entry.UnitPrice != nil && *entry.UnitPrice >= 0 {
				unit := *entry.UnitPrice
				price.UnitPrice = &unit
				price.Available = true
				price.TotalPrice = unit * float64(comp.TotalQuantity)

				totals[sq.SupplierID].ProductsQuoted++
				if unit > maxAvailable {
					maxAvailable = unit
				}
				// strict less-than keeps the lowest supplier id on ties
				if best == nil || unit < best.UnitPrice {
					best = &models.BestPrice{
						SupplierID:   sq.SupplierID,
						SupplierName: sq.SupplierName,
						UnitPrice:    unit,
						TotalPrice:   price.TotalPrice,
					}
				}
			}
			// suppliers without a valid entry stay in the output with
			// available=false so the buyer can see who did not quote
			comp.Prices = append(comp.Prices, price)
		}

		if best != nil {
			best.Savings = (maxAvailable - best.UnitPrice) * float64(comp.TotalQuantity)
			summary.MaxSavings += best.Savings
			t := totals[best.SupplierID]
			t.ProductsWithBestPrice++
			t.TotalValue += best.TotalPrice
			comp.BestPrice = best
		}

		summary.Comparisons = append(summary.Comparisons, comp)
	}

	for _, sq := range submitted {
		summary.SupplierTotals = append(summary.SupplierTotals, *totals[sq.SupplierID])
	}

	return summary
}
