package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pharmacy-backend/models"
	"pharmacy-backend/utils"
)

// ErrVersionConflict is returned when a supplier quotation row changed under an
// in-flight submission. The caller re-reads the record and retries.
var ErrVersionConflict = errors.New("supplier quotation was modified concurrently")

// LoadQuotationSnapshot reads one quotation with its items and every supplier
// quotation (prices included) inside a single transaction, so the comparison
// never sees a half-merged submission.
func LoadQuotationSnapshot(db *sql.DB, quotationID int) (*models.QuotationRequest, error) {
	ctx, cancel := utils.GetSlowQueryContext(nil)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot read: %w", err)
	}
	defer tx.Rollback()

	var q models.QuotationRequest
	var deadline sql.NullTime
	err = tx.QueryRowContext(ctx, `
		SELECT id, name, status, deadline, created_at, updated_at, created_by
		FROM quotation WHERE id = $1
	`, quotationID).Scan(&q.ID, &q.Name, &q.Status, &deadline, &q.CreatedAt, &q.UpdatedAt, &q.CreatedBy)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		q.Deadline = &deadline.Time
	}

	itemRows, err := tx.QueryContext(ctx, `
		SELECT product_id, product_name, quantities
		FROM quotation_item
		WHERE quotation_id = $1
		ORDER BY position
	`, quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotation items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.QuotationItem
		var quantitiesJSON []byte
		if err := itemRows.Scan(&item.ProductID, &item.ProductName, &quantitiesJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(quantitiesJSON, &item.Quantities); err != nil {
			return nil, fmt.Errorf("bad quantities payload for product %d: %w", item.ProductID, err)
		}
		item.Recompute()
		q.Items = append(q.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	sqRows, err := tx.QueryContext(ctx, `
		SELECT sq.id, sq.quotation_id, sq.supplier_id, s.name, sq.access_token, sq.status, sq.submitted_at, sq.version
		FROM supplier_quotation sq
		JOIN suppliers s ON sq.supplier_id = s.supplier_id
		WHERE sq.quotation_id = $1
		ORDER BY sq.supplier_id
	`, quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier quotations: %w", err)
	}
	defer sqRows.Close()

	for sqRows.Next() {
		var sq models.SupplierQuotation
		var submittedAt sql.NullTime
		if err := sqRows.Scan(&sq.ID, &sq.QuotationID, &sq.SupplierID, &sq.SupplierName,
			&sq.AccessToken, &sq.Status, &submittedAt, &sq.Version); err != nil {
			return nil, err
		}
		if submittedAt.Valid {
			sq.SubmittedAt = &submittedAt.Time
		}
		sq.Prices = make(map[int]models.SupplierPriceEntry)
		q.SupplierQuotations = append(q.SupplierQuotations, sq)
	}
	if err := sqRows.Err(); err != nil {
		return nil, err
	}

	for i := range q.SupplierQuotations {
		sq := &q.SupplierQuotations[i]
		priceRows, err := tx.QueryContext(ctx, `
			SELECT product_id, unit_price, available, observation
			FROM supplier_price_entry
			WHERE supplier_quotation_id = $1
		`, sq.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch price entries: %w", err)
		}
		for priceRows.Next() {
			var entry models.SupplierPriceEntry
			var unitPrice sql.NullFloat64
			var observation sql.NullString
			if err := priceRows.Scan(&entry.ProductID, &unitPrice, &entry.Available, &observation); err != nil {
				priceRows.Close()
				return nil, err
			}
			if unitPrice.Valid {
				entry.UnitPrice = &unitPrice.Float64
			}
			entry.Observation = observation.String
			sq.Prices[entry.ProductID] = entry
		}
		priceRows.Close()
		if err := priceRows.Err(); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &q, nil
}

// GetSupplierQuotationByToken resolves a portal access token to its supplier
// quotation record, prices included.
func GetSupplierQuotationByToken(db *sql.DB, token string) (*models.SupplierQuotation, error) {
	ctx, cancel := utils.GetFastQueryContext(nil)
	defer cancel()

	var sq models.SupplierQuotation
	var submittedAt sql.NullTime
	err := db.QueryRowContext(ctx, `
		SELECT sq.id, sq.quotation_id, sq.supplier_id, s.name, sq.access_token, sq.status, sq.submitted_at, sq.version
		FROM supplier_quotation sq
		JOIN suppliers s ON sq.supplier_id = s.supplier_id
		WHERE sq.access_token = $1
	`, token).Scan(&sq.ID, &sq.QuotationID, &sq.SupplierID, &sq.SupplierName,
		&sq.AccessToken, &sq.Status, &submittedAt, &sq.Version)
	if err != nil {
		return nil, err
	}
	if submittedAt.Valid {
		sq.SubmittedAt = &submittedAt.Time
	}

	sq.Prices = make(map[int]models.SupplierPriceEntry)
	rows, err := db.QueryContext(ctx, `
		SELECT product_id, unit_price, available, observation
		FROM supplier_price_entry
		WHERE supplier_quotation_id = $1
	`, sq.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var entry models.SupplierPriceEntry
		var unitPrice sql.NullFloat64
		var observation sql.NullString
		if err := rows.Scan(&entry.ProductID, &unitPrice, &entry.Available, &observation); err != nil {
			return nil, err
		}
		if unitPrice.Valid {
			entry.UnitPrice = &unitPrice.Float64
		}
		entry.Observation = observation.String
		sq.Prices[entry.ProductID] = entry
	}
	return &sq, rows.Err()
}

// SaveSupplierSubmission persists the merged record produced by the submission
// gate. The version check serializes duplicate retries against the same record:
// when the row moved on since the caller read it, nothing is written and
// ErrVersionConflict comes back.
func SaveSupplierSubmission(db *sql.DB, sq *models.SupplierQuotation, expectedVersion int, merged []models.SupplierPriceEntry) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin submission write: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE supplier_quotation
		SET status = $1, submitted_at = $2, version = version + 1
		WHERE id = $3 AND version = $4
	`, sq.Status, sq.SubmittedAt, sq.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update supplier quotation: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrVersionConflict
	}

	for _, entry := range merged {
		var unitPrice sql.NullFloat64
		if entry.UnitPrice != nil {
			unitPrice = sql.NullFloat64{Float64: *entry.UnitPrice, Valid: true}
		}
		_, err := tx.Exec(`
			INSERT INTO supplier_price_entry (supplier_quotation_id, product_id, unit_price, available, observation)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (supplier_quotation_id, product_id)
			DO UPDATE SET unit_price = EXCLUDED.unit_price, available = EXCLUDED.available, observation = EXCLUDED.observation
		`, sq.ID, entry.ProductID, unitPrice, entry.Available, entry.Observation)
		if err != nil {
			return fmt.Errorf("failed to upsert price entry for product %d: %w", entry.ProductID, err)
		}
	}

	sq.Version = expectedVersion + 1
	return tx.Commit()
}

// UpdateQuotationStatus writes a quotation's status after an engine-validated
// transition.
func UpdateQuotationStatus(db *sql.DB, quotationID int, status string) error {
	_, err := db.Exec(`UPDATE quotation SET status = $1, updated_at = NOW() WHERE id = $2`, status, quotationID)
	return err
}

// CloseExpiredQuotations flips every open quotation past its deadline to
// closed. Runs from the daily cron.
func CloseExpiredQuotations(db *sql.DB) (int64, error) {
	ctx, cancel := utils.GetDefaultQueryContext(nil)
	defer cancel()

	res, err := db.ExecContext(ctx, `
		UPDATE quotation
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND deadline IS NOT NULL AND deadline < CURRENT_DATE
	`, models.QuotationStatusClosed, models.QuotationStatusOpen)
	if err != nil {
		return 0, fmt.Errorf("failed to close expired quotations: %w", err)
	}
	return res.RowsAffected()
}
