package repository

import (
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"pharmacy-backend/models"
)

func GenerateRandomNumber() int {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	return rng.Intn(900000000) + 100000000
}

// GenerateOrderNumber produces a human-readable purchase order number in the
// format "PO-XX99999".
func GenerateOrderNumber() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	prefix := string(letters[rng.Intn(len(letters))]) + string(letters[rng.Intn(len(letters))])
	number := rng.Intn(90000) + 10000

	return fmt.Sprintf("PO-%s%d", prefix, number)
}

// GenerateAccessToken produces the opaque token a supplier uses to reach its
// quotation portal.
func GenerateAccessToken() string {
	return uuid.New().String()
}

// NormalizeProductName lowers and strips the accents pharmacy product names
// carry, so "Dipirona Sódica" matches a search for "sodica".
func NormalizeProductName(name string) string {
	decomposed := norm.NFD.String(strings.ToLower(name))
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FetchSupplier retrieves one supplier row by id.
func FetchSupplier(db *sql.DB, supplierID int) (*models.Supplier, error) {
	query := `
		SELECT supplier_id, name, email, phone, address, cnpj, status, created_at, updated_at, created_by, updated_by
		FROM suppliers
		WHERE supplier_id = $1
	`
	row := db.QueryRow(query, supplierID)

	var s models.Supplier
	err := row.Scan(
		&s.SupplierID,
		&s.Name,
		&s.Email,
		&s.Phone,
		&s.Address,
		&s.CNPJ,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.CreatedBy,
		&s.UpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier %d: %w", supplierID, err)
	}
	return &s, nil
}

// FetchQuotationName returns the quotation's display name, falling back to a
// generic label when the row is gone.
func FetchQuotationName(db *sql.DB, quotationID int) string {
	var name string
	if err := db.QueryRow(`SELECT name FROM quotation WHERE id = $1`, quotationID).Scan(&name); err != nil {
		return "quotation"
	}
	return name
}
