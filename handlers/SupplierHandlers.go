package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pharmacy-backend/models"
	"pharmacy-backend/repository"

	"github.com/gin-gonic/gin"
)

// CreateSupplier creates a new supplier.
// @Summary Create supplier
// @Description Creates a new supplier. Request body: name, email, phone, address, cnpj, status. Requires Authorization header.
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param body body models.Supplier true "Supplier data"
// @Success 201 {object} models.Supplier
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/create_supplier [post]
func CreateSupplier(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session-id header is required"})
			return
		}

		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var supplier models.Supplier
		if err = c.ShouldBindJSON(&supplier); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		if supplier.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Supplier name is required"})
			return
		}
		if supplier.Status == "" {
			supplier.Status = "active"
		}

		supplier.CreatedAt = time.Now()
		supplier.UpdatedAt = time.Now()
		supplier.SupplierID = repository.GenerateRandomNumber()
		supplier.CreatedBy = userName

		query := `
			INSERT INTO suppliers (supplier_id, name, email, phone, address, cnpj, status, created_at, updated_at, created_by, updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING supplier_id
		`

		err = db.QueryRow(query,
			supplier.SupplierID,
			supplier.Name,
			supplier.Email,
			supplier.Phone,
			supplier.Address,
			supplier.CNPJ,
			supplier.Status,
			supplier.CreatedAt,
			supplier.UpdatedAt,
			supplier.CreatedBy,
			supplier.UpdatedBy,
		).Scan(&supplier.SupplierID)
		if err != nil {
			log.Printf("Error inserting supplier: %v\n", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert supplier", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, supplier)

		log := models.ActivityLog{
			EventContext:      "Supplier",
			EventName:         "Create",
			Description:       "Create Supplier",
			UserName:          userName,
			HostName:          session.HostName,
			IPAddress:         session.IPAddress,
			CreatedAt:         time.Now(),
			AffectedUserName:  supplier.Name,
			AffectedUserEmail: supplier.Email,
		}

		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to log activity",
				"details": logErr.Error(),
			})
			return
		}
	}
}

// UpdateSupplier updates a supplier by ID.
// @Summary Update supplier
// @Description Updates supplier by id. Send supplier fields in body; id in path. Requires Authorization header.
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param id path int true "Supplier ID"
// @Param body body models.Supplier true "Supplier data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/update_supplier/{id} [put]
func UpdateSupplier(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session-id header is required"})
			return
		}

		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var supplier models.Supplier
		if err := c.ShouldBindJSON(&supplier); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		supplierIDStr := c.Param("id")
		supplierID, err := strconv.Atoi(supplierIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier ID"})
			return
		}

		var existingSupplierID int
		err = db.QueryRow("SELECT supplier_id FROM suppliers WHERE supplier_id = $1", supplierID).Scan(&existingSupplierID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var updates []string
		var fields []interface{}
		placeholderIndex := 1

		if supplier.Name != "" {
			updates = append(updates, fmt.Sprintf("name = $%d", placeholderIndex))
			fields = append(fields, supplier.Name)
			placeholderIndex++
		}
		if supplier.Email != "" {
			updates = append(updates, fmt.Sprintf("email = $%d", placeholderIndex))
			fields = append(fields, supplier.Email)
			placeholderIndex++
		}
		if supplier.Phone != "" {
			updates = append(updates, fmt.Sprintf("phone = $%d", placeholderIndex))
			fields = append(fields, supplier.Phone)
			placeholderIndex++
		}
		if supplier.Address != "" {
			updates = append(updates, fmt.Sprintf("address = $%d", placeholderIndex))
			fields = append(fields, supplier.Address)
			placeholderIndex++
		}
		if supplier.CNPJ != "" {
			updates = append(updates, fmt.Sprintf("cnpj = $%d", placeholderIndex))
			fields = append(fields, supplier.CNPJ)
			placeholderIndex++
		}
		if supplier.Status != "" {
			updates = append(updates, fmt.Sprintf("status = $%d", placeholderIndex))
			fields = append(fields, supplier.Status)
			placeholderIndex++
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
			return
		}

		updates = append(updates, fmt.Sprintf("updated_by = $%d", placeholderIndex))
		fields = append(fields, userName)
		placeholderIndex++

		updates = append(updates, fmt.Sprintf("updated_at = $%d", placeholderIndex))
		fields = append(fields, time.Now())
		placeholderIndex++

		sqlStatement := fmt.Sprintf("UPDATE suppliers SET %s WHERE supplier_id = $%d", strings.Join(updates, ", "), placeholderIndex)
		fields = append(fields, supplierID)

		_, err = db.Exec(sqlStatement, fields...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Supplier updated successfully"})

		log := models.ActivityLog{
			EventContext:     "Supplier",
			EventName:        "Update",
			Description:      "Update Supplier",
			UserName:         userName,
			HostName:         session.HostName,
			IPAddress:        session.IPAddress,
			CreatedAt:        time.Now(),
			AffectedUserName: supplier.Name,
		}

		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to log activity",
				"details": logErr.Error(),
			})
			return
		}
	}
}

// GetSuppliers lists suppliers.
// @Summary List suppliers
// @Description Returns all suppliers, optionally filtered by status. Requires Authorization header.
// @Tags Suppliers
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {array} models.Supplier
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/suppliers [get]
func GetSuppliers(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session-id header is required"})
			return
		}

		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		query := `
			SELECT supplier_id, name, email, phone, address, cnpj, status, created_at, updated_at
			FROM suppliers
		`
		var args []interface{}
		if status := c.Query("status"); status != "" {
			query += " WHERE status = $1"
			args = append(args, status)
		}
		query += " ORDER BY name"

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suppliers", "details": err.Error()})
			return
		}
		defer rows.Close()

		var suppliers []models.Supplier
		for rows.Next() {
			var s models.Supplier
			var email, phone, address, cnpj sql.NullString
			if err := rows.Scan(&s.SupplierID, &s.Name, &email, &phone, &address, &cnpj, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan supplier", "details": err.Error()})
				return
			}
			s.Email = getStringOrEmpty(email)
			s.Phone = getStringOrEmpty(phone)
			s.Address = getStringOrEmpty(address)
			s.CNPJ = getStringOrEmpty(cnpj)
			suppliers = append(suppliers, s)
		}

		c.JSON(http.StatusOK, suppliers)
	}
}

// GetSupplierByID returns a single supplier.
// @Summary Get supplier
// @Description Returns one supplier by id. Requires Authorization header.
// @Tags Suppliers
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} models.Supplier
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/supplier/{id} [get]
func GetSupplierByID(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session-id header is required"})
			return
		}

		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		supplierID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier ID"})
			return
		}

		supplier, err := repository.FetchSupplier(db, supplierID)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, supplier)
	}
}

// DeleteSupplier removes a supplier.
// @Summary Delete supplier
// @Description Deletes a supplier by id unless it has quotation history; those are deactivated instead. Requires Authorization header.
// @Tags Suppliers
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/delete_supplier/{id} [delete]
func DeleteSupplier(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session-id header is required"})
			return
		}

		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		supplierID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier ID"})
			return
		}

		// Suppliers referenced by quotations keep their history; deactivate
		// instead of deleting so old comparisons stay readable.
		var quotationCount int
		err = db.QueryRow("SELECT COUNT(*) FROM supplier_quotation WHERE supplier_id = $1", supplierID).Scan(&quotationCount)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if quotationCount > 0 {
			_, err = db.Exec("UPDATE suppliers SET status = 'inactive', updated_at = $1, updated_by = $2 WHERE supplier_id = $3",
				time.Now(), userName, supplierID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Supplier has quotation history and was deactivated"})
		} else {
			result, err := db.Exec("DELETE FROM suppliers WHERE supplier_id = $1", supplierID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			rowsAffected, _ := result.RowsAffected()
			if rowsAffected == 0 {
				c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})
		}

		log := models.ActivityLog{
			EventContext: "Supplier",
			EventName:    "Delete",
			Description:  "Delete Supplier",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}

		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to log activity",
				"details": logErr.Error(),
			})
			return
		}
	}
}
