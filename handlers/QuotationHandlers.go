package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"pharmacy-backend/models"
	"pharmacy-backend/repository"
	"pharmacy-backend/services"
	"pharmacy-backend/storage"

	"github.com/gin-gonic/gin"
)

// CreateQuotation creates a quotation in draft status.
// @Summary Create quotation
// @Description Creates a draft quotation with its product items and per-store quantities. Requires Authorization header.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param body body models.CreateQuotationRequest true "Quotation data"
// @Success 201 {object} models.QuotationRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/create_quotation [post]
func CreateQuotation(db *sql.DB) gin.HandlerFunc {
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

		var req models.CreateQuotationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quotation needs at least one item"})
			return
		}

		if err := services.ValidateItems(req.Items); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid items", "details": err.Error()})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction", "details": err.Error()})
			return
		}
		defer tx.Rollback()

		quotation := models.QuotationRequest{
			Name:      req.Name,
			Status:    models.QuotationStatusDraft,
			Deadline:  req.Deadline,
			Items:     req.Items,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
			CreatedBy: userName,
		}

		err = tx.QueryRow(`
			INSERT INTO quotation (name, status, deadline, created_at, updated_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			quotation.Name, quotation.Status, quotation.Deadline,
			quotation.CreatedAt, quotation.UpdatedAt, quotation.CreatedBy,
		).Scan(&quotation.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert quotation", "details": err.Error()})
			return
		}

		if err := insertQuotationItems(tx, quotation.ID, quotation.Items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert quotation items", "details": err.Error()})
			return
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit quotation", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, quotation)

		log := models.ActivityLog{
			EventContext: "Quotation",
			EventName:    "Create",
			Description:  "Create Quotation",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			QuotationID:  quotation.ID,
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}
	}
}

func insertQuotationItems(tx *sql.Tx, quotationID int, items []models.QuotationItem) error {
	for position, item := range items {
		quantities, err := json.Marshal(item.Quantities)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO quotation_item (quotation_id, product_id, product_name, quantities, position)
			VALUES ($1, $2, $3, $4, $5)`,
			quotationID, item.ProductID, item.ProductName, quantities, position,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateQuotationItems replaces a draft quotation's item list.
// @Summary Update quotation items
// @Description Replaces the item list. Only draft quotations can change items. Requires Authorization header.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path int true "Quotation ID"
// @Param body body models.UpdateQuotationItemsRequest true "New item list"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/update_quotation_items/{id} [put]
func UpdateQuotationItems(db *sql.DB) gin.HandlerFunc {
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

		quotationID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quotation ID"})
			return
		}

		var req models.UpdateQuotationItemsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quotation needs at least one item"})
			return
		}

		if err := services.ValidateItems(req.Items); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid items", "details": err.Error()})
			return
		}

		var status string
		err = db.QueryRow("SELECT status FROM quotation WHERE id = $1", quotationID).Scan(&status)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if status != models.QuotationStatusDraft {
			c.JSON(http.StatusConflict, gin.H{"error": "Items can only change while the quotation is a draft"})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction", "details": err.Error()})
			return
		}
		defer tx.Rollback()

		if _, err := tx.Exec("DELETE FROM quotation_item WHERE quotation_id = $1", quotationID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear items", "details": err.Error()})
			return
		}
		if err := insertQuotationItems(tx, quotationID, req.Items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert quotation items", "details": err.Error()})
			return
		}
		if _, err := tx.Exec("UPDATE quotation SET updated_at = $1 WHERE id = $2", time.Now(), quotationID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit items", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Quotation items updated"})

		log := models.ActivityLog{
			EventContext: "Quotation",
			EventName:    "Update",
			Description:  "Update Quotation Items",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			QuotationID:  quotationID,
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}
	}
}

// GetQuotations lists quotations with response counters.
// @Summary List quotations
// @Description Returns quotations with item and supplier counters, optionally filtered by status. Requires Authorization header.
// @Tags Quotations
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {array} models.QuotationListEntry
// @Failure 401 {object} models.ErrorResponse
// @Router /api/quotations [get]
func GetQuotations(db *sql.DB) gin.HandlerFunc {
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
			SELECT q.id, q.name, q.status, q.deadline, q.created_at, q.created_by,
				   (SELECT COUNT(*) FROM quotation_item qi WHERE qi.quotation_id = q.id) AS total_products,
				   (SELECT COUNT(*) FROM supplier_quotation sq WHERE sq.quotation_id = q.id) AS total_suppliers,
				   (SELECT COUNT(*) FROM supplier_quotation sq WHERE sq.quotation_id = q.id AND sq.status = 'submitted') AS responded_suppliers
			FROM quotation q
		`
		var args []interface{}
		if status := c.Query("status"); status != "" {
			query += " WHERE q.status = $1"
			args = append(args, status)
		}
		query += " ORDER BY q.created_at DESC"

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quotations", "details": err.Error()})
			return
		}
		defer rows.Close()

		var quotations []models.QuotationListEntry
		for rows.Next() {
			var entry models.QuotationListEntry
			var deadline sql.NullTime
			var createdBy sql.NullString
			err := rows.Scan(&entry.ID, &entry.Name, &entry.Status, &deadline, &entry.CreatedAt, &createdBy,
				&entry.TotalProducts, &entry.TotalSuppliers, &entry.RespondedSuppliers)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan quotation", "details": err.Error()})
				return
			}
			if deadline.Valid {
				entry.Deadline = &deadline.Time
			}
			entry.CreatedBy = getStringOrEmpty(createdBy)
			quotations = append(quotations, entry)
		}

		c.JSON(http.StatusOK, quotations)
	}
}

// GetQuotationByID returns the full quotation snapshot.
// @Summary Get quotation
// @Description Returns the quotation with items and supplier quotations. Requires Authorization header.
// @Tags Quotations
// @Produce json
// @Param id path int true "Quotation ID"
// @Success 200 {object} models.QuotationRequest
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotation/{id} [get]
func GetQuotationByID(db *sql.DB) gin.HandlerFunc {
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

		quotationID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quotation ID"})
			return
		}

		quotation, err := storage.LoadQuotationSnapshot(db, quotationID)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quotation", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, quotation)
	}
}

// AdvanceQuotationStatus moves a quotation forward (open, closed or completed).
// @Summary Advance quotation status
// @Description Moves the quotation to a later stage. Going back is rejected. Requires Authorization header.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path int true "Quotation ID"
// @Param body body object true "Target status" SchemaExample({"status": "closed"})
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/quotation_status/{id} [put]
func AdvanceQuotationStatus(db *sql.DB) gin.HandlerFunc {
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

		quotationID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quotation ID"})
			return
		}

		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		var quotation models.QuotationRequest
		quotation.ID = quotationID
		err = db.QueryRow("SELECT status FROM quotation WHERE id = $1", quotationID).Scan(&quotation.Status)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if err := services.AdvanceQuotation(&quotation, req.Status); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Invalid status transition", "details": err.Error()})
			return
		}

		if err := storage.UpdateQuotationStatus(db, quotationID, quotation.Status); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Quotation moved to " + quotation.Status})

		log := models.ActivityLog{
			EventContext: "Quotation",
			EventName:    "Update",
			Description:  "Quotation moved to " + quotation.Status,
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			QuotationID:  quotationID,
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}
	}
}

// DeleteQuotation removes a quotation that has not produced orders.
// @Summary Delete quotation
// @Description Deletes a draft or open quotation with all its items and supplier links. Completed quotations are kept. Requires Authorization header.
// @Tags Quotations
// @Produce json
// @Param id path int true "Quotation ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/delete_quotation/{id} [delete]
func DeleteQuotation(db *sql.DB) gin.HandlerFunc {
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

		quotationID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quotation ID"})
			return
		}

		var status string
		err = db.QueryRow("SELECT status FROM quotation WHERE id = $1", quotationID).Scan(&status)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if status == models.QuotationStatusCompleted {
			c.JSON(http.StatusConflict, gin.H{"error": "Completed quotations have orders and cannot be deleted"})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction", "details": err.Error()})
			return
		}
		defer tx.Rollback()

		statements := []string{
			`DELETE FROM supplier_price_entry WHERE supplier_quotation_id IN (SELECT id FROM supplier_quotation WHERE quotation_id = $1)`,
			`DELETE FROM supplier_quotation WHERE quotation_id = $1`,
			`DELETE FROM quotation_item WHERE quotation_id = $1`,
			`DELETE FROM quotation WHERE id = $1`,
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(stmt, quotationID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete quotation", "details": err.Error()})
				return
			}
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit delete", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Quotation deleted successfully"})

		log := models.ActivityLog{
			EventContext: "Quotation",
			EventName:    "Delete",
			Description:  "Delete Quotation",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			QuotationID:  quotationID,
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}
	}
}

// GenerateSupplierLink creates a tokenized portal link for one supplier.
// @Summary Generate supplier link
// @Description Creates (or returns) the supplier quotation record and portal token. First link moves a draft quotation to open. Requires Authorization header.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path int true "Quotation ID"
// @Param body body models.GenerateLinkRequest true "Supplier"
// @Success 201 {object} models.GenerateLinkResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/quotation/{id}/generate_link [post]
func GenerateSupplierLink(db *sql.DB) gin.HandlerFunc {
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

		quotationID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quotation ID"})
			return
		}

		var req models.GenerateLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		var status string
		err = db.QueryRow("SELECT status FROM quotation WHERE id = $1", quotationID).Scan(&status)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if status == models.QuotationStatusClosed || status == models.QuotationStatusCompleted {
			c.JSON(http.StatusConflict, gin.H{"error": "Quotation is closed for new suppliers"})
			return
		}

		supplier, err := repository.FetchSupplier(db, req.SupplierID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found", "details": err.Error()})
			return
		}

		// One link per supplier per quotation; asking again returns the
		// existing token instead of inviting the supplier twice.
		var existing models.GenerateLinkResponse
		err = db.QueryRow(`
			SELECT id, supplier_id, access_token FROM supplier_quotation
			WHERE quotation_id = $1 AND supplier_id = $2`,
			quotationID, req.SupplierID,
		).Scan(&existing.SupplierQuotationID, &existing.SupplierID, &existing.AccessToken)
		if err == nil {
			existing.PortalURL = portalBaseURL() + "/portal/" + existing.AccessToken
			c.JSON(http.StatusOK, existing)
			return
		}
		if err != sql.ErrNoRows {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := models.GenerateLinkResponse{
			SupplierID:  req.SupplierID,
			AccessToken: repository.GenerateAccessToken(),
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction", "details": err.Error()})
			return
		}
		defer tx.Rollback()

		err = tx.QueryRow(`
			INSERT INTO supplier_quotation (quotation_id, supplier_id, access_token, status, version)
			VALUES ($1, $2, $3, $4, 0)
			RETURNING id`,
			quotationID, req.SupplierID, resp.AccessToken, models.SupplierQuotationPending,
		).Scan(&resp.SupplierQuotationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create supplier quotation", "details": err.Error()})
			return
		}

		// the first invite takes a draft quotation live
		if status == models.QuotationStatusDraft {
			if _, err := tx.Exec("UPDATE quotation SET status = $1, updated_at = $2 WHERE id = $3",
				models.QuotationStatusOpen, time.Now(), quotationID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit link", "details": err.Error()})
			return
		}

		resp.PortalURL = portalBaseURL() + "/portal/" + resp.AccessToken
		c.JSON(http.StatusCreated, resp)

		log := models.ActivityLog{
			EventContext:      "Quotation",
			EventName:         "Create",
			Description:       "Generate Supplier Link",
			UserName:          userName,
			HostName:          session.HostName,
			IPAddress:         session.IPAddress,
			CreatedAt:         time.Now(),
			QuotationID:       quotationID,
			AffectedUserName:  supplier.Name,
			AffectedUserEmail: supplier.Email,
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}
	}
}

func portalBaseURL() string {
	if base := os.Getenv("PORTAL_BASE_URL"); base != "" {
		return base
	}
	return "http://localhost:8080"
}
