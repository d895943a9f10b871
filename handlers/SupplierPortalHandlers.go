package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"sort"
	"time"

	"pharmacy-backend/models"
	"pharmacy-backend/services"
	"pharmacy-backend/storage"

	"github.com/gin-gonic/gin"
)

// The portal endpoints authenticate by access token alone. Suppliers never
// have accounts or sessions; the token in the URL is the whole credential.

// GetSupplierPortal shows a supplier its quotation and saved prices.
// @Summary Supplier portal view
// @Description Resolves the portal token and returns the quotation items plus this supplier's saved prices. Other suppliers' prices are never exposed.
// @Tags SupplierPortal
// @Produce json
// @Param token path string true "Portal access token"
// @Success 200 {object} models.SupplierPortalView
// @Failure 404 {object} models.ErrorResponse
// @Router /portal/{token} [get]
func GetSupplierPortal(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		sq, err := storage.GetSupplierQuotationByToken(db, token)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid portal link"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve portal link", "details": err.Error()})
			return
		}

		quotation, err := storage.LoadQuotationSnapshot(db, sq.QuotationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quotation", "details": err.Error()})
			return
		}

		view := models.SupplierPortalView{
			QuotationID:   quotation.ID,
			QuotationName: quotation.Name,
			Deadline:      quotation.Deadline,
			Status:        sq.Status,
			SubmittedAt:   sq.SubmittedAt,
			SupplierName:  sq.SupplierName,
			Items:         quotation.Items,
		}

		// stable order for the portal form
		for _, entry := range sq.Prices {
			view.SavedPrices = append(view.SavedPrices, entry)
		}
		sort.Slice(view.SavedPrices, func(i, j int) bool {
			return view.SavedPrices[i].ProductID < view.SavedPrices[j].ProductID
		})

		c.JSON(http.StatusOK, view)
	}
}

// SubmitSupplierPrices saves or finally submits a supplier's prices.
// @Summary Submit supplier prices
// @Description Merges the posted price entries into the supplier's record. With final_submit=true the record locks and later calls are rejected.
// @Tags SupplierPortal
// @Accept json
// @Produce json
// @Param token path string true "Portal access token"
// @Param body body models.SubmitPricesRequest true "Price entries"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /portal/{token}/prices [post]
func SubmitSupplierPrices(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		var req models.SubmitPricesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		sq, err := storage.GetSupplierQuotationByToken(db, token)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid portal link"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve portal link", "details": err.Error()})
			return
		}

		quotation, err := storage.LoadQuotationSnapshot(db, sq.QuotationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quotation", "details": err.Error()})
			return
		}

		expectedVersion := sq.Version
		if err := services.SubmitPrices(quotation, sq, req.Entries, req.FinalSubmit); err != nil {
			switch {
			case errors.Is(err, services.ErrQuotationClosed):
				c.JSON(http.StatusConflict, gin.H{"error": "Quotation is closed", "details": err.Error()})
			case errors.Is(err, services.ErrAlreadySubmitted):
				c.JSON(http.StatusConflict, gin.H{"error": "Prices were already submitted", "details": err.Error()})
			case errors.Is(err, services.ErrUnknownProduct):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Entry references a product outside this quotation", "details": err.Error()})
			case errors.Is(err, services.ErrInvalidPrice):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Prices cannot be negative", "details": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process submission", "details": err.Error()})
			}
			return
		}

		if err := storage.SaveSupplierSubmission(db, sq, expectedVersion, req.Entries); err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": "Submission raced with another save, reload and retry"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save submission", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":      "Prices saved",
			"status":       sq.Status,
			"submitted_at": sq.SubmittedAt,
		})

		if req.FinalSubmit {
			log := models.ActivityLog{
				EventContext:     "SupplierPortal",
				EventName:        "Submit",
				Description:      "Supplier submitted prices",
				UserName:         sq.SupplierName,
				HostName:         c.Request.Host,
				IPAddress:        c.ClientIP(),
				CreatedAt:        time.Now(),
				QuotationID:      sq.QuotationID,
				AffectedUserName: sq.SupplierName,
			}
			if logErr := SaveActivityLog(db, log); logErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
				return
			}
		}
	}
}
