package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"pharmacy-backend/services"
	"pharmacy-backend/storage"

	"github.com/gin-gonic/gin"
)

// GetComparison builds the price comparison for a quotation.
// @Summary Compare supplier prices
// @Description Returns the per-product best price, savings and supplier totals derived from all submitted supplier quotations. Requires Authorization header.
// @Tags Comparison
// @Produce json
// @Param id path int true "Quotation ID"
// @Success 200 {object} models.ComparisonSummary
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotation/{id}/comparison [get]
func GetComparison(db *sql.DB) gin.HandlerFunc {
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

		c.JSON(http.StatusOK, services.BuildComparison(quotation))
	}
}
