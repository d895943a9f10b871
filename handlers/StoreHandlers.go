package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmacy-backend/models"
)

// GetStores lists the pharmacy stores in quantity-column order
// @Summary List pharmacy stores
// @Description Ordered set of store codes that quantity maps are keyed by
// @Tags Stores
// @Produce json
// @Success 200 {array} models.PharmacyStore
// @Failure 401 {object} models.ErrorResponse
// @Router /api/stores [get]
func GetStores(db *sql.DB) gin.HandlerFunc {
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

		rows, err := db.Query(`SELECT id, code, name, position FROM pharmacy_stores ORDER BY position`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stores", "details": err.Error()})
			return
		}
		defer rows.Close()

		stores := []models.PharmacyStore{}
		for rows.Next() {
			var s models.PharmacyStore
			if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Position); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan store", "details": err.Error()})
				return
			}
			stores = append(stores, s)
		}
		if err := rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read stores", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, stores)
	}
}
