package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"pharmacy-backend/models"
	"pharmacy-backend/repository"

	"github.com/gin-gonic/gin"
)

// CreateProduct adds a product to the catalog.
// @Summary Create product
// @Description Creates a catalog product. Requires Authorization header.
// @Tags Products
// @Accept json
// @Produce json
// @Param body body models.Product true "Product data"
// @Success 201 {object} models.Product
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/create_product [post]
func CreateProduct(db *sql.DB) gin.HandlerFunc {
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

		var product models.Product
		if err := c.ShouldBindJSON(&product); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		if product.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product name is required"})
			return
		}
		if product.Unit == "" {
			product.Unit = "UN"
		}

		product.Active = true
		product.CreatedAt = time.Now()
		product.UpdatedAt = time.Now()

		// name_normalized feeds the accent-insensitive search
		query := `
			INSERT INTO products (name, name_normalized, description, barcode, unit, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING product_id
		`
		err = db.QueryRow(query,
			product.Name,
			repository.NormalizeProductName(product.Name),
			product.Description,
			product.Barcode,
			product.Unit,
			product.Active,
			product.CreatedAt,
			product.UpdatedAt,
		).Scan(&product.ProductID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert product", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, product)

		log := models.ActivityLog{
			EventContext: "Product",
			EventName:    "Create",
			Description:  "Create Product",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}
	}
}

// UpdateProduct updates a catalog product.
// @Summary Update product
// @Description Updates a catalog product by id. Requires Authorization header.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param body body models.Product true "Product data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/update_product/{id} [put]
func UpdateProduct(db *sql.DB) gin.HandlerFunc {
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

		productID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var product models.Product
		if err := c.ShouldBindJSON(&product); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if product.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product name is required"})
			return
		}

		result, err := db.Exec(`
			UPDATE products
			SET name = $1, name_normalized = $2, description = $3, barcode = $4, unit = $5, active = $6, updated_at = $7
			WHERE product_id = $8`,
			product.Name,
			repository.NormalizeProductName(product.Name),
			product.Description,
			product.Barcode,
			product.Unit,
			product.Active,
			time.Now(),
			productID,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully"})

		log := models.ActivityLog{
			EventContext: "Product",
			EventName:    "Update",
			Description:  "Update Product",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}
	}
}

// GetProducts lists catalog products, with optional accent-insensitive search.
// @Summary List products
// @Description Returns products. ?search= matches names ignoring accents and case. Requires Authorization header.
// @Tags Products
// @Produce json
// @Param search query string false "Search term"
// @Param active query bool false "Filter by active flag"
// @Success 200 {array} models.Product
// @Failure 401 {object} models.ErrorResponse
// @Router /api/products [get]
func GetProducts(db *sql.DB) gin.HandlerFunc {
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
			SELECT product_id, name, description, barcode, unit, active, created_at, updated_at
			FROM products
			WHERE 1=1
		`
		var args []interface{}
		argIndex := 1

		if search := c.Query("search"); search != "" {
			query += " AND name_normalized LIKE $" + strconv.Itoa(argIndex)
			args = append(args, "%"+repository.NormalizeProductName(search)+"%")
			argIndex++
		}
		if active := c.Query("active"); active != "" {
			activeBool, err := strconv.ParseBool(active)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid active filter"})
				return
			}
			query += " AND active = $" + strconv.Itoa(argIndex)
			args = append(args, activeBool)
			argIndex++
		}
		query += " ORDER BY name"

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products", "details": err.Error()})
			return
		}
		defer rows.Close()

		var products []models.Product
		for rows.Next() {
			var p models.Product
			var description, barcode sql.NullString
			if err := rows.Scan(&p.ProductID, &p.Name, &description, &barcode, &p.Unit, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product", "details": err.Error()})
				return
			}
			p.Description = getStringOrEmpty(description)
			p.Barcode = getStringOrEmpty(barcode)
			products = append(products, p)
		}

		c.JSON(http.StatusOK, products)
	}
}

// DeleteProduct deactivates a catalog product.
// @Summary Deactivate product
// @Description Marks a product inactive; rows referenced by quotations are never removed. Requires Authorization header.
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/delete_product/{id} [delete]
func DeleteProduct(db *sql.DB) gin.HandlerFunc {
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

		productID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		result, err := db.Exec("UPDATE products SET active = false, updated_at = $1 WHERE product_id = $2", time.Now(), productID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Product deactivated"})

		log := models.ActivityLog{
			EventContext: "Product",
			EventName:    "Delete",
			Description:  "Deactivate Product",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}
	}
}
