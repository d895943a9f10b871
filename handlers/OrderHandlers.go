package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pharmacy-backend/models"
	"pharmacy-backend/services"
	"pharmacy-backend/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GenerateOrders plans and persists draft purchase orders from a comparison.
// @Summary Generate purchase orders
// @Description Builds one draft order per chosen supplier from the quotation's comparison, applying per-product overrides, then marks the quotation completed. Requires Authorization header.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path int true "Quotation ID"
// @Param body body models.GenerateOrdersRequest true "Per-product overrides"
// @Success 201 {array} models.PurchaseOrder
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /api/quotation/{id}/generate_orders [post]
func GenerateOrders(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
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

		var req models.GenerateOrdersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
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

		summary := services.BuildComparison(quotation)
		orders, err := services.PlanOrders(summary, req.Overrides)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNoPriceAvailable):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "A product has no usable price", "details": err.Error()})
			case errors.Is(err, services.ErrInvalidQuantity),
				errors.Is(err, services.ErrInvalidPrice),
				errors.Is(err, services.ErrUnknownStore):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid override", "details": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to plan orders", "details": err.Error()})
			}
			return
		}
		if len(orders) == 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Every product was dropped, nothing to order"})
			return
		}

		now := time.Now()
		saved := make([]models.PurchaseOrder, 0, len(orders))
		err = gormDB.Transaction(func(tx *gorm.DB) error {
			for _, order := range orders {
				order.CreatedAt = now
				order.UpdatedAt = now
				order.CreatedBy = userName

				row := models.FromPurchaseOrder(order)
				row.ID = 0
				if err := tx.Create(&row).Error; err != nil {
					return err
				}

				order.ID = int(row.ID)
				order.SupplierName = resolveSupplierName(db, order.SupplierID, order.SupplierName)
				saved = append(saved, order)
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save orders", "details": err.Error()})
			return
		}

		// quotation is consumed once orders exist
		if quotation.Status != models.QuotationStatusCompleted {
			if err := storage.UpdateQuotationStatus(db, quotationID, models.QuotationStatusCompleted); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Orders saved but quotation status update failed", "details": err.Error()})
				return
			}
		}

		c.JSON(http.StatusCreated, saved)

		log := models.ActivityLog{
			EventContext: "Order",
			EventName:    "Create",
			Description:  "Generate Purchase Orders",
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

func resolveSupplierName(db *sql.DB, supplierID int, fallback string) string {
	if fallback != "" {
		return fallback
	}
	var name string
	if err := db.QueryRow("SELECT name FROM suppliers WHERE supplier_id = $1", supplierID).Scan(&name); err != nil {
		return fallback
	}
	return name
}

// GetOrders lists purchase orders.
// @Summary List purchase orders
// @Description Returns purchase orders, optionally filtered by quotation or status. Requires Authorization header.
// @Tags Orders
// @Produce json
// @Param quotation_id query int false "Filter by quotation"
// @Param status query string false "Filter by status"
// @Success 200 {array} models.PurchaseOrder
// @Failure 401 {object} models.ErrorResponse
// @Router /api/orders [get]
func GetOrders(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
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

		query := gormDB.Preload("Items").Order("created_at DESC")
		if quotationID := c.Query("quotation_id"); quotationID != "" {
			id, err := strconv.Atoi(quotationID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quotation_id filter"})
				return
			}
			query = query.Where("quotation_id = ?", id)
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var rows []models.PurchaseOrderGorm
		if err := query.Find(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders", "details": err.Error()})
			return
		}

		orders := make([]models.PurchaseOrder, 0, len(rows))
		for i := range rows {
			order := rows[i].ToPurchaseOrder()
			order.SupplierName = resolveSupplierName(db, order.SupplierID, order.SupplierName)
			orders = append(orders, order)
		}

		c.JSON(http.StatusOK, orders)
	}
}

// GetOrderByID returns one purchase order with its items.
// @Summary Get purchase order
// @Description Returns a purchase order by id. Requires Authorization header.
// @Tags Orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.PurchaseOrder
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/order/{id} [get]
func GetOrderByID(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
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

		orderID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
			return
		}

		var row models.PurchaseOrderGorm
		err = gormDB.Preload("Items").First(&row, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order", "details": err.Error()})
			return
		}

		order := row.ToPurchaseOrder()
		order.SupplierName = resolveSupplierName(db, order.SupplierID, order.SupplierName)
		c.JSON(http.StatusOK, order)
	}
}

// ReplaceOrderItemsHandler swaps a draft order's item list.
// @Summary Replace order items
// @Description Replaces the item list of a draft order and recomputes its totals. Confirmed orders reject the change. Requires Authorization header.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param body body models.ReplaceOrderItemsRequest true "New item list"
// @Success 200 {object} models.PurchaseOrder
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/order/{id}/items [put]
func ReplaceOrderItemsHandler(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
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

		orderID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
			return
		}

		var req models.ReplaceOrderItemsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order needs at least one item"})
			return
		}

		var row models.PurchaseOrderGorm
		err = gormDB.Preload("Items").First(&row, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order", "details": err.Error()})
			return
		}

		order := row.ToPurchaseOrder()
		if err := services.ReplaceOrderItems(&order, req.Items); err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidTransition):
				c.JSON(http.StatusConflict, gin.H{"error": "Only draft orders can change items", "details": err.Error()})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid items", "details": err.Error()})
			}
			return
		}

		err = gormDB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("purchase_order_id = ?", row.ID).Delete(&models.PurchaseOrderItemGorm{}).Error; err != nil {
				return err
			}
			for _, it := range order.Items {
				item := models.PurchaseOrderItemGorm{
					PurchaseOrderID: row.ID,
					ProductID:       it.ProductID,
					ProductName:     it.ProductName,
					Quantity:        it.Quantity,
					UnitPrice:       it.UnitPrice,
					Subtotal:        it.Subtotal,
					TargetStore:     it.TargetStore,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			}
			return tx.Model(&models.PurchaseOrderGorm{}).Where("id = ?", row.ID).
				Updates(map[string]interface{}{"total_value": order.TotalValue, "updated_at": time.Now()}).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save items", "details": err.Error()})
			return
		}

		order.UpdatedAt = time.Now()
		c.JSON(http.StatusOK, order)

		log := models.ActivityLog{
			EventContext: "Order",
			EventName:    "Update",
			Description:  "Replace Order Items",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			QuotationID:  order.QuotationID,
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}
	}
}

// TransitionOrderHandler advances an order's status by one step.
// @Summary Advance order status
// @Description Moves the order to the next status in draft, confirmed, sent, delivered. Skipping or going back is rejected. Requires Authorization header.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param body body models.TransitionOrderRequest true "Target status"
// @Success 200 {object} models.PurchaseOrder
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/order/{id}/status [put]
func TransitionOrderHandler(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
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

		orderID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
			return
		}

		var req models.TransitionOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		var row models.PurchaseOrderGorm
		err = gormDB.Preload("Items").First(&row, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order", "details": err.Error()})
			return
		}

		order := row.ToPurchaseOrder()
		if err := services.TransitionOrder(&order, req.Status); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Invalid status transition", "details": err.Error()})
			return
		}

		err = gormDB.Model(&models.PurchaseOrderGorm{}).Where("id = ?", row.ID).
			Updates(map[string]interface{}{"status": order.Status, "updated_at": time.Now()}).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status", "details": err.Error()})
			return
		}

		order.UpdatedAt = time.Now()
		c.JSON(http.StatusOK, order)

		log := models.ActivityLog{
			EventContext: "Order",
			EventName:    "Update",
			Description:  "Order moved to " + order.Status,
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			QuotationID:  order.QuotationID,
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}
	}
}

// DeleteOrder removes a draft purchase order.
// @Summary Delete purchase order
// @Description Soft-deletes a draft order. Confirmed or later orders are kept. Requires Authorization header.
// @Tags Orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/delete_order/{id} [delete]
func DeleteOrder(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
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

		orderID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
			return
		}

		var row models.PurchaseOrderGorm
		err = gormDB.First(&row, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order", "details": err.Error()})
			return
		}

		if row.Status != models.OrderStatusDraft {
			c.JSON(http.StatusConflict, gin.H{"error": "Only draft orders can be deleted"})
			return
		}

		if err := gormDB.Delete(&row).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})

		log := models.ActivityLog{
			EventContext: "Order",
			EventName:    "Delete",
			Description:  "Delete Purchase Order " + row.OrderNumber,
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			QuotationID:  row.QuotationID,
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}
	}
}
