package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pharmacy-backend/models"
	"pharmacy-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// GenerateOrderPDF godoc
// @Summary      Generate purchase order PDF
// @Tags         orders
// @Param        id   path  int  true  "Order ID"
// @Success      200  "PDF file"
// @Failure      400  {object}  object
// @Failure      404  {object}  object
// @Router       /api/order_pdf/{id} [get]
func GenerateOrderPDF(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid order id"})
			return
		}

		titleCaser := cases.Title(language.Und)

		var row models.PurchaseOrderGorm
		err = gormDB.Preload("Items").First(&row, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		order := row.ToPurchaseOrder()

		supplier, err := repository.FetchSupplier(db, order.SupplierID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch supplier", "details": err.Error()})
			return
		}
		quotationName := repository.FetchQuotationName(db, order.QuotationID)

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(10, 10, 10)
		pdf.SetFont("Arial", "", 10)

		pdf.SetFont("Arial", "B", 18)
		pdf.Cell(190, 10, "PURCHASE ORDER")
		pdf.Ln(12)

		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(95, 8, "Supplier")
		pdf.Cell(95, 8, "Order")
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(90, 6, fmt.Sprintf(
			"%s\n%s\n%s\n%s",
			supplier.Name, supplier.CNPJ, supplier.Address, supplier.Email,
		), "", "", false)
		pdf.SetXY(110, 38)
		pdf.MultiCell(90, 6, fmt.Sprintf(
			"Number: %s\nQuotation: %s\nDate: %s\nStatus: %s",
			order.OrderNumber, quotationName,
			order.CreatedAt.Format("02-Jan-2006"),
			titleCaser.String(order.Status),
		), "", "", false)
		pdf.Ln(10)

		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(70, 8, "Product", "1", 0, "L", true, 0, "")
		pdf.CellFormat(25, 8, "Qty", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 8, "Unit Price", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 8, "Store", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 8, "Subtotal", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, item := range order.Items {
			store := item.TargetStore
			if store == "" {
				store = "-"
			}
			pdf.CellFormat(70, 8, item.ProductName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 8, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 8, store, "1", 0, "C", false, 0, "")
			pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", item.Subtotal), "1", 1, "R", false, 0, "")
		}

		pdf.Ln(5)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(155, 8, "Total")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", order.TotalValue), "1", 1, "R", false, 0, "")

		pdf.SetY(-20)
		pdf.SetFont("Arial", "I", 8)
		pdf.Cell(190, 6, "This is a computer-generated purchase order. No signature required.")
		pdf.Ln(5)
		pdf.Cell(190, 6, "Generated on: "+time.Now().Format("2006-01-02 15:04:05"))

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", order.OrderNumber))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
			return
		}
	}
}
