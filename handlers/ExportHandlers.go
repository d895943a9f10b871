package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pharmacy-backend/models"
	"pharmacy-backend/repository"
	"pharmacy-backend/services"
	"pharmacy-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportComparisonExcel exports the price comparison matrix as XLSX.
// @Summary      Export comparison as Excel
// @Tags         export
// @Param        id  path  int  true  "Quotation ID"
// @Success      200  {file}  file  "Excel file"
// @Failure      400  {object}  object
// @Router       /api/quotation/{id}/export_comparison [get]
func ExportComparisonExcel(c *gin.Context) {
	db := storage.GetDB()

	quotationIDStr := c.Param("id")
	quotationID, err := strconv.Atoi(quotationIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quotation id"})
		return
	}

	quotation, err := storage.LoadQuotationSnapshot(db, quotationID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found", "details": err.Error()})
		return
	}
	summary := services.BuildComparison(quotation)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error closing Excel file"})
		}
	}()

	// Summary sheet
	summarySheet := "Summary"
	index, err := f.NewSheet(summarySheet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating summary sheet"})
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(summarySheet, "A1", "Quotation Comparison Summary")
	f.SetCellValue(summarySheet, "A2", "Quotation ID")
	f.SetCellValue(summarySheet, "B2", summary.QuotationID)
	f.SetCellValue(summarySheet, "A3", "Quotation Name")
	f.SetCellValue(summarySheet, "B3", summary.QuotationName)
	f.SetCellValue(summarySheet, "A4", "Total Products")
	f.SetCellValue(summarySheet, "B4", summary.TotalProducts)
	f.SetCellValue(summarySheet, "A5", "Suppliers Invited")
	f.SetCellValue(summarySheet, "B5", summary.TotalSuppliers)
	f.SetCellValue(summarySheet, "A6", "Suppliers Responded")
	f.SetCellValue(summarySheet, "B6", summary.RespondedSuppliers)
	f.SetCellValue(summarySheet, "A7", "Maximum Savings")
	f.SetCellValue(summarySheet, "B7", summary.MaxSavings)

	f.SetCellValue(summarySheet, "A9", "Supplier Totals")
	f.SetCellValue(summarySheet, "A10", "Supplier")
	f.SetCellValue(summarySheet, "B10", "Products Quoted")
	f.SetCellValue(summarySheet, "C10", "Best Prices Won")
	f.SetCellValue(summarySheet, "D10", "Total Value")
	for i, total := range summary.SupplierTotals {
		row := 11 + i
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), total.SupplierName)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), total.ProductsQuoted)
		f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), total.ProductsWithBestPrice)
		f.SetCellValue(summarySheet, fmt.Sprintf("D%d", row), total.TotalValue)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   14,
			Family: "Arial",
			Color:  "#FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating title style"})
		return
	}
	f.SetCellStyle(summarySheet, "A1", "B1", titleStyle)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   12,
			Family: "Arial",
			Color:  "#FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#70AD47"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating header style"})
		return
	}
	f.SetCellStyle(summarySheet, "A10", "D10", headerStyle)
	f.SetColWidth(summarySheet, "A", "A", 35)
	f.SetColWidth(summarySheet, "B", "D", 18)

	bestStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Family: "Arial",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#C6EFCE"},
			Pattern: 1,
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating best price style"})
		return
	}

	// Comparison matrix sheet: one row per product, one column per supplier
	matrixSheet := "Comparison"
	if _, err := f.NewSheet(matrixSheet); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating comparison sheet"})
		return
	}

	f.SetCellValue(matrixSheet, "A1", "Product")
	f.SetCellValue(matrixSheet, "B1", "Total Qty")
	supplierCols := make(map[int]int)
	col := 3
	for _, total := range summary.SupplierTotals {
		cell, _ := excelize.CoordinatesToCellName(col, 1)
		f.SetCellValue(matrixSheet, cell, total.SupplierName)
		supplierCols[total.SupplierID] = col
		col++
	}
	bestCol := col
	savingsCol := col + 1
	bestCell, _ := excelize.CoordinatesToCellName(bestCol, 1)
	savingsCell, _ := excelize.CoordinatesToCellName(savingsCol, 1)
	f.SetCellValue(matrixSheet, bestCell, "Best Supplier")
	f.SetCellValue(matrixSheet, savingsCell, "Savings")

	lastHeaderCell, _ := excelize.CoordinatesToCellName(savingsCol, 1)
	f.SetCellStyle(matrixSheet, "A1", lastHeaderCell, headerStyle)

	for i, comp := range summary.Comparisons {
		row := i + 2
		f.SetCellValue(matrixSheet, fmt.Sprintf("A%d", row), comp.ProductName)
		f.SetCellValue(matrixSheet, fmt.Sprintf("B%d", row), comp.TotalQuantity)
		for _, price := range comp.Prices {
			cell, _ := excelize.CoordinatesToCellName(supplierCols[price.SupplierID], row)
			if price.UnitPrice != nil {
				f.SetCellValue(matrixSheet, cell, *price.UnitPrice)
				if comp.BestPrice != nil && comp.BestPrice.SupplierID == price.SupplierID {
					f.SetCellStyle(matrixSheet, cell, cell, bestStyle)
				}
			} else {
				f.SetCellValue(matrixSheet, cell, "N/A")
			}
		}
		if comp.BestPrice != nil {
			cell, _ := excelize.CoordinatesToCellName(bestCol, row)
			f.SetCellValue(matrixSheet, cell, comp.BestPrice.SupplierName)
			cell, _ = excelize.CoordinatesToCellName(savingsCol, row)
			f.SetCellValue(matrixSheet, cell, comp.BestPrice.Savings)
		}
	}
	f.SetColWidth(matrixSheet, "A", "A", 35)

	filename := fmt.Sprintf("comparison_%s_%d.xlsx", sanitizeFilename(summary.QuotationName), quotationID)
	escaped := url.PathEscape(filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", filename, escaped))

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing Excel file"})
		return
	}
}

// ExportOrderCSV exports one purchase order as CSV.
// @Summary      Export purchase order as CSV
// @Tags         export
// @Produce      text/csv
// @Param        id  path  int  true  "Order ID"
// @Success      200  {file}  file  "CSV file"
// @Failure      400  {object}  object
// @Router       /api/order/{id}/export_csv [get]
func ExportOrderCSV(gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		var row models.PurchaseOrderGorm
		err = gormDB.Preload("Items").First(&row, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching order"})
			return
		}
		order := row.ToPurchaseOrder()

		db := storage.GetDB()
		supplier, err := repository.FetchSupplier(db, order.SupplierID)
		if err == nil {
			order.SupplierName = supplier.Name
		}

		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment;filename=%s.csv", order.OrderNumber))

		writer := csv.NewWriter(c.Writer)
		defer writer.Flush()

		header := []string{"OrderNumber", "Supplier", "Product", "Quantity", "UnitPrice", "Subtotal", "TargetStore"}
		if err := writer.Write(header); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV header"})
			return
		}

		for _, item := range order.Items {
			record := []string{
				order.OrderNumber,
				order.SupplierName,
				item.ProductName,
				strconv.Itoa(item.Quantity),
				strconv.FormatFloat(item.UnitPrice, 'f', 4, 64),
				strconv.FormatFloat(item.Subtotal, 'f', 2, 64),
				item.TargetStore,
			}
			if err := writer.Write(record); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV row"})
				return
			}
		}

		total := []string{"", "", "Total", "", "", strconv.FormatFloat(order.TotalValue, 'f', 2, 64), ""}
		if err := writer.Write(total); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV total"})
			return
		}
	}
}

func sanitizeFilename(name string) string {
	safe := strings.TrimSpace(name)
	for _, ch := range []string{" ", "/", "\\", ":", "*", "?", "\"", "<", ">", "|"} {
		replacement := "_"
		if ch != " " {
			replacement = "-"
		}
		safe = strings.ReplaceAll(safe, ch, replacement)
	}
	return safe
}
