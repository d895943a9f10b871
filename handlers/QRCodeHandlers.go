package handlers

import (
	"bytes"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"

	"pharmacy-backend/repository"
	"pharmacy-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

// addLabel adds text to an image at the specified position
func addLabel(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{0, 0, 0, 255}
	face := inconsolata.Regular8x16

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  point,
	}
	d.DrawString(label)
}

// addLabelBold adds bold text for field labels
func addLabelBold(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{30, 30, 30, 255}
	face := inconsolata.Bold8x16

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  point,
	}
	d.DrawString(label)
}

// GeneratePortalQRCodeJPEG godoc
// @Summary      Generate supplier portal QR code as JPEG
// @Description  Encodes the supplier's portal URL so a printed invite opens the quotation on a phone.
// @Tags         qr
// @Param        token  path      string  true  "Portal access token"
// @Success      200    {file}    file  "JPEG image"
// @Failure      400    {object}  object
// @Router       /api/generate-portal-qr/{token} [get]
func GeneratePortalQRCodeJPEG(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Portal token is required"})
			return
		}

		sq, err := storage.GetSupplierQuotationByToken(db, token)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid portal link"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve portal link"})
			return
		}

		quotationName := repository.FetchQuotationName(db, sq.QuotationID)
		portalURL := portalBaseURL() + "/portal/" + token

		qr, err := qrcode.New(portalURL, qrcode.Medium)
		if err != nil {
			c.String(http.StatusInternalServerError, "QR code generation failed")
			return
		}

		qrImg := qr.Image(512)

		qrSize := qrImg.Bounds().Dy()
		padding := 30
		lineHeight := 28
		textAreaHeight := 3*lineHeight + padding
		totalHeight := qrSize + padding + textAreaHeight

		combinedImg := image.NewRGBA(image.Rect(0, 0, qrSize, totalHeight))
		draw.Draw(combinedImg, combinedImg.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

		qrRect := image.Rect(0, 0, qrSize, qrSize)
		draw.Draw(combinedImg, qrRect, qrImg, image.Point{}, draw.Src)

		separatorY := qrSize + padding/2
		for x := 0; x < qrSize; x++ {
			combinedImg.Set(x, separatorY, color.RGBA{200, 200, 200, 255})
		}

		startY := qrSize + padding + lineHeight
		xPos := 20

		deadlineStr := "open"
		if sq.SubmittedAt != nil {
			deadlineStr = "submitted"
		}

		addLabelBold(combinedImg, xPos, startY, "Quotation:")
		quotationDisplay := quotationName
		if len(quotationDisplay) > 30 {
			quotationDisplay = quotationDisplay[:27] + "..."
		}
		addLabel(combinedImg, xPos+120, startY, quotationDisplay)

		addLabelBold(combinedImg, xPos, startY+lineHeight, "Supplier:")
		supplierDisplay := sq.SupplierName
		if len(supplierDisplay) > 30 {
			supplierDisplay = supplierDisplay[:27] + "..."
		}
		addLabel(combinedImg, xPos+120, startY+lineHeight, supplierDisplay)

		addLabelBold(combinedImg, xPos, startY+2*lineHeight, "Status:")
		addLabel(combinedImg, xPos+120, startY+2*lineHeight, deadlineStr)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, combinedImg, nil); err != nil {
			c.String(http.StatusInternalServerError, "JPEG encoding failed")
			return
		}

		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}
