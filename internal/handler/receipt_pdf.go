package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"pharmacy-order-api/internal/dto"
)

// GetReceiptPDF renders the receipt as a printable PDF with the order QR code
// embedded, served as a download.
func (h *OrderHandler) GetReceiptPDF(c echo.Context) error {
	ctx := c.Request().Context()

	receipt, err := h.orderService.GetReceipt(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	pdfBytes, err := renderReceiptPDF(receipt)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate receipt")
	}

	c.Response().Header().Set("Content-Disposition", "attachment; filename=receipt-"+receipt.OrderID+".pdf")
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}

func renderReceiptPDF(receipt *dto.Receipt) ([]byte, error) {
	qrPNG, err := qrcode.Encode(receipt.QRString, qrcode.Medium, 128)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "Order Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 7, fmt.Sprintf(
		"Order: %s\nStatus: %s\nCustomer: %s (%s)\nFulfillment: %s\nCreated: %s",
		receipt.OrderID,
		receipt.Status,
		receipt.CustomerName,
		receipt.CustomerPhone,
		receipt.Fulfillment,
		receipt.CreatedAt,
	), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, item := range receipt.Items {
		pdf.CellFormat(90, 8, item.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", item.Qty), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, money(item.UnitCents), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, money(item.LineCents), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.CellFormat(140, 8, "Subtotal", "T", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, money(receipt.SubtotalCents), "T", 1, "R", false, 0, "")
	pdf.CellFormat(140, 8, "Shipping", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, money(receipt.ShippingCents), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(140, 8, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, money(receipt.TotalCents), "", 1, "R", false, 0, "")

	if receipt.Address != nil {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, "Delivery address", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 7, fmt.Sprintf("%s\n%s, %s %s\n%s",
			receipt.Address.Line1,
			receipt.Address.City,
			receipt.Address.State,
			receipt.Address.PostalCode,
			receipt.Address.Phone,
		), "", "L", false)
	}

	if receipt.Delivery != nil {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, fmt.Sprintf("Window: %s %s-%s",
			receipt.Delivery.Date, receipt.Delivery.StartTime, receipt.Delivery.EndTime,
		), "", 1, "L", false, 0, "")
	}

	imgOpts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader("qr", imgOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imgOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func money(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
