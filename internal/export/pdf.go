package export

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin = 12.0
	rowHeight  = 14.0
	lineHeight = 6.0
	barcodeW   = 48.0
	barcodeH   = 9.0
)

// column widths in mm for handReceiptHeaders plus the barcode column.
var handReceiptWidths = []float64{18, 34, 70, 34, 12, 26}

// HandReceiptPDF writes h as a PDF with one Code 128 barcode per serial.
func HandReceiptPDF(w io.Writer, h HandReceipt) error {
	if len(h.Items) == 0 {
		return ErrNoRows
	}

	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle("Hand Receipt "+h.Number, true)
	pdf.SetCreator("propbook", true)
	if !h.Date.IsZero() {
		pdf.SetCreationDate(h.Date)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	header := func() {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, tr("Hand Receipt "+h.Number), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		meta := fmt.Sprintf("Unit: %s    From: %s    To: %s    Date: %s", h.Unit, h.From, h.To, Plain(h.Date))
		pdf.CellFormat(0, lineHeight, tr(meta), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(223, 232, 210)
		for i, label := range handReceiptHeaders {
			align := "L"
			if i >= 4 {
				align = "R"
			}
			pdf.CellFormat(handReceiptWidths[i], lineHeight+1, label, "1", 0, align, true, 0, "")
		}
		pdf.CellFormat(barcodeW+4, lineHeight+1, "Barcode", "1", 1, "C", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}

	header()
	_, pageH := pdf.GetPageSize()
	for _, item := range h.Items {
		if pdf.GetY()+rowHeight > pageH-2*pageMargin {
			header()
		}
		x, y := pdf.GetXY()
		cells := []string{item.LIN, item.NSN, item.Nomenclature, item.Serial, fmt.Sprint(item.Quantity), Plain(item.Value())}
		for i, c := range cells {
			align := "L"
			if i >= 4 {
				align = "R"
			}
			pdf.CellFormat(handReceiptWidths[i], rowHeight, tr(c), "1", 0, align, false, 0, "")
		}
		bx := pdf.GetX()
		pdf.CellFormat(barcodeW+4, rowHeight, "", "1", 1, "", false, 0, "")
		if item.Serial != "" {
			name, err := registerBarcode(pdf, item.Serial)
			if err != nil {
				return err
			}
			pdf.ImageOptions(name, bx+2, y+(rowHeight-barcodeH)/2, barcodeW, barcodeH, false,
				gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		}
		pdf.SetXY(x, y+rowHeight)
	}

	pdf.SetFont("Helvetica", "B", 9)
	var used float64
	for _, cw := range handReceiptWidths[:5] {
		used += cw
	}
	pdf.CellFormat(used, lineHeight+1, "Total value", "1", 0, "R", false, 0, "")
	pdf.CellFormat(handReceiptWidths[5], lineHeight+1, Plain(h.Total()), "1", 1, "R", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(90, lineHeight, tr("Received by: "+h.To), "T", 0, "L", false, 0, "")
	pdf.CellFormat(20, lineHeight, "", "", 0, "", false, 0, "")
	pdf.CellFormat(90, lineHeight, tr("Issued by: "+h.From), "T", 1, "L", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build hand receipt: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write hand receipt: %w", err)
	}
	return nil
}

// registerBarcode encodes serial as Code 128 and registers it as a PNG image
// named after the serial. Repeated serials reuse the registered image.
func registerBarcode(pdf *gofpdf.Fpdf, serial string) (string, error) {
	name := "barcode-" + serial
	if info := pdf.GetImageInfo(name); info != nil {
		return name, nil
	}
	bc, err := code128.Encode(serial)
	if err != nil {
		return "", fmt.Errorf("encode serial %q: %w", serial, err)
	}
	scaled, err := barcode.Scale(bc, bc.Bounds().Dx()*2, 60)
	if err != nil {
		return "", fmt.Errorf("scale barcode %q: %w", serial, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", fmt.Errorf("encode barcode %q: %w", serial, err)
	}
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	return name, nil
}
