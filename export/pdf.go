package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/coimpex/inventory-ledger/ledger"
)

// StatementPDF writes a paginated account statement: the client's line
// items in a table plus the three running totals.
func StatementPDF(w io.Writer, st ledger.Statement) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 20)

	// Column widths sum to the printable width of an A4 portrait page.
	widths := []float64{22, 14, 56, 20, 26, 26, 26}
	titles := []string{"Fecha", "ID", "Producto", "Cantidad", "Precio", "Subtotal", "Estado"}

	tableHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, t := range titles {
			pdf.CellFormat(widths[i], 7, tr(t), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr("Estado de Cuenta"), "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, tr("Cliente: "+st.ClientName), "", 1, "C", false, 0, "")
		pdf.Ln(3)
		tableHeader()
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)
	for _, line := range st.Lines {
		cells := []string{
			line.Date,
			fmt.Sprintf("%d", line.HeaderID),
			line.Product,
			fmt.Sprintf("%d", line.Quantity),
			"Q " + line.UnitPrice.StringFixed(2),
			"Q " + line.Subtotal.StringFixed(2),
			string(line.Status),
		}
		aligns := []string{"C", "C", "L", "C", "R", "R", "L"}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, tr("Total Comprado: Q "+st.TotalComprado.StringFixed(2)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, tr("Total Pagado: Q "+st.TotalPagado.StringFixed(2)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, tr("Total Pendiente: Q "+st.TotalPendiente.StringFixed(2)), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write statement pdf: %w", err)
	}
	return nil
}
