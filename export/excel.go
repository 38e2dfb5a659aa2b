/*
Package export renders the computed ledger views to files: a multi-sheet
spreadsheet of the full ledger and a paginated PDF account statement.
*/
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/coimpex/inventory-ledger/ledger"
)

// Sheet names, one per logical dataset.
const (
	SheetHeaders   = "Encabezado"
	SheetDetails   = "Detalle"
	SheetSales     = "Ventas"
	SheetPurchases = "Compras"
	SheetTransfers = "Transferencias"
)

// Workbook writes the full ledger as a multi-sheet xlsx: the complete
// header table, the complete detail table, and one header sheet per
// movement kind.
func Workbook(w io.Writer, headers []ledger.Header, details []ledger.Detail) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeHeaderSheet(f, SheetHeaders, headers); err != nil {
		return err
	}
	if err := writeDetailSheet(f, details); err != nil {
		return err
	}

	byKind := map[ledger.Kind]string{
		ledger.KindSale:     SheetSales,
		ledger.KindPurchase: SheetPurchases,
		ledger.KindTransfer: SheetTransfers,
	}
	for _, kind := range []ledger.Kind{ledger.KindSale, ledger.KindPurchase, ledger.KindTransfer} {
		var filtered []ledger.Header
		for _, h := range headers {
			if h.Kind == kind {
				filtered = append(filtered, h)
			}
		}
		if err := writeHeaderSheet(f, byKind[kind], filtered); err != nil {
			return err
		}
	}

	// The first sheet was renamed to Encabezado; nothing left to drop.
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

var headerColumns = []string{
	"ID", "Fecha", "Movimiento", "No. Envío", "Tipo de Venta",
	"Método de Pago", "Bodega 1", "Bodega 2", "Cliente", "Proveedor",
	"Total", "Estado",
}

func writeHeaderSheet(f *excelize.File, name string, headers []ledger.Header) error {
	if err := ensureSheet(f, name); err != nil {
		return err
	}
	if err := writeRow(f, name, 1, toAny(headerColumns)); err != nil {
		return err
	}
	for i, h := range headers {
		row := []any{
			h.ID,
			h.Date.Format("2006-01-02"),
			h.Kind.String(),
			h.ShipmentRef,
			h.SaleType,
			h.PaymentMethod,
			h.Warehouse1,
			h.Warehouse2,
			h.ClientID,
			h.Supplier,
			h.Total.InexactFloat64(),
			string(h.Status),
		}
		if err := writeRow(f, name, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

var detailColumns = []string{
	"ID", "ID Transacción", "Fecha", "SKU", "Cantidad", "Precio", "Subtotal",
}

func writeDetailSheet(f *excelize.File, details []ledger.Detail) error {
	if err := ensureSheet(f, SheetDetails); err != nil {
		return err
	}
	if err := writeRow(f, SheetDetails, 1, toAny(detailColumns)); err != nil {
		return err
	}
	for i, d := range details {
		row := []any{
			d.ID,
			d.HeaderID,
			d.Date.Format("2006-01-02"),
			d.SKU,
			d.Quantity,
			optionalFloat(d.UnitPrice),
			optionalFloat(d.Subtotal),
		}
		if err := writeRow(f, SheetDetails, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// ensureSheet creates the named sheet, reusing excelize's default first
// sheet for the first dataset written.
func ensureSheet(f *excelize.File, name string) error {
	if idx, err := f.GetSheetIndex(name); err == nil && idx >= 0 {
		return nil
	}
	sheets := f.GetSheetList()
	if len(sheets) == 1 && sheets[0] == "Sheet1" {
		return f.SetSheetName("Sheet1", name)
	}
	_, err := f.NewSheet(name)
	return err
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// optionalFloat renders a nullable amount, leaving transfer cells empty.
func optionalFloat(d decimal.NullDecimal) any {
	if !d.Valid {
		return ""
	}
	return d.Decimal.InexactFloat64()
}
