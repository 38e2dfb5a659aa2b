/*
balance.go - Derived stock and account statement views

PURPOSE:
  Computes the two aggregate views by replaying ledger rows. Nothing
  here is ever stored: every call reads the current row set from the
  store and folds it, so reads with no intervening writes are identical.

STOCK REPLAY:
  Per SKU across all detail rows:
    entradas     += quantity  (purchases)
    salidas      += quantity  (sales)
    stock_actual += quantity for purchases, -= quantity for sales
  Transfer lines are recorded in the ledger but do not contribute to
  any of the three columns. Grouping key is the SKU; output is ordered
  ascending by SKU. A SKU with no catalog entry still appears, with the
  raw SKU as its display name.

STATEMENT REPLAY:
  Rows are the client's detail lines ordered by (date, header id).
  A non-empty status filter restricts the row set; an empty filter
  restricts nothing (headers with no status included).
    total_comprado  = sum of subtotals over the filtered rows
    total_pagado    = sum of header.total over DISTINCT Paid headers
    total_pendiente = total_comprado - total_pagado
  Summing header totals per row would double-count multi-line invoices,
  so paid headers are de-duplicated by header id.
*/
package ledger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VIEW TYPES
// =============================================================================

// StockLine is the per-SKU inflow/outflow/net balance.
type StockLine struct {
	SKU         string
	Name        string
	Entradas    int
	Salidas     int
	StockActual int
}

// StatementLine is one row of a client account statement.
type StatementLine struct {
	HeaderID  int64
	Date      string // formatted dd/mm/yyyy for display
	SKU       string
	Product   string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Status    Status
}

// Statement is the account statement for one client: the filtered line
// set plus the three scalar totals.
type Statement struct {
	ClientID       string
	ClientName     string
	Lines          []StatementLine
	TotalComprado  decimal.Decimal
	TotalPagado    decimal.Decimal
	TotalPendiente decimal.Decimal
}

// Namer decorates views with display names. The catalog satisfies this;
// a nil Namer falls back to raw keys everywhere.
type Namer interface {
	ProductName(sku string) string
	ClientName(id string) string
}

// =============================================================================
// BALANCE CALCULATOR
// =============================================================================

// BalanceCalculator derives the stock and account views from the store.
type BalanceCalculator struct {
	Store Store
	Names Namer
}

func NewBalanceCalculator(store Store, names Namer) *BalanceCalculator {
	return &BalanceCalculator{Store: store, Names: names}
}

// StockBySKU replays every detail row into per-SKU stock lines,
// ordered ascending by SKU.
func (bc *BalanceCalculator) StockBySKU(ctx context.Context) ([]StockLine, error) {
	rows, err := bc.Store.Rows(ctx)
	if err != nil {
		return nil, err
	}

	bySKU := make(map[string]*StockLine)
	for _, r := range rows {
		line, ok := bySKU[r.SKU]
		if !ok {
			line = &StockLine{SKU: r.SKU, Name: bc.productName(r.SKU)}
			bySKU[r.SKU] = line
		}
		switch r.Kind {
		case KindPurchase:
			line.Entradas += r.Quantity
			line.StockActual += r.Quantity
		case KindSale:
			line.Salidas += r.Quantity
			line.StockActual -= r.Quantity
		case KindTransfer:
			// Recorded but invisible to net stock: the views have no
			// per-warehouse axis to credit/debit against.
		}
	}

	skus := make([]string, 0, len(bySKU))
	for sku := range bySKU {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	out := make([]StockLine, len(skus))
	for i, sku := range skus {
		out[i] = *bySKU[sku]
	}
	return out, nil
}

// AccountStatement replays the client's rows, restricted by the status
// filter (empty = no restriction), into the statement view.
func (bc *BalanceCalculator) AccountStatement(ctx context.Context, clientID string, filter []Status) (Statement, error) {
	rows, err := bc.Store.ClientRows(ctx, clientID)
	if err != nil {
		return Statement{}, err
	}

	allowed := make(map[Status]bool, len(filter))
	for _, s := range filter {
		allowed[s] = true
	}

	st := Statement{
		ClientID:       clientID,
		ClientName:     bc.clientName(clientID),
		TotalComprado:  decimal.Zero,
		TotalPagado:    decimal.Zero,
		TotalPendiente: decimal.Zero,
	}

	paidSeen := make(map[int64]bool)
	for _, r := range rows {
		if len(allowed) > 0 && !allowed[r.Status] {
			continue
		}

		st.Lines = append(st.Lines, StatementLine{
			HeaderID:  r.HeaderID,
			Date:      r.Date.Format("02/01/2006"),
			SKU:       r.SKU,
			Product:   bc.productName(r.SKU),
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			Subtotal:  r.Subtotal,
			Status:    r.Status,
		})
		st.TotalComprado = st.TotalComprado.Add(r.Subtotal)

		// Header total counted once per distinct paid header.
		if r.Status == StatusPaid && !paidSeen[r.HeaderID] {
			paidSeen[r.HeaderID] = true
			st.TotalPagado = st.TotalPagado.Add(r.HeaderTotal)
		}
	}

	st.TotalPendiente = st.TotalComprado.Sub(st.TotalPagado)
	return st, nil
}

func (bc *BalanceCalculator) productName(sku string) string {
	if bc.Names == nil {
		return sku
	}
	return bc.Names.ProductName(sku)
}

func (bc *BalanceCalculator) clientName(id string) string {
	if bc.Names == nil {
		return id
	}
	return bc.Names.ClientName(id)
}
