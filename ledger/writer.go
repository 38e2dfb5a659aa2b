/*
writer.go - Validates and atomically records a movement

PURPOSE:
  The Writer is the single write path into the ledger. It takes a
  Movement (the typed pending transaction built by the caller),
  validates it, computes the header total, and hands one header plus
  its detail lines to the store as a single atomic unit.

TOTAL COMPUTATION:
  Sale/Purchase: total = sum of line subtotals (quantity x unit price)
  Transfer:      total = sum of line quantities (a unit count)

  The persisted header total always equals this sum at write time; reads
  never recompute or verify it.

ERROR CONTRACT:
  - ValidationError before any storage access (empty items, qty <= 0,
    negative price). Zero rows are written.
  - PersistenceError on any storage failure. The store rolls the whole
    insert back, so no partial header survives.
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Writer validates and records movements.
type Writer struct {
	store Store
}

func NewWriter(store Store) *Writer {
	return &Writer{store: store}
}

// Record validates m, computes its header total, and persists the
// header plus detail lines atomically. Returns the generated header id
// for the caller's confirmation message.
func (w *Writer) Record(ctx context.Context, m Movement) (int64, error) {
	if !m.Kind().Valid() {
		return 0, &ValidationError{Field: "kind", Index: -1, Err: ErrUnknownKind}
	}

	items := m.Items()
	if len(items) == 0 {
		return 0, &ValidationError{Field: "items", Index: -1, Err: ErrEmptyDetail}
	}

	monetary := m.Kind() != KindTransfer
	for i, item := range items {
		if item.Quantity <= 0 {
			return 0, &ValidationError{Field: "quantity", Index: i, Err: ErrInvalidQuantity}
		}
		if monetary && item.UnitPrice.IsNegative() {
			return 0, &ValidationError{Field: "unit_price", Index: i, Err: ErrInvalidPrice}
		}
	}

	total := decimal.Zero
	details := make([]Detail, len(items))
	for i, item := range items {
		d := Detail{
			Date:     m.Date(),
			SKU:      item.SKU,
			Quantity: item.Quantity,
		}
		if monetary {
			sub := item.Subtotal()
			d.UnitPrice = decimal.NewNullDecimal(item.UnitPrice)
			d.Subtotal = decimal.NewNullDecimal(sub)
			total = total.Add(sub)
		} else {
			total = total.Add(decimal.NewFromInt(int64(item.Quantity)))
		}
		details[i] = d
	}

	id, err := w.store.InsertMovement(ctx, m.header(total), details)
	if err != nil {
		if IsPersistence(err) {
			return 0, err
		}
		return 0, &PersistenceError{Op: "insert movement", Err: err}
	}
	return id, nil
}
