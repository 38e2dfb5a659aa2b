/*
Package sqlite provides the SQLite-backed implementation of ledger.Store.

PURPOSE:
  Persists transaction headers and detail lines in the legacy schema
  (encabezado_transaccion / detalle_transaccion) and returns the joined
  row sets the balance calculator replays.

KEY TABLES:
  encabezado_transaccion: One row per movement (sale/purchase/transfer).
                          The transaccion column holds the legacy kind
                          code (1/2/3); estado is externally maintained
                          and only consumed by the statement filter.
  detalle_transaccion:    One row per SKU line, FK to its header. precio
                          and subtotal are NULL for transfer lines.

ATOMICITY:
  InsertMovement wraps the header insert and all detail inserts in one
  database transaction: BeginTx, inserts, Commit, with rollback on every
  failure path. A CHECK constraint on cantidad backs the writer's
  quantity validation at the storage level.

AMOUNTS AND DATES:
  Monetary amounts are bound and scanned through shopspring/decimal
  (stored as text, no float drift). Dates are stored as ISO yyyy-mm-dd.

CONCURRENCY:
  Uses sync.RWMutex plus WAL mode, matching the low-write-concurrency
  model: a handful of staff, last-writer-wins, no extra coordination.

USAGE:
  store, err := sqlite.New("./db.sqlite")
  if err != nil { ... }
  defer store.Close()
  writer := ledger.NewWriter(store)
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/coimpex/inventory-ledger/ledger"
)

const dateLayout = "2006-01-02"

// Store implements ledger.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Movement headers (legacy table and column names preserved)
	CREATE TABLE IF NOT EXISTS encabezado_transaccion (
		id_transaccion INTEGER PRIMARY KEY AUTOINCREMENT,
		fecha TEXT NOT NULL,
		transaccion INTEGER NOT NULL,   -- 1 venta, 2 compra, 3 transferencia
		no_envio TEXT,
		tipo_venta TEXT,
		metodo_pago TEXT,
		bodega1 TEXT,
		bodega2 TEXT,
		id_cliente TEXT,
		proveedor TEXT,
		total TEXT NOT NULL,
		estado TEXT                     -- externally maintained, sales only
	);

	CREATE INDEX IF NOT EXISTS idx_encabezado_transaccion_kind
		ON encabezado_transaccion(transaccion);
	CREATE INDEX IF NOT EXISTS idx_encabezado_transaccion_cliente
		ON encabezado_transaccion(id_cliente) WHERE id_cliente IS NOT NULL;

	-- Detail lines, one or more per header
	CREATE TABLE IF NOT EXISTS detalle_transaccion (
		id_detalle INTEGER PRIMARY KEY AUTOINCREMENT,
		id_transaccion INTEGER NOT NULL,
		fecha TEXT NOT NULL,
		sku TEXT NOT NULL,
		cantidad INTEGER NOT NULL CHECK (cantidad > 0),
		precio TEXT,
		subtotal TEXT,
		FOREIGN KEY (id_transaccion)
			REFERENCES encabezado_transaccion (id_transaccion)
	);

	CREATE INDEX IF NOT EXISTS idx_detalle_transaccion_header
		ON detalle_transaccion(id_transaccion);
	CREATE INDEX IF NOT EXISTS idx_detalle_transaccion_sku
		ON detalle_transaccion(sku);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITE PATH (ledger.Store interface)
// =============================================================================

// InsertMovement writes one header and its detail lines atomically and
// returns the generated header id. Any failure rolls the whole group
// back and surfaces a *ledger.PersistenceError.
func (s *Store) InsertMovement(ctx context.Context, h ledger.Header, details []ledger.Detail) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &ledger.PersistenceError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO encabezado_transaccion
			(fecha, transaccion, no_envio, tipo_venta, metodo_pago,
			 bodega1, bodega2, id_cliente, proveedor, total, estado)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.Date.Format(dateLayout),
		int(h.Kind),
		nullString(h.ShipmentRef),
		nullString(h.SaleType),
		nullString(h.PaymentMethod),
		nullString(h.Warehouse1),
		nullString(h.Warehouse2),
		nullString(h.ClientID),
		nullString(h.Supplier),
		h.Total.String(),
		nullString(string(h.Status)),
	)
	if err != nil {
		return 0, &ledger.PersistenceError{Op: "insert header", Err: err}
	}

	headerID, err := res.LastInsertId()
	if err != nil {
		return 0, &ledger.PersistenceError{Op: "read header id", Err: err}
	}

	for _, d := range details {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO detalle_transaccion
				(id_transaccion, fecha, sku, cantidad, precio, subtotal)
			VALUES (?, ?, ?, ?, ?, ?)`,
			headerID,
			d.Date.Format(dateLayout),
			d.SKU,
			d.Quantity,
			nullDecimal(d.UnitPrice),
			nullDecimal(d.Subtotal),
		)
		if err != nil {
			return 0, &ledger.PersistenceError{Op: "insert detail", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &ledger.PersistenceError{Op: "commit movement", Err: err}
	}
	return headerID, nil
}

// MarkStatus sets the payment status of a header. Status maintenance is
// outside the writer's contract (the writer never sets estado); this is
// the hook the external payment workflow uses.
func (s *Store) MarkStatus(ctx context.Context, headerID int64, status ledger.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE encabezado_transaccion SET estado = ? WHERE id_transaccion = ?`,
		string(status), headerID)
	if err != nil {
		return &ledger.PersistenceError{Op: "update status", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &ledger.PersistenceError{Op: "update status", Err: sql.ErrNoRows}
	}
	return nil
}

// =============================================================================
// READ PATH (ledger.Store interface)
// =============================================================================

// Rows returns every detail line joined to its header, ordered by
// (sku, detail id) so the stock replay folds a deterministic sequence.
func (s *Store) Rows(ctx context.Context) ([]ledger.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id_transaccion, e.fecha, e.transaccion,
		       d.sku, d.cantidad, d.precio, d.subtotal
		FROM detalle_transaccion d
		JOIN encabezado_transaccion e ON e.id_transaccion = d.id_transaccion
		ORDER BY d.sku ASC, d.id_detalle ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Row
	for rows.Next() {
		var (
			r    ledger.Row
			date string
			kind int
		)
		if err := rows.Scan(&r.HeaderID, &date, &kind, &r.SKU, &r.Quantity, &r.UnitPrice, &r.Subtotal); err != nil {
			return nil, err
		}
		r.Date, _ = time.Parse(dateLayout, date)
		r.Kind = ledger.Kind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClientRows returns the detail lines of the given client's headers,
// ordered by (date, header id, detail id).
func (s *Store) ClientRows(ctx context.Context, clientID string) ([]ledger.StatementRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id_transaccion, e.fecha, e.no_envio,
		       d.sku, d.cantidad, d.precio, d.subtotal, e.total, e.estado
		FROM encabezado_transaccion e
		JOIN detalle_transaccion d ON d.id_transaccion = e.id_transaccion
		WHERE e.id_cliente = ?
		ORDER BY e.fecha ASC, e.id_transaccion ASC, d.id_detalle ASC`,
		clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.StatementRow
	for rows.Next() {
		var (
			r        ledger.StatementRow
			date     string
			shipment sql.NullString
			precio   decimal.NullDecimal
			subtotal decimal.NullDecimal
			total    decimal.NullDecimal
			estado   sql.NullString
		)
		if err := rows.Scan(&r.HeaderID, &date, &shipment, &r.SKU, &r.Quantity,
			&precio, &subtotal, &total, &estado); err != nil {
			return nil, err
		}
		r.Date, _ = time.Parse(dateLayout, date)
		r.ShipmentRef = shipment.String
		r.UnitPrice = precio.Decimal
		r.Subtotal = subtotal.Decimal
		r.HeaderTotal = total.Decimal
		r.Status = ledger.Status(estado.String)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Headers returns headers filtered to the given kinds (none = all),
// ordered by header id.
func (s *Store) Headers(ctx context.Context, kinds ...ledger.Kind) ([]ledger.Header, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id_transaccion, fecha, transaccion, no_envio, tipo_venta,
		       metodo_pago, bodega1, bodega2, id_cliente, proveedor, total, estado
		FROM encabezado_transaccion` +
		kindFilter("transaccion", kinds) + `
		ORDER BY id_transaccion ASC`

	rows, err := s.db.QueryContext(ctx, query, kindArgs(kinds)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Header
	for rows.Next() {
		var (
			h        ledger.Header
			date     string
			kind     int
			shipment sql.NullString
			saleType sql.NullString
			payment  sql.NullString
			bodega1  sql.NullString
			bodega2  sql.NullString
			client   sql.NullString
			supplier sql.NullString
			total    decimal.Decimal
			estado   sql.NullString
		)
		if err := rows.Scan(&h.ID, &date, &kind, &shipment, &saleType, &payment,
			&bodega1, &bodega2, &client, &supplier, &total, &estado); err != nil {
			return nil, err
		}
		h.Date, _ = time.Parse(dateLayout, date)
		h.Kind = ledger.Kind(kind)
		h.ShipmentRef = shipment.String
		h.SaleType = saleType.String
		h.PaymentMethod = payment.String
		h.Warehouse1 = bodega1.String
		h.Warehouse2 = bodega2.String
		h.ClientID = client.String
		h.Supplier = supplier.String
		h.Total = total
		h.Status = ledger.Status(estado.String)
		out = append(out, h)
	}
	return out, rows.Err()
}

// Details returns detail lines whose header matches the given kinds
// (none = all), ordered by detail id.
func (s *Store) Details(ctx context.Context, kinds ...ledger.Kind) ([]ledger.Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT d.id_detalle, d.id_transaccion, d.fecha, d.sku, d.cantidad, d.precio, d.subtotal
		FROM detalle_transaccion d
		JOIN encabezado_transaccion e ON e.id_transaccion = d.id_transaccion` +
		kindFilter("e.transaccion", kinds) + `
		ORDER BY d.id_detalle ASC`

	rows, err := s.db.QueryContext(ctx, query, kindArgs(kinds)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Detail
	for rows.Next() {
		var (
			d    ledger.Detail
			date string
		)
		if err := rows.Scan(&d.ID, &d.HeaderID, &date, &d.SKU, &d.Quantity, &d.UnitPrice, &d.Subtotal); err != nil {
			return nil, err
		}
		d.Date, _ = time.Parse(dateLayout, date)
		out = append(out, d)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func kindFilter(column string, kinds []ledger.Kind) string {
	if len(kinds) == 0 {
		return ""
	}
	return fmt.Sprintf(" WHERE %s IN (%s)", column,
		strings.TrimSuffix(strings.Repeat("?, ", len(kinds)), ", "))
}

func kindArgs(kinds []ledger.Kind) []any {
	args := make([]any, len(kinds))
	for i, k := range kinds {
		args[i] = int(k)
	}
	return args
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}
