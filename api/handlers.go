/*
handlers.go - HTTP handlers for the movement ledger

PURPOSE:
  Exposes the ledger core over REST. One write operation and three read
  operations, plus the two export renderings and the catalog product
  list the movement form populates itself from.

ENDPOINTS:
  POST /api/movements                     Record a movement
  GET  /api/movements?kind=1&kind=2       Raw filtered header/detail listing
  GET  /api/stock                         Stock view
  GET  /api/clients/{id}/statement        Account statement (?estado=... filter)
  GET  /api/clients/{id}/statement.pdf    Statement as PDF
  GET  /api/export/movements.xlsx         Full ledger workbook
  GET  /api/catalog/products              Product list for the form

REQUEST FLOW:
  1. Decode and shape-check the DTO (validator/v10)
  2. Call the core (writer / balance calculator / store)
  3. Serialize response

ERROR HANDLING:
  - 400: malformed body, DTO validation failure, writer ValidationError
  - 404: unknown route parameters
  - 500: persistence failures
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/coimpex/inventory-ledger/catalog"
	"github.com/coimpex/inventory-ledger/export"
	"github.com/coimpex/inventory-ledger/ledger"
	"github.com/coimpex/inventory-ledger/store/sqlite"
)

var validate = validator.New()

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Writer  *ledger.Writer
	Calc    *ledger.BalanceCalculator
	Catalog *catalog.Catalog
}

// NewHandler wires the core against the given store and catalog.
// The catalog may be nil; views then fall back to raw keys.
func NewHandler(store *sqlite.Store, cat *catalog.Catalog) *Handler {
	var names ledger.Namer
	if cat != nil {
		names = cat
	}
	return &Handler{
		Store:   store,
		Writer:  ledger.NewWriter(store),
		Calc:    ledger.NewBalanceCalculator(store, names),
		Catalog: cat,
	}
}

// =============================================================================
// WRITE
// =============================================================================

// RecordMovement records one movement and returns its header id.
func (h *Handler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	var req RecordMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid movement", validationDetails(err))
		return
	}

	movement, err := req.toMovement()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid movement", err)
		return
	}

	id, err := h.Writer.Record(r.Context(), movement)
	if err != nil {
		if ledger.IsValidation(err) {
			writeError(w, http.StatusBadRequest, "Invalid movement", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to record movement", err)
		return
	}

	writeJSON(w, http.StatusCreated, RecordMovementResponse{ID: id})
}

// toMovement builds the typed union out of the flat wire form. The
// date has already passed the datetime validator.
func (req RecordMovementRequest) toMovement() (ledger.Movement, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	items := make([]ledger.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = ledger.Item{
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: decimal.NewFromFloat(it.UnitPrice),
		}
	}

	switch ledger.Kind(req.Kind) {
	case ledger.KindSale:
		return ledger.SaleMovement{
			MovementDate:  date,
			ShipmentRef:   req.ShipmentRef,
			SaleType:      req.SaleType,
			PaymentMethod: req.PaymentMethod,
			Warehouse:     req.Warehouse,
			ClientID:      req.ClientID,
			Lines:         items,
		}, nil
	case ledger.KindPurchase:
		return ledger.PurchaseMovement{
			MovementDate: date,
			ShipmentRef:  req.ShipmentRef,
			Warehouse:    req.Warehouse,
			Supplier:     req.Supplier,
			Lines:        items,
		}, nil
	case ledger.KindTransfer:
		return ledger.TransferMovement{
			MovementDate: date,
			ShipmentRef:  req.ShipmentRef,
			WarehouseIn:  req.WarehouseIn,
			WarehouseOut: req.WarehouseOut,
			Lines:        items,
		}, nil
	default:
		return nil, ledger.ErrUnknownKind
	}
}

// =============================================================================
// READS
// =============================================================================

// GetStock returns the per-SKU stock view.
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	lines, err := h.Calc.StockBySKU(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stock", err)
		return
	}

	dtos := make([]StockLineDTO, len(lines))
	for i, l := range lines {
		dtos[i] = StockLineDTO{
			SKU:         l.SKU,
			Product:     l.Name,
			Entradas:    l.Entradas,
			Salidas:     l.Salidas,
			StockActual: l.StockActual,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStatement returns a client's account statement. Repeatable
// ?estado= query params form the status filter; none means no filter.
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	st, err := h.statement(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute statement", err)
		return
	}
	writeJSON(w, http.StatusOK, statementDTO(st))
}

// GetStatementPDF renders the same statement as a PDF download.
func (h *Handler) GetStatementPDF(w http.ResponseWriter, r *http.Request) {
	st, err := h.statement(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute statement", err)
		return
	}

	var buf bytes.Buffer
	if err := export.StatementPDF(&buf, st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render statement", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=estado_cuenta_%s.pdf", st.ClientID))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) statement(r *http.Request) (ledger.Statement, error) {
	clientID := chi.URLParam(r, "id")

	var filter []ledger.Status
	for _, s := range r.URL.Query()["estado"] {
		if s != "" {
			filter = append(filter, ledger.Status(s))
		}
	}

	return h.Calc.AccountStatement(r.Context(), clientID, filter)
}

// ListMovements returns the raw header/detail listing, optionally
// filtered by repeatable ?kind= params (legacy codes 1/2/3).
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	kinds, err := parseKinds(r.URL.Query()["kind"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid kind filter", err)
		return
	}

	headers, err := h.Store.Headers(r.Context(), kinds...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list headers", err)
		return
	}
	details, err := h.Store.Details(r.Context(), kinds...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list details", err)
		return
	}

	resp := MovementsResponse{
		Headers: make([]HeaderDTO, len(headers)),
		Details: make([]DetailDTO, len(details)),
	}
	for i, hd := range headers {
		resp.Headers[i] = headerDTO(hd)
	}
	for i, d := range details {
		resp.Details[i] = detailDTO(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExportWorkbook streams the full ledger as a multi-sheet xlsx.
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	headers, err := h.Store.Headers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load headers", err)
		return
	}
	details, err := h.Store.Details(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load details", err)
		return
	}

	var buf bytes.Buffer
	if err := export.Workbook(&buf, headers, details); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build workbook", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=movimientos_inventario.xlsx")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ListProducts returns the catalog product list for form population.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var dtos []ProductDTO
	if h.Catalog != nil {
		for _, p := range h.Catalog.Products() {
			dtos = append(dtos, ProductDTO{SKU: p.SKU, Name: p.Name})
		}
	}
	if dtos == nil {
		dtos = []ProductDTO{}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DTO MAPPING
// =============================================================================

func statementDTO(st ledger.Statement) StatementDTO {
	dto := StatementDTO{
		ClientID:       st.ClientID,
		ClientName:     st.ClientName,
		Lines:          make([]StatementLineDTO, len(st.Lines)),
		TotalComprado:  st.TotalComprado.StringFixed(2),
		TotalPagado:    st.TotalPagado.StringFixed(2),
		TotalPendiente: st.TotalPendiente.StringFixed(2),
	}
	for i, l := range st.Lines {
		dto.Lines[i] = StatementLineDTO{
			Date:      l.Date,
			HeaderID:  l.HeaderID,
			Product:   l.Product,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Subtotal:  l.Subtotal.StringFixed(2),
			Status:    string(l.Status),
		}
	}
	return dto
}

func headerDTO(h ledger.Header) HeaderDTO {
	return HeaderDTO{
		ID:            h.ID,
		Date:          h.Date.Format("2006-01-02"),
		Kind:          int(h.Kind),
		KindName:      h.Kind.String(),
		ShipmentRef:   h.ShipmentRef,
		SaleType:      h.SaleType,
		PaymentMethod: h.PaymentMethod,
		Warehouse1:    h.Warehouse1,
		Warehouse2:    h.Warehouse2,
		ClientID:      h.ClientID,
		Supplier:      h.Supplier,
		Total:         h.Total.StringFixed(2),
		Status:        string(h.Status),
	}
}

func detailDTO(d ledger.Detail) DetailDTO {
	dto := DetailDTO{
		ID:       d.ID,
		HeaderID: d.HeaderID,
		Date:     d.Date.Format("2006-01-02"),
		SKU:      d.SKU,
		Quantity: d.Quantity,
	}
	if d.UnitPrice.Valid {
		dto.UnitPrice = d.UnitPrice.Decimal.StringFixed(2)
	}
	if d.Subtotal.Valid {
		dto.Subtotal = d.Subtotal.Decimal.StringFixed(2)
	}
	return dto
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func parseKinds(params []string) ([]ledger.Kind, error) {
	var kinds []ledger.Kind
	for _, p := range params {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || !ledger.Kind(n).Valid() {
			return nil, fmt.Errorf("unknown movement kind %q", p)
		}
		kinds = append(kinds, ledger.Kind(n))
	}
	return kinds, nil
}

// validationDetails flattens validator errors to one readable line.
func validationDetails(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		parts[i] = fmt.Sprintf("%s failed %s", fe.StructNamespace(), fe.Tag())
	}
	return fmt.Errorf("%s", strings.Join(parts, "; "))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
