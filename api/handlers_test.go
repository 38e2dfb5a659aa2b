/*
handlers_test.go - HTTP-level tests through the full router

Exercises the four core operations over the wire: record movement,
stock view, account statement (with status filter), and the raw
filtered listing, plus the workbook export.
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/coimpex/inventory-ledger/api"
	"github.com/coimpex/inventory-ledger/ledger"
	"github.com/coimpex/inventory-ledger/store/sqlite"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)

	ts := httptest.NewServer(api.NewRouter(api.NewHandler(store, nil)))
	t.Cleanup(func() {
		ts.Close()
		store.Close()
	})
	return ts, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func saleBody(clientID string, items ...map[string]any) map[string]any {
	return map[string]any{
		"kind":           1,
		"date":           "2025-06-02",
		"sale_type":      "Venta al contado",
		"payment_method": "Efectivo",
		"warehouse":      "Roosevelt",
		"client_id":      clientID,
		"items":          items,
	}
}

func item(sku string, qty int, unitPrice float64) map[string]any {
	return map[string]any{"sku": sku, "quantity": qty, "unit_price": unitPrice}
}

// =============================================================================
// RECORD MOVEMENT
// =============================================================================

func TestRecordMovement_Sale(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/movements",
		saleBody("CL001", item("A001", 3, 10), item("A002", 2, 5)))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decode[api.RecordMovementResponse](t, resp)
	assert.Equal(t, int64(1), out.ID, "confirmation reference is the header id")
}

func TestRecordMovement_Transfer(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/movements", map[string]any{
		"kind":          3,
		"date":          "2025-06-02",
		"warehouse_in":  "Roosevelt",
		"warehouse_out": "Predio Z11",
		"items":         []map[string]any{item("A001", 12, 0)},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestRecordMovement_EmptyItems(t *testing.T) {
	ts, store := newTestServer(t)

	body := saleBody("CL001")
	body["items"] = []map[string]any{}
	resp := postJSON(t, ts.URL+"/api/movements", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	headers, err := store.Headers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, headers, "rejected movement writes nothing")
}

func TestRecordMovement_BadQuantity(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/movements",
		saleBody("CL001", item("A001", 0, 10)))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRecordMovement_BadKind(t *testing.T) {
	ts, _ := newTestServer(t)

	body := saleBody("CL001", item("A001", 1, 10))
	body["kind"] = 9
	resp := postJSON(t, ts.URL+"/api/movements", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRecordMovement_MalformedBody(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/movements", "application/json",
		bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// STOCK VIEW
// =============================================================================

func TestGetStock(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/movements", map[string]any{
		"kind": 2, "date": "2025-06-02", "warehouse": "Roosevelt",
		"supplier": "Frutera SA",
		"items":    []map[string]any{item("A001", 10, 2)},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/movements",
		saleBody("CL001", item("A001", 4, 3)))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	getResp, err := http.Get(ts.URL + "/api/stock")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	stock := decode[[]api.StockLineDTO](t, getResp)
	require.Len(t, stock, 1)
	assert.Equal(t, "A001", stock[0].SKU)
	assert.Equal(t, 10, stock[0].Entradas)
	assert.Equal(t, 4, stock[0].Salidas)
	assert.Equal(t, 6, stock[0].StockActual)
}

// =============================================================================
// ACCOUNT STATEMENT
// =============================================================================

func TestGetStatement_WithStatusFilter(t *testing.T) {
	ts, store := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/movements",
		saleBody("CL001", item("A001", 6, 10)))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	paid := decode[api.RecordMovementResponse](t, resp)

	resp = postJSON(t, ts.URL+"/api/movements",
		saleBody("CL001", item("A002", 4, 10)))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	pending := decode[api.RecordMovementResponse](t, resp)

	require.NoError(t, store.MarkStatus(context.Background(), paid.ID, ledger.StatusPaid))
	require.NoError(t, store.MarkStatus(context.Background(), pending.ID, ledger.StatusPending))

	all, err := http.Get(ts.URL + "/api/clients/CL001/statement")
	require.NoError(t, err)
	st := decode[api.StatementDTO](t, all)
	assert.Len(t, st.Lines, 2)
	assert.Equal(t, "100.00", st.TotalComprado)
	assert.Equal(t, "60.00", st.TotalPagado)
	assert.Equal(t, "40.00", st.TotalPendiente)

	filtered, err := http.Get(ts.URL + "/api/clients/CL001/statement?estado=" +
		"Pagada")
	require.NoError(t, err)
	st = decode[api.StatementDTO](t, filtered)
	assert.Len(t, st.Lines, 1)
	assert.Equal(t, "60.00", st.TotalComprado)
}

func TestGetStatementPDF(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/movements",
		saleBody("CL001", item("A001", 1, 10)))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	pdfResp, err := http.Get(ts.URL + "/api/clients/CL001/statement.pdf")
	require.NoError(t, err)
	defer pdfResp.Body.Close()
	assert.Equal(t, http.StatusOK, pdfResp.StatusCode)
	assert.Equal(t, "application/pdf", pdfResp.Header.Get("Content-Type"))
}

// =============================================================================
// LISTING AND EXPORT
// =============================================================================

func TestListMovements_KindFilter(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/movements",
		saleBody("CL001", item("A001", 1, 10)))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/movements", map[string]any{
		"kind": 2, "date": "2025-06-02", "supplier": "Frutera SA",
		"items": []map[string]any{item("A001", 5, 2)},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	listResp, err := http.Get(ts.URL + "/api/movements?kind=1")
	require.NoError(t, err)
	list := decode[api.MovementsResponse](t, listResp)
	require.Len(t, list.Headers, 1)
	assert.Equal(t, 1, list.Headers[0].Kind)
	assert.Equal(t, "Venta", list.Headers[0].KindName)
	assert.Len(t, list.Details, 1)

	allResp, err := http.Get(ts.URL + "/api/movements")
	require.NoError(t, err)
	all := decode[api.MovementsResponse](t, allResp)
	assert.Len(t, all.Headers, 2)
}

func TestListMovements_BadKind(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/movements?kind=venta")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestExportWorkbook(t *testing.T) {
	ts, _ := newTestServer(t)

	for i := 0; i < 2; i++ {
		resp := postJSON(t, ts.URL+"/api/movements",
			saleBody(fmt.Sprintf("CL%03d", i+1), item("A001", 1, 10)))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/api/export/movements.xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "movimientos_inventario.xlsx")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Ventas")
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header row plus two sales")
}

func TestListProducts_EmptyWithoutCatalog(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/catalog/products")
	require.NoError(t, err)
	products := decode[[]api.ProductDTO](t, resp)
	assert.Empty(t, products)
}
