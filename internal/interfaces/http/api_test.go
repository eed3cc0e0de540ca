package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/Brobot64/shopmasterback-v1/internal/application/audit"
	"github.com/Brobot64/shopmasterback-v1/internal/application/dto"
	"github.com/Brobot64/shopmasterback-v1/internal/application/inventory"
	"github.com/Brobot64/shopmasterback-v1/internal/application/readcache"
	"github.com/Brobot64/shopmasterback-v1/internal/application/sales"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/cache"
	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/excel"
	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/memory"
	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/pdf"
	apphttp "github.com/Brobot64/shopmasterback-v1/internal/interfaces/http"
	pkgjwt "github.com/Brobot64/shopmasterback-v1/pkg/jwt"
	"github.com/Brobot64/shopmasterback-v1/pkg/logger"
)

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) apiFixture {
	t.Helper()
	store := memory.New()
	store.PutProduct(entity.Product{ID: "p-1", BusinessID: "b1", OutletID: "o1", Name: "Arroz", Price: decimal.RequireFromString("5.00"), Quantity: 10, ReorderLevel: 2})
	store.PutProduct(entity.Product{ID: "p-2", BusinessID: "b1", OutletID: "o1", Name: "Aceite", Price: decimal.RequireFromString("2.50"), Quantity: 5})

	rec := audit.NewRecorder(store.AuditLogs(), logger.Nop())
	t.Cleanup(rec.Wait)
	reader := readcache.New(cache.NewMemoryCache(), time.Minute, logger.Nop())
	ledger := sales.NewLedgerUseCase(store, store.Sales(), reader, rec, logger.Nop())
	recon := inventory.NewReconciliationUseCase(store, store.Inventories(), reader, rec, logger.Nop())

	app := apphttp.NewApp(apphttp.RouterDeps{
		Ledger:         ledger,
		Receipts:       sales.NewReceiptUseCase(ledger, pdf.NewReceiptGenerator("Tienda", language.Spanish)),
		Reconciliation: recon,
		Export:         inventory.NewExportUseCase(recon, excel.NewCountSheetExporter()),
		JWTSecret:      testJWTSecret,
		RequestTimeout: 5 * time.Second,
		Production:     true,
	})
	return apiFixture{app: app, store: store}
}

var (
	repSub   = pkgjwt.Subject{UserID: "u-rep", BusinessID: "b1", OutletID: "o1", Role: "SALES_REP"}
	rep2Sub  = pkgjwt.Subject{UserID: "u-rep2", BusinessID: "b1", OutletID: "o1", Role: "SALES_REP"}
	execSub  = pkgjwt.Subject{UserID: "u-exec", BusinessID: "b1", OutletID: "o1", Role: "STORE_EXECUTIVE"}
	ownerSub = pkgjwt.Subject{UserID: "u-owner", BusinessID: "b1", Role: "OWNER"}
)

func (f apiFixture) call(t *testing.T, method, path string, sub pkgjwt.Subject, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token(t, sub))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (f apiFixture) recordSale(t *testing.T, sub pkgjwt.Subject, qty int64) dto.SaleResponse {
	t.Helper()
	resp, body := f.call(t, http.MethodPost, "/api/sales", sub, map[string]any{
		"lines":           []map[string]any{{"product_id": "p-1", "quantity": qty}},
		"amount_paid":     "0",
		"payment_channel": "CASH",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var sale dto.SaleResponse
	require.NoError(t, json.Unmarshal(body, &sale))
	return sale
}

func TestAPI_Health(t *testing.T) {
	f := newAPI(t)
	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_RegistrarVentaYDevolver(t *testing.T) {
	f := newAPI(t)

	sale := f.recordSale(t, repSub, 3)
	assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("15")))
	p, _ := f.store.Product("p-1")
	assert.Equal(t, int64(7), p.Quantity)

	// El vendedor no puede devolver.
	resp, _ := f.call(t, http.MethodPatch, "/api/sales/"+sale.ID+"/status", repSub, map[string]string{"status": "RETURNED"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := f.call(t, http.MethodPatch, "/api/sales/"+sale.ID+"/status", execSub, map[string]string{"status": "RETURNED"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	p, _ = f.store.Product("p-1")
	assert.Equal(t, int64(10), p.Quantity)

	resp, body = f.call(t, http.MethodPatch, "/api/sales/"+sale.ID+"/status", execSub, map[string]string{"status": "RETURNED"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), `"code":"CONFLICT"`)
}

func TestAPI_StockInsuficienteEs400(t *testing.T) {
	f := newAPI(t)
	resp, body := f.call(t, http.MethodPost, "/api/sales", repSub, map[string]any{
		"lines":           []map[string]any{{"product_id": "p-2", "quantity": 6}},
		"amount_paid":     "0",
		"payment_channel": "CASH",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"code":"INSUFFICIENT_STOCK"`)
}

func TestAPI_CuerpoInvalidoEsValidation(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token(t, repSub))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ListadoAisladoPorVendedor(t *testing.T) {
	f := newAPI(t)
	f.recordSale(t, repSub, 1)
	f.recordSale(t, rep2Sub, 1)

	resp, body := f.call(t, http.MethodGet, "/api/sales?limit=5", repSub, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var page dto.Paginated[dto.SaleResponse]
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 1, page.TotalItems)
	assert.Equal(t, 5, page.ItemsPerPage)
	assert.Equal(t, "u-rep", page.Data[0].SalesPersonID)

	resp, body = f.call(t, http.MethodGet, "/api/sales", ownerSub, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 2, page.TotalItems)

	resp, _ = f.call(t, http.MethodGet, "/api/sales?outletId=o2", execSub, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = f.call(t, http.MethodGet, "/api/sales?limit=500", ownerSub, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_VentaFueraDeAlcanceEs404(t *testing.T) {
	f := newAPI(t)
	sale := f.recordSale(t, repSub, 1)

	resp, _ := f.call(t, http.MethodGet, "/api/sales/"+sale.ID, rep2Sub, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.call(t, http.MethodGet, "/api/sales/"+sale.ID, execSub, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_ComprobantePDF(t *testing.T) {
	f := newAPI(t)
	sale := f.recordSale(t, repSub, 2)

	resp, body := f.call(t, http.MethodGet, "/api/sales/"+sale.ID+"/receipt", repSub, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "venta_"+sale.ID+".pdf")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestAPI_CicloDeInventario(t *testing.T) {
	f := newAPI(t)

	resp, body := f.call(t, http.MethodPost, "/api/inventories", repSub, map[string]any{
		"outlet_id": "o1", "counts": []map[string]any{{"product_id": "p-1", "counted": 8}},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, string(body))

	resp, body = f.call(t, http.MethodPost, "/api/inventories", execSub, map[string]any{
		"outlet_id": "o1", "counts": []map[string]any{{"product_id": "p-1", "counted": 8}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var inv dto.InventoryResponse
	require.NoError(t, json.Unmarshal(body, &inv))
	assert.Equal(t, "PENDING", inv.Status)
	assert.Equal(t, int64(-2), inv.Products[0].Variance)

	resp, _ = f.call(t, http.MethodPost, "/api/inventories/"+inv.ID+"/complete", execSub, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = f.call(t, http.MethodPost, "/api/inventories/"+inv.ID+"/reconcile", execSub, map[string]any{
		"counts": []map[string]any{{"product_id": "p-1", "reconciled_quantity": 8}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	p, _ := f.store.Product("p-1")
	assert.Equal(t, int64(8), p.Quantity)

	resp, _ = f.call(t, http.MethodPost, "/api/inventories/"+inv.ID+"/reconcile", execSub, map[string]any{
		"counts": []map[string]any{{"product_id": "p-1", "reconciled_quantity": 8}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = f.call(t, http.MethodGet, "/api/inventories/"+inv.ID+"/export", ownerSub, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inventario_"+inv.ID+".xlsx")

	resp, body = f.call(t, http.MethodGet, "/api/inventories?status=RECONCILED", repSub, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page dto.Paginated[dto.InventoryResponse]
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 1, page.TotalItems)
}
