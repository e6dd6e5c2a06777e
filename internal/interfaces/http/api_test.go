package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/licoreria-api/internal/application/billing"
	"github.com/jhoicas/licoreria-api/internal/application/dto"
	"github.com/jhoicas/licoreria-api/internal/application/inventory"
	"github.com/jhoicas/licoreria-api/internal/application/purchasing"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/infrastructure/cache"
	"github.com/jhoicas/licoreria-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/licoreria-api/internal/interfaces/http"
	"github.com/jhoicas/licoreria-api/pkg/logger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

// newAPI arma la API completa sobre el almacén en memoria con un catálogo mínimo.
func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.New()
	store.AddSupplier(entity.Supplier{ID: 1, Name: "Distribuidora Andina", TaxID: "1790012345001", State: entity.RecordActive})
	store.AddCustomer(entity.Customer{ID: 1, Name: "Consumidor final", DocumentID: "9999999999", State: entity.RecordActive})
	store.AddPaymentMethod(entity.PaymentMethod{ID: 1, Name: "Efectivo", State: entity.RecordActive})
	store.AddTaxRate(entity.TaxRate{ID: 1, Percentage: dec("12"), State: entity.RecordActive, ValidFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)})
	store.AddProduct(entity.Product{
		ID: 1, Code: "RON-750", Name: "Ron añejo 750ml", State: entity.RecordActive,
		UnitPrice: dec("50"), Cost: dec("4"), InitialBalance: dec("5"), CurrentBalance: dec("5"),
	})

	log := logger.Nop()
	repos := store.Repos()
	app := apphttp.NewApp(apphttp.RouterDeps{
		AppName:        "licoreria-api-test",
		PurchaseOrders: purchasing.NewPurchaseOrderUseCase(store, repos, log),
		Receipts:       purchasing.NewReceiptUseCase(store, repos, log),
		Stock:          inventory.NewStockUseCase(store, repos, log),
		Invoices:       billing.NewInvoiceUseCase(store, repos, log),
		Idempotency:    cache.NewInMemoryIdempotencyStore(),
		IdempotencyTTL: time.Hour,
		JWTSecret:      testJWTSecret,
		Log:            log,
	})
	return &apiFixture{app: app, store: store}
}

func (f *apiFixture) call(t *testing.T, method, path, role string, body any, headers ...string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenFor(t, role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestHealth(t *testing.T) {
	f := newAPI(t)
	status, body := f.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"ok"`)
}

func TestAPI_CompraRecepcionYKardex(t *testing.T) {
	f := newAPI(t)

	status, body := f.call(t, http.MethodPost, "/api/compras", "bodeguero", map[string]any{
		"supplier_id": 1,
		"lines":       []map[string]any{{"product_id": 1, "quantity": 10, "unit_cost": 5}},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	order := decode[dto.PurchaseOrderResponse](t, body)
	assert.Equal(t, "PEN", order.State)
	assert.True(t, order.Total.Equal(dec("50")))

	status, body = f.call(t, http.MethodPost, "/api/compras/"+order.ID+"/recepciones", "bodeguero", nil)
	require.Equal(t, http.StatusCreated, status, string(body))
	receipt := decode[dto.ReceiptResponse](t, body)
	assert.Equal(t, "ABI", receipt.State)

	path := "/api/recepciones/" + itoa(receipt.ID) + "/aprobar"
	status, body = f.call(t, http.MethodPost, path, "bodeguero", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	approved := decode[dto.ApproveReceiptResponse](t, body)
	assert.Equal(t, "COM", approved.OrderState)

	// Segunda aprobación: la recepción ya es terminal.
	status, body = f.call(t, http.MethodPost, path, "bodeguero", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "CONFLICT")

	status, body = f.call(t, http.MethodGet, "/api/productos/1/kardex", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	ledger := decode[dto.LedgerResponse](t, body)
	assert.True(t, ledger.CurrentBalance.Equal(dec("15")))
	assert.True(t, ledger.Inflow.Equal(dec("10")))
	assert.True(t, ledger.Consistent)

	status, body = f.call(t, http.MethodGet, "/api/compras?state=COM", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[struct {
		Items []dto.PurchaseOrderResponse `json:"items"`
	}](t, body)
	require.Len(t, list.Items, 1)
	assert.Equal(t, order.ID, list.Items[0].ID)
}

func TestAPI_ValidacionDevuelveDetallesPorCampo(t *testing.T) {
	f := newAPI(t)

	status, body := f.call(t, http.MethodPost, "/api/compras", "admin", map[string]any{"supplier_id": 1})
	assert.Equal(t, http.StatusBadRequest, status)

	resp := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "VALIDATION", resp.Code)
	require.NotEmpty(t, resp.Details)
	assert.Equal(t, "lines", resp.Details[0].Field)
}

func TestAPI_FiltroDeEstadoInvalido(t *testing.T) {
	f := newAPI(t)
	status, body := f.call(t, http.MethodGet, "/api/compras?state=XYZ", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "VALIDATION")
}

func TestAPI_VendedorNoPuedeComprar(t *testing.T) {
	f := newAPI(t)
	status, _ := f.call(t, http.MethodPost, "/api/compras", "vendedor", map[string]any{})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_SinToken(t *testing.T) {
	f := newAPI(t)
	status, _ := f.call(t, http.MethodGet, "/api/facturas/F-2026-000001", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_RecursoInexistente(t *testing.T) {
	f := newAPI(t)
	status, body := f.call(t, http.MethodGet, "/api/facturas/F-2026-000099", "vendedor", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "NOT_FOUND")

	status, _ = f.call(t, http.MethodGet, "/api/recepciones/abc", "bodeguero", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_AjusteSinStockSuficiente(t *testing.T) {
	f := newAPI(t)
	status, body := f.call(t, http.MethodPost, "/api/productos/1/ajustar-stock", "bodeguero", map[string]any{
		"direction": "DECREASE", "quantity": 6, "reason": "rotura",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "INSUFFICIENT_STOCK")

	p, _ := f.store.Product(1)
	assert.True(t, p.CurrentBalance.Equal(dec("5")))
}

func TestAPI_CantidadConCuatroDecimalesEsValidacion(t *testing.T) {
	f := newAPI(t)
	status, body := f.call(t, http.MethodPost, "/api/productos/1/ajustar-stock", "bodeguero", map[string]any{
		"direction": "DECREASE", "quantity": 0.0004, "reason": "merma",
	})
	assert.Equal(t, http.StatusBadRequest, status, string(body))
	assert.Contains(t, string(body), "VALIDATION")

	status, body = f.call(t, http.MethodPost, "/api/compras", "bodeguero", map[string]any{
		"supplier_id": 1,
		"lines":       []map[string]any{{"product_id": 1, "quantity": 0.0004, "unit_cost": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	p, _ := f.store.Product(1)
	assert.True(t, p.CurrentBalance.Equal(dec("5")))
}

func TestAPI_FacturaYAnulacion(t *testing.T) {
	f := newAPI(t)

	status, body := f.call(t, http.MethodPost, "/api/facturas", "vendedor", map[string]any{
		"customer_id": 1, "channel": "POS", "payment_method_id": 1, "tax_rate_id": 1,
		"items": []map[string]any{{"product_id": 1, "quantity": 2, "unit_price": 50}},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	inv := decode[dto.InvoiceResponse](t, body)
	assert.Equal(t, "112.000", inv.Total.StringFixed(3))

	status, _ = f.call(t, http.MethodPost, "/api/facturas/"+inv.ID+"/anular", "vendedor", map[string]any{"reason": "cliente desiste"})
	assert.Equal(t, http.StatusOK, status)

	p, _ := f.store.Product(1)
	assert.True(t, p.CurrentBalance.Equal(dec("5")))

	status, body = f.call(t, http.MethodPost, "/api/facturas/"+inv.ID+"/anular", "vendedor", nil)
	assert.Equal(t, http.StatusConflict, status, string(body))
}

func TestAPI_FacturaSinStock(t *testing.T) {
	f := newAPI(t)
	status, body := f.call(t, http.MethodPost, "/api/facturas", "vendedor", map[string]any{
		"customer_id": 1, "channel": "WEB", "payment_method_id": 1, "tax_rate_id": 1,
		"items": []map[string]any{{"product_id": 1, "quantity": 9}},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "INSUFFICIENT_STOCK")
	assert.Equal(t, 0, f.store.InvoiceCount())
}

func TestAPI_IdempotencyKeyRepiteLaFactura(t *testing.T) {
	f := newAPI(t)
	pedido := map[string]any{
		"customer_id": 1, "channel": "POS", "payment_method_id": 1, "tax_rate_id": 1,
		"items": []map[string]any{{"product_id": 1, "quantity": 1}},
	}

	status, first := f.call(t, http.MethodPost, "/api/facturas", "vendedor", pedido, apphttp.HeaderIdempotencyKey, "caja-1-0001")
	require.Equal(t, http.StatusCreated, status, string(first))
	status, second := f.call(t, http.MethodPost, "/api/facturas", "vendedor", pedido, apphttp.HeaderIdempotencyKey, "caja-1-0001")
	require.Equal(t, http.StatusCreated, status)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, 1, f.store.InvoiceCount(), "la segunda petición no emite otra factura")
	p, _ := f.store.Product(1)
	assert.True(t, p.CurrentBalance.Equal(dec("4")))

	// Otra clave emite una factura nueva.
	status, third := f.call(t, http.MethodPost, "/api/facturas", "vendedor", pedido, apphttp.HeaderIdempotencyKey, "caja-1-0002")
	require.Equal(t, http.StatusCreated, status)
	assert.NotEqual(t, decode[dto.InvoiceResponse](t, first).ID, decode[dto.InvoiceResponse](t, third).ID)
}

func TestAPI_IdempotencyKeyNoGuardaErrores(t *testing.T) {
	f := newAPI(t)
	pedido := map[string]any{
		"customer_id": 1, "channel": "POS", "payment_method_id": 1, "tax_rate_id": 1,
		"items": []map[string]any{{"product_id": 1, "quantity": 50}},
	}
	status, _ := f.call(t, http.MethodPost, "/api/facturas", "vendedor", pedido, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusConflict, status)

	// La clave quedó libre: con una cantidad válida la misma clave sí emite.
	pedido["items"] = []map[string]any{{"product_id": 1, "quantity": 1}}
	status, body := f.call(t, http.MethodPost, "/api/facturas", "vendedor", pedido, apphttp.HeaderIdempotencyKey, "k-1")
	assert.Equal(t, http.StatusCreated, status, string(body))
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
