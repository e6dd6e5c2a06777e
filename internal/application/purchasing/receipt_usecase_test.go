package purchasing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/licoreria-api/internal/application/dto"
	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/jhoicas/licoreria-api/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crearOrden(t *testing.T, f *fixture) string {
	t.Helper()
	out, err := f.orders.Create(context.Background(), empleado, ordenEscenarioA())
	require.NoError(t, err)
	return out.ID
}

// ─── Open ────────────────────────────────────────────────────────────────────

func TestOpen_CopiaCantidadesPendientes(t *testing.T) {
	f := newFixture(t)
	orderID := crearOrden(t, f)

	rc, err := f.receipts.Open(context.Background(), orderID, empleado, dto.OpenReceiptRequest{Notes: "camión 2"})
	require.NoError(t, err)
	assert.Equal(t, "ABI", rc.State)
	assert.Equal(t, orderID, rc.OrderID)
	assert.Equal(t, empleado, rc.EmployeeID)
	require.Len(t, rc.Lines, 2)
	assert.True(t, rc.Lines[0].QuantityReceived.Equal(dec("10")))
	assert.True(t, rc.Lines[1].QuantityReceived.Equal(dec("3")))

	p, _ := f.store.Product(1)
	assert.True(t, p.CurrentBalance.Equal(dec("5")), "una recepción abierta no toca stock")
}

func TestOpen_LineasExplicitas(t *testing.T) {
	f := newFixture(t)
	orderID := crearOrden(t, f)

	rc, err := f.receipts.Open(context.Background(), orderID, empleado, dto.OpenReceiptRequest{
		Lines: []dto.ReceiptLineRequest{{ProductID: 1, QuantityReceived: dec("4")}},
	})
	require.NoError(t, err)
	require.Len(t, rc.Lines, 1)
	assert.True(t, rc.Lines[0].QuantityReceived.Equal(dec("4")))
}

func TestOpen_Rechazos(t *testing.T) {
	ctx := context.Background()

	t.Run("compra inexistente", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.receipts.Open(ctx, "C-2026-000404", empleado, dto.OpenReceiptRequest{})
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
	t.Run("compra anulada", func(t *testing.T) {
		f := newFixture(t)
		orderID := crearOrden(t, f)
		_, err := f.orders.Cancel(ctx, orderID)
		require.NoError(t, err)
		_, err = f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{})
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})
	t.Run("cantidad sobre lo pendiente", func(t *testing.T) {
		f := newFixture(t)
		orderID := crearOrden(t, f)
		_, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{
			Lines: []dto.ReceiptLineRequest{{ProductID: 2, QuantityReceived: dec("4")}},
		})
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
	t.Run("producto ajeno a la compra", func(t *testing.T) {
		f := newFixture(t)
		orderID := crearOrden(t, f)
		_, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{
			Lines: []dto.ReceiptLineRequest{{ProductID: 3, QuantityReceived: dec("1")}},
		})
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
	t.Run("sin empleado", func(t *testing.T) {
		f := newFixture(t)
		orderID := crearOrden(t, f)
		_, err := f.receipts.Open(ctx, orderID, 0, dto.OpenReceiptRequest{})
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

// ─── AdjustLines ─────────────────────────────────────────────────────────────

func TestAdjustLines_SobrescribeCantidades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := crearOrden(t, f)
	rc, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{})
	require.NoError(t, err)

	out, err := f.receipts.AdjustLines(ctx, rc.ID, dto.AdjustReceiptLinesRequest{
		Lines: []dto.ReceiptLineRequest{{ProductID: 1, QuantityReceived: dec("0")}, {ProductID: 2, QuantityReceived: dec("2.5")}},
	})
	require.NoError(t, err)
	require.Len(t, out.Lines, 2)
	assert.True(t, out.Lines[0].QuantityReceived.IsZero())
	assert.True(t, out.Lines[1].QuantityReceived.Equal(dec("2.5")))

	got, err := f.receipts.Get(ctx, rc.ID)
	require.NoError(t, err)
	assert.True(t, got.Lines[1].QuantityReceived.Equal(dec("2.5")))
}

func TestAdjustLines_Rechazos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := crearOrden(t, f)
	rc, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{})
	require.NoError(t, err)

	_, err = f.receipts.AdjustLines(ctx, rc.ID, dto.AdjustReceiptLinesRequest{
		Lines: []dto.ReceiptLineRequest{{ProductID: 1, QuantityReceived: dec("-1")}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "negativa: %v", err)

	_, err = f.receipts.AdjustLines(ctx, rc.ID, dto.AdjustReceiptLinesRequest{
		Lines: []dto.ReceiptLineRequest{{ProductID: 1, QuantityReceived: dec("11")}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "excede pendiente: %v", err)

	_, err = f.receipts.AdjustLines(ctx, rc.ID, dto.AdjustReceiptLinesRequest{
		Lines: []dto.ReceiptLineRequest{{ProductID: 1, QuantityReceived: dec("2.0005")}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "cuatro decimales: %v", err)

	_, err = f.receipts.AdjustLines(ctx, 999, dto.AdjustReceiptLinesRequest{
		Lines: []dto.ReceiptLineRequest{{ProductID: 1, QuantityReceived: dec("1")}},
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.receipts.Approve(ctx, rc.ID, empleado, dto.ApproveReceiptRequest{})
	require.NoError(t, err)
	_, err = f.receipts.AdjustLines(ctx, rc.ID, dto.AdjustReceiptLinesRequest{
		Lines: []dto.ReceiptLineRequest{{ProductID: 1, QuantityReceived: dec("1")}},
	})
	assert.True(t, errors.Is(err, domain.ErrConflict), "aprobada: %v", err)
}

// ─── Approve ─────────────────────────────────────────────────────────────────

func TestApprove_EscenarioB_ParcialYLuegoCompleta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := crearOrden(t, f)

	rc1, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{
		Lines: []dto.ReceiptLineRequest{{ProductID: 1, QuantityReceived: dec("10")}, {ProductID: 2, QuantityReceived: dec("1")}},
	})
	require.NoError(t, err)
	res, err := f.receipts.Approve(ctx, rc1.ID, empleado, dto.ApproveReceiptRequest{})
	require.NoError(t, err)
	assert.Equal(t, "APR", res.Receipt.State)
	assert.Equal(t, "PAR", res.OrderState)
	assert.NotZero(t, res.AdjustmentID)

	p1, _ := f.store.Product(1)
	assert.True(t, p1.Inflow.Equal(dec("10")))
	assert.True(t, p1.CurrentBalance.Equal(dec("15")))
	assert.True(t, inventory.Consistent(&p1))
	// (5*4 + 10*5) / 15
	assert.Equal(t, "4.667", p1.Cost.StringFixed(3))

	rc2, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{})
	require.NoError(t, err)
	require.Len(t, rc2.Lines, 1, "solo queda pendiente el producto 2")
	assert.True(t, rc2.Lines[0].QuantityReceived.Equal(dec("2")))

	res, err = f.receipts.Approve(ctx, rc2.ID, empleado, dto.ApproveReceiptRequest{Reason: "saldo de la compra"})
	require.NoError(t, err)
	assert.Equal(t, "COM", res.OrderState)

	order, err := f.orders.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "COM", order.State)
	for _, l := range order.Lines {
		assert.True(t, l.Pending.IsZero())
	}
	p2, _ := f.store.Product(2)
	assert.True(t, p2.CurrentBalance.Equal(dec("3")))
	assert.True(t, p2.Cost.Equal(dec("12.5")))
	assert.Equal(t, 2, f.store.AdjustmentCount())

	_, err = f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{})
	assert.True(t, errors.Is(err, domain.ErrConflict), "compra cerrada")
}

func TestApprove_SinCantidadesMantieneOrdenPendiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := crearOrden(t, f)
	rc, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{
		Lines: []dto.ReceiptLineRequest{{ProductID: 1, QuantityReceived: dec("0")}},
	})
	require.NoError(t, err)

	_, err = f.receipts.Approve(ctx, rc.ID, empleado, dto.ApproveReceiptRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	got, err := f.receipts.Get(ctx, rc.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABI", got.State)
	order, err := f.orders.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "PEN", order.State)
}

func TestApprove_DobleAprobacionFallaYComprometeUnaVez(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := crearOrden(t, f)
	rc, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{})
	require.NoError(t, err)

	_, err = f.receipts.Approve(ctx, rc.ID, empleado, dto.ApproveReceiptRequest{})
	require.NoError(t, err)
	_, err = f.receipts.Approve(ctx, rc.ID, empleado, dto.ApproveReceiptRequest{})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	p1, _ := f.store.Product(1)
	assert.True(t, p1.CurrentBalance.Equal(dec("15")))
	assert.Equal(t, 1, f.store.AdjustmentCount())
}

func TestApprove_DosRecepcionesNoSuperanLoPedido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := crearOrden(t, f)
	r1, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{})
	require.NoError(t, err)
	r2, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{})
	require.NoError(t, err)

	_, err = f.receipts.Approve(ctx, r1.ID, empleado, dto.ApproveReceiptRequest{})
	require.NoError(t, err)
	_, err = f.receipts.Approve(ctx, r2.ID, empleado, dto.ApproveReceiptRequest{})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	p1, _ := f.store.Product(1)
	assert.True(t, p1.Inflow.Equal(dec("10")))
}

func TestApprove_FallaDeInfraestructuraRevierteTodo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := crearOrden(t, f)
	rc, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{})
	require.NoError(t, err)
	before, _ := f.store.Product(1)

	f.store.FailOn("Adjustments.Create", errors.New("conexión perdida"))
	_, err = f.receipts.Approve(ctx, rc.ID, empleado, dto.ApproveReceiptRequest{})
	require.Error(t, err)
	assert.False(t, domain.IsBusiness(err), "la falla de infraestructura no se disfraza de error de negocio")

	after, _ := f.store.Product(1)
	assert.True(t, before.CurrentBalance.Equal(after.CurrentBalance))
	assert.True(t, before.Inflow.Equal(after.Inflow))
	assert.True(t, before.Cost.Equal(after.Cost))
	assert.Equal(t, 0, f.store.AdjustmentCount())

	got, err := f.receipts.Get(ctx, rc.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABI", got.State)
	order, err := f.orders.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "PEN", order.State)
	assert.True(t, order.Lines[0].QuantityReceived.IsZero())

	// La misma recepción se aprueba al reintentar.
	res, err := f.receipts.Approve(ctx, rc.ID, empleado, dto.ApproveReceiptRequest{})
	require.NoError(t, err)
	assert.Equal(t, "COM", res.OrderState)
}

// ─── Cancel / consultas ──────────────────────────────────────────────────────

func TestCancel_Recepcion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := crearOrden(t, f)
	rc, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{})
	require.NoError(t, err)

	out, err := f.receipts.Cancel(ctx, rc.ID, dto.CancelRequest{Reason: "mercadería dañada"})
	require.NoError(t, err)
	assert.Equal(t, "ANU", out.State)
	assert.Equal(t, "mercadería dañada", out.CancelReason)

	_, err = f.receipts.Approve(ctx, rc.ID, empleado, dto.ApproveReceiptRequest{})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	_, err = f.receipts.Cancel(ctx, rc.ID, dto.CancelRequest{})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	p1, _ := f.store.Product(1)
	assert.True(t, p1.CurrentBalance.Equal(dec("5")))
}

func TestCancel_RecepcionAprobadaFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := crearOrden(t, f)
	rc, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{})
	require.NoError(t, err)
	_, err = f.receipts.Approve(ctx, rc.ID, empleado, dto.ApproveReceiptRequest{})
	require.NoError(t, err)

	_, err = f.receipts.Cancel(ctx, rc.ID, dto.CancelRequest{})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestListByOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := crearOrden(t, f)
	r1, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{})
	require.NoError(t, err)
	r2, err := f.receipts.Open(ctx, orderID, empleado, dto.OpenReceiptRequest{})
	require.NoError(t, err)

	list, err := f.receipts.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, r1.ID, list[0].ID)
	assert.Equal(t, r2.ID, list[1].ID)

	_, err = f.receipts.ListByOrder(ctx, "C-2026-000404")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.receipts.Get(ctx, 404)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
