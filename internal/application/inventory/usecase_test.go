package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/licoreria-api/internal/application/dto"
	appinv "github.com/jhoicas/licoreria-api/internal/application/inventory"
	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/infrastructure/memory"
	"github.com/jhoicas/licoreria-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) (*memory.Store, *appinv.StockUseCase) {
	t.Helper()
	store := memory.New()
	store.AddProduct(entity.Product{
		ID: 10, Code: "PIS-750", Name: "Pisco 750ml", State: entity.RecordActive,
		InitialBalance: dec("20"), Inflow: dec("15"), Outflow: dec("5"),
		CurrentBalance: dec("30"), Cost: dec("8.5"),
	})
	return store, appinv.NewStockUseCase(store, store.Repos(), logger.Nop())
}

func TestAdjustStock_Incremento(t *testing.T) {
	store, uc := setup(t)

	out, err := uc.AdjustStock(context.Background(), 10, 3, dto.AdjustStockRequest{
		Direction: "INCREASE", Quantity: dec("4.5"), Reason: "conteo físico",
	})
	require.NoError(t, err)

	assert.True(t, out.Ledger.CurrentBalance.Equal(dec("34.5")))
	assert.True(t, out.Ledger.Adjustments.Equal(dec("4.5")))
	assert.True(t, out.Ledger.Consistent)
	assert.Equal(t, "E", out.Adjustment.Direction)
	assert.Equal(t, entity.AdjustmentSourceManual, out.Adjustment.Source)
	assert.Equal(t, 1, out.Adjustment.LineCount)
	assert.Equal(t, int64(3), out.Adjustment.CreatedBy)
	assert.NotEmpty(t, out.Adjustment.TransactionID)
	require.Len(t, out.Adjustment.Details, 1)
	assert.True(t, out.Adjustment.Details[0].Quantity.Equal(dec("4.5")))

	p, _ := store.Product(10)
	assert.True(t, p.CurrentBalance.Equal(dec("34.5")))
	assert.Equal(t, 1, store.AdjustmentCount())
}

func TestAdjustStock_DecrementoHastaCero(t *testing.T) {
	store, uc := setup(t)
	out, err := uc.AdjustStock(context.Background(), 10, 3, dto.AdjustStockRequest{
		Direction: "DECREASE", Quantity: dec("30"), Reason: "merma",
	})
	require.NoError(t, err)
	assert.True(t, out.Ledger.CurrentBalance.IsZero())
	assert.Equal(t, "S", out.Adjustment.Direction)

	p, _ := store.Product(10)
	assert.True(t, p.Adjustments.Equal(dec("-30")))
}

func TestAdjustStock_EscenarioC_StockInsuficiente(t *testing.T) {
	store, uc := setup(t)

	_, err := uc.AdjustStock(context.Background(), 10, 3, dto.AdjustStockRequest{
		Direction: "DECREASE", Quantity: dec("50"), Reason: "rotura",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	p, _ := store.Product(10)
	assert.True(t, p.CurrentBalance.Equal(dec("30")))
	assert.True(t, p.Adjustments.IsZero())
	assert.Equal(t, 0, store.AdjustmentCount())
}

func TestAdjustStock_Validaciones(t *testing.T) {
	cases := []struct {
		name string
		id   int64
		in   dto.AdjustStockRequest
		want error
	}{
		{"cantidad cero", 10, dto.AdjustStockRequest{Direction: "INCREASE", Quantity: dec("0"), Reason: "x"}, domain.ErrInvalidInput},
		{"cantidad negativa", 10, dto.AdjustStockRequest{Direction: "DECREASE", Quantity: dec("-2"), Reason: "x"}, domain.ErrInvalidInput},
		{"dirección inválida", 10, dto.AdjustStockRequest{Direction: "SIDEWAYS", Quantity: dec("1"), Reason: "x"}, domain.ErrInvalidInput},
		{"sin motivo", 10, dto.AdjustStockRequest{Direction: "INCREASE", Quantity: dec("1"), Reason: "  "}, domain.ErrInvalidInput},
		{"cuatro decimales", 10, dto.AdjustStockRequest{Direction: "DECREASE", Quantity: dec("0.0004"), Reason: "x"}, domain.ErrInvalidInput},
		{"producto inexistente", 99, dto.AdjustStockRequest{Direction: "INCREASE", Quantity: dec("1"), Reason: "x"}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, uc := setup(t)
			_, err := uc.AdjustStock(context.Background(), tc.id, 3, tc.in)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Equal(t, 0, store.AdjustmentCount())
			if p, ok := store.Product(10); ok {
				assert.True(t, p.CurrentBalance.Equal(dec("30")))
			}
		})
	}
}

func TestAdjustStock_FallaAlRegistrarAjusteRevierteKardex(t *testing.T) {
	store, uc := setup(t)
	store.FailOn("Adjustments.Create", errors.New("timeout"))

	_, err := uc.AdjustStock(context.Background(), 10, 3, dto.AdjustStockRequest{
		Direction: "INCREASE", Quantity: dec("1"), Reason: "conteo",
	})
	require.Error(t, err)
	assert.False(t, domain.IsBusiness(err))

	p, _ := store.Product(10)
	assert.True(t, p.CurrentBalance.Equal(dec("30")))
	assert.True(t, p.Adjustments.IsZero())
}

func TestGetLedgerYListAdjustments(t *testing.T) {
	_, uc := setup(t)
	ctx := context.Background()
	for _, q := range []string{"1", "2", "3"} {
		_, err := uc.AdjustStock(ctx, 10, 3, dto.AdjustStockRequest{Direction: "INCREASE", Quantity: dec(q), Reason: "conteo " + q})
		require.NoError(t, err)
	}

	l, err := uc.GetLedger(ctx, 10)
	require.NoError(t, err)
	assert.True(t, l.CurrentBalance.Equal(dec("36")))
	assert.True(t, l.Consistent)

	list, err := uc.ListAdjustments(ctx, 10, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "conteo 3", list[0].Reason)

	_, err = uc.GetLedger(ctx, 404)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = uc.ListAdjustments(ctx, 404, dto.PageRequest{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
