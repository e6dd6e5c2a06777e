package purchasing_test

import (
	"testing"
	"time"

	"github.com/jhoicas/licoreria-api/internal/application/purchasing"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/infrastructure/memory"
	"github.com/jhoicas/licoreria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

const empleado int64 = 7

var fechaFija = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store    *memory.Store
	orders   *purchasing.PurchaseOrderUseCase
	receipts *purchasing.ReceiptUseCase
}

// newFixture arma un catálogo mínimo: proveedor 1 activo, 2 inactivo; productos 1 y 2
// activos con saldo inicial, 3 inactivo.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	store.AddSupplier(entity.Supplier{ID: 1, Name: "Distribuidora Andina", TaxID: "1790012345001", State: entity.RecordActive})
	store.AddSupplier(entity.Supplier{ID: 2, Name: "Licores del Sur", TaxID: "0990011122001", State: entity.RecordInactive})
	store.AddProduct(entity.Product{
		ID: 1, Code: "RON-750", Name: "Ron añejo 750ml", State: entity.RecordActive,
		UnitPrice: dec("12.000"), Cost: dec("4.000"),
		InitialBalance: dec("5"), CurrentBalance: dec("5"),
	})
	store.AddProduct(entity.Product{
		ID: 2, Code: "WHI-1L", Name: "Whisky 1L", State: entity.RecordActive,
		UnitPrice: dec("30.000"), Cost: dec("12.000"),
	})
	store.AddProduct(entity.Product{ID: 3, Code: "VIN-OLD", Name: "Vino descontinuado", State: entity.RecordInactive})

	log := logger.Nop()
	clock := func() time.Time { return fechaFija }
	return &fixture{
		store:    store,
		orders:   purchasing.NewPurchaseOrderUseCase(store, store.Repos(), log).WithClock(clock),
		receipts: purchasing.NewReceiptUseCase(store, store.Repos(), log).WithClock(clock),
	}
}
