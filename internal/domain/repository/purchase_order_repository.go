package repository

import (
	"context"

	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PurchaseOrderFilter filtros de listado de órdenes de compra.
type PurchaseOrderFilter struct {
	State      entity.PurchaseOrderState // vacío = todos
	SupplierID int64                     // 0 = todos
	Limit      int
	Offset     int
}

// PurchaseOrderRepository puerto de persistencia de compra y detalle_compra.
// GetByID y GetForUpdate cargan las líneas; devuelven (nil, nil) si no existe.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// ReplaceLines borra y reinserta las líneas y actualiza los totales de la cabecera.
	ReplaceLines(ctx context.Context, order *entity.PurchaseOrder) error
	UpdateState(ctx context.Context, id string, state entity.PurchaseOrderState) error
	AddReceived(ctx context.Context, orderID string, productID int64, quantity decimal.Decimal) error
	List(ctx context.Context, filter PurchaseOrderFilter) ([]*entity.PurchaseOrder, error)
}
