package repository

import (
	"context"

	"github.com/jhoicas/licoreria-api/internal/domain/entity"
)

// AdjustmentRepository puerto de ajuste_inventario y detalle_ajuste.
type AdjustmentRepository interface {
	// Create persiste cabecera y detalles; asigna adjustment.ID.
	Create(ctx context.Context, adjustment *entity.InventoryAdjustment) error
	ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*entity.InventoryAdjustment, error)
}
