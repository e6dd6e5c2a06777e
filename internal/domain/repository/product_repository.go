package repository

import (
	"context"

	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository puerto del kardex agregado de productos.
// Usado dentro de transacciones: GetForUpdate bloquea la fila hasta el Commit.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.Product, error)
	// UpdateLedger persiste inflow, outflow, adjustments y current_balance.
	UpdateLedger(ctx context.Context, product *entity.Product) error
	UpdateCost(ctx context.Context, productID int64, cost decimal.Decimal) error
}
