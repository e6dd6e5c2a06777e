package repository

import (
	"context"

	"github.com/jhoicas/licoreria-api/internal/domain/entity"
)

// CatalogRepository puerto de lectura de datos de referencia (catálogo).
// Todos los Get* devuelven (nil, nil) si el registro no existe.
type CatalogRepository interface {
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
	GetSupplier(ctx context.Context, id int64) (*entity.Supplier, error)
	GetTaxRate(ctx context.Context, id int64) (*entity.TaxRate, error)
	GetUnitMeasure(ctx context.Context, id int64) (*entity.UnitMeasure, error)
	GetCustomer(ctx context.Context, id int64) (*entity.Customer, error)
	GetPaymentMethod(ctx context.Context, id int64) (*entity.PaymentMethod, error)
}

// CartRepository puerto del carrito de la tienda en línea.
type CartRepository interface {
	GetLines(ctx context.Context, cartID int64) ([]entity.CartLine, error)
	Clear(ctx context.Context, cartID int64) error
}
