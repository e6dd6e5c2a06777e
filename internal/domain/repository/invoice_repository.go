package repository

import (
	"context"

	"github.com/jhoicas/licoreria-api/internal/domain/entity"
)

// InvoiceRepository puerto de persistencia de factura y detalle_factura.
type InvoiceRepository interface {
	// Create persiste cabecera y líneas. Un id duplicado devuelve domain.ErrDuplicate.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	UpdateState(ctx context.Context, invoice *entity.Invoice) error
}
