package repository

import (
	"context"

	"github.com/jhoicas/licoreria-api/internal/domain/entity"
)

// ReceiptRepository puerto de persistencia de recepcion y detalle_recepcion.
type ReceiptRepository interface {
	// Create asigna receipt.ID.
	Create(ctx context.Context, receipt *entity.Receipt) error
	GetByID(ctx context.Context, id int64) (*entity.Receipt, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.Receipt, error)
	ReplaceLines(ctx context.Context, receiptID int64, lines []entity.ReceiptLine) error
	UpdateState(ctx context.Context, receipt *entity.Receipt) error
	// CountByOrder cuenta recepciones de la orden en cualquier estado.
	CountByOrder(ctx context.Context, orderID string) (int, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Receipt, error)
}
