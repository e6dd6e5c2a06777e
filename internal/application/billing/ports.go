package billing

import (
	"context"

	"github.com/jhoicas/licoreria-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye repos de inventario y facturación.
type BillingTxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}
