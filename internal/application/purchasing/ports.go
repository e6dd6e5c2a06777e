package purchasing

import (
	"context"

	"github.com/jhoicas/licoreria-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback; no hay reintentos.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}
