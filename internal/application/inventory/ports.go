package inventory

import (
	"context"

	"github.com/jhoicas/licoreria-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad entre el kardex y el registro de ajustes.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}
