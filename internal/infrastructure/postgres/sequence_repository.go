package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/licoreria-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo numeración anual en secuencia_documento.
// El upsert toma el lock de la fila (serie, anio) hasta el fin de la tx, por lo que
// dos emisiones concurrentes nunca obtienen el mismo número ni dejan huecos si una hace rollback.
type SequenceRepo struct {
	q Querier
}

func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

func (r *SequenceRepo) Next(ctx context.Context, series string, year int) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO secuencia_documento (serie, anio, ultimo)
		VALUES ($1, $2, 1)
		ON CONFLICT (serie, anio)
		DO UPDATE SET ultimo = secuencia_documento.ultimo + 1
		RETURNING ultimo`, series, year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s/%d: %w", series, year, err)
	}
	return n, nil
}
