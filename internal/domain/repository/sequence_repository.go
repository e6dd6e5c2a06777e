package repository

import "context"

// Series de numeración por año.
const (
	SeriesInvoice       = "FACTURA"
	SeriesPurchaseOrder = "COMPRA"
)

// SequenceRepository asigna el siguiente número de una serie anual. La implementación
// debe serializar llamadas concurrentes de la misma (serie, año) hasta el fin de la tx.
type SequenceRepository interface {
	Next(ctx context.Context, series string, year int) (int64, error)
}
