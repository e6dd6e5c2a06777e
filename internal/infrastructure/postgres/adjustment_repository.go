package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo bitácora ajuste_inventario + detalle_ajuste (solo inserción).
type AdjustmentRepo struct {
	q Querier
}

func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

// Create asigna ID y, si falta, un transaction id UUID.
func (r *AdjustmentRepo) Create(ctx context.Context, a *entity.InventoryAdjustment) error {
	if a.TransactionID == "" {
		a.TransactionID = uuid.New().String()
	}
	if a.State == "" {
		a.State = entity.AdjustmentApplied
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO ajuste_inventario (transaccion_id, motivo, direccion, origen, referencia, num_lineas, estado, creado_por, creado_en)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		a.TransactionID, a.Reason, a.Direction, a.Source, nullIfEmpty(a.Reference), a.LineCount, a.State, a.CreatedBy, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert adjustment: %w", err)
	}
	b := &pgx.Batch{}
	for i := range a.Details {
		a.Details[i].AdjustmentID = a.ID
		d := a.Details[i]
		b.Queue(`INSERT INTO detalle_ajuste (ajuste_id, producto_id, cantidad) VALUES ($1, $2, $3)`,
			a.ID, d.ProductID, d.Quantity)
	}
	if err := sendBatch(ctx, r.q, b); err != nil {
		return fmt.Errorf("insert adjustment details: %w", err)
	}
	return nil
}

// ListByProduct ajustes que tocan el producto, más recientes primero.
func (r *AdjustmentRepo) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*entity.InventoryAdjustment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT a.id, a.transaccion_id::text, a.motivo, a.direccion, a.origen, a.referencia, a.num_lineas, a.estado, a.creado_por, a.creado_en
		FROM ajuste_inventario a
		WHERE EXISTS (SELECT 1 FROM detalle_ajuste d WHERE d.ajuste_id = a.id AND d.producto_id = $1)
		ORDER BY a.id DESC
		LIMIT $2 OFFSET $3`, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	var out []*entity.InventoryAdjustment
	byID := map[int64]*entity.InventoryAdjustment{}
	var ids []int64
	for rows.Next() {
		var a entity.InventoryAdjustment
		var ref *string
		if err := rows.Scan(&a.ID, &a.TransactionID, &a.Reason, &a.Direction, &a.Source, &ref,
			&a.LineCount, &a.State, &a.CreatedBy, &a.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		a.Reference = emptyIfNull(ref)
		out = append(out, &a)
		byID[a.ID] = &a
		ids = append(ids, a.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	if len(ids) == 0 {
		return out, nil
	}

	drows, err := r.q.Query(ctx, `
		SELECT ajuste_id, producto_id, cantidad FROM detalle_ajuste
		WHERE ajuste_id = ANY($1) ORDER BY ajuste_id, producto_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list adjustment details: %w", err)
	}
	defer drows.Close()
	for drows.Next() {
		var d entity.AdjustmentDetail
		if err := drows.Scan(&d.AdjustmentID, &d.ProductID, &d.Quantity); err != nil {
			return nil, fmt.Errorf("scan adjustment detail: %w", err)
		}
		a := byID[d.AdjustmentID]
		a.Details = append(a.Details, d)
	}
	return out, drows.Err()
}
