package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

const receiptColumns = `id, compra_id, empleado_id, estado, notas, motivo_anulacion, creado_en, actualizado_en`

// ReceiptRepo recepcion + detalle_recepcion.
type ReceiptRepo struct {
	q Querier
}

func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

func (r *ReceiptRepo) Create(ctx context.Context, rc *entity.Receipt) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO recepcion (compra_id, empleado_id, estado, notas, motivo_anulacion, creado_en, actualizado_en)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		rc.OrderID, rc.EmployeeID, rc.State, nullIfEmpty(rc.Notes), nullIfEmpty(rc.CancelReason), rc.CreatedAt, rc.UpdatedAt,
	).Scan(&rc.ID)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	for i := range rc.Lines {
		rc.Lines[i].ReceiptID = rc.ID
	}
	return r.insertLines(ctx, rc.ID, rc.Lines)
}

func (r *ReceiptRepo) insertLines(ctx context.Context, receiptID int64, lines []entity.ReceiptLine) error {
	b := &pgx.Batch{}
	for _, l := range lines {
		b.Queue(`INSERT INTO detalle_recepcion (recepcion_id, producto_id, cantidad_recibida) VALUES ($1, $2, $3)`,
			receiptID, l.ProductID, l.QuantityReceived)
	}
	if err := sendBatch(ctx, r.q, b); err != nil {
		return fmt.Errorf("insert receipt lines: %w", err)
	}
	return nil
}

func scanReceipt(row pgx.Row) (*entity.Receipt, error) {
	var rc entity.Receipt
	var notes, reason *string
	if err := row.Scan(&rc.ID, &rc.OrderID, &rc.EmployeeID, &rc.State, &notes, &reason, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
		return nil, err
	}
	rc.Notes = emptyIfNull(notes)
	rc.CancelReason = emptyIfNull(reason)
	return &rc, nil
}

func (r *ReceiptRepo) get(ctx context.Context, id int64, lock bool) (*entity.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM recepcion WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	rc, err := scanReceipt(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	if rc.Lines, err = r.lines(ctx, rc.ID); err != nil {
		return nil, err
	}
	return rc, nil
}

func (r *ReceiptRepo) lines(ctx context.Context, receiptID int64) ([]entity.ReceiptLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT recepcion_id, producto_id, cantidad_recibida
		FROM detalle_recepcion WHERE recepcion_id = $1 ORDER BY producto_id`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("list receipt lines: %w", err)
	}
	defer rows.Close()
	var out []entity.ReceiptLine
	for rows.Next() {
		var l entity.ReceiptLine
		if err := rows.Scan(&l.ReceiptID, &l.ProductID, &l.QuantityReceived); err != nil {
			return nil, fmt.Errorf("scan receipt line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *ReceiptRepo) GetByID(ctx context.Context, id int64) (*entity.Receipt, error) {
	return r.get(ctx, id, false)
}

func (r *ReceiptRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Receipt, error) {
	return r.get(ctx, id, true)
}

func (r *ReceiptRepo) ReplaceLines(ctx context.Context, receiptID int64, lines []entity.ReceiptLine) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM detalle_recepcion WHERE recepcion_id = $1`, receiptID); err != nil {
		return fmt.Errorf("delete receipt lines: %w", err)
	}
	if _, err := r.q.Exec(ctx, `UPDATE recepcion SET actualizado_en = NOW() WHERE id = $1`, receiptID); err != nil {
		return fmt.Errorf("touch receipt: %w", err)
	}
	return r.insertLines(ctx, receiptID, lines)
}

func (r *ReceiptRepo) UpdateState(ctx context.Context, rc *entity.Receipt) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE recepcion SET estado = $2, motivo_anulacion = $3, actualizado_en = $4 WHERE id = $1`,
		rc.ID, rc.State, nullIfEmpty(rc.CancelReason), rc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update receipt state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update state: recepción %d no existe", rc.ID)
	}
	return nil
}

func (r *ReceiptRepo) CountByOrder(ctx context.Context, orderID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM recepcion WHERE compra_id = $1`, orderID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count receipts: %w", err)
	}
	return n, nil
}

func (r *ReceiptRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Receipt, error) {
	rows, err := r.q.Query(ctx, `SELECT `+receiptColumns+` FROM recepcion WHERE compra_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	var out []*entity.Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		out = append(out, rc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	for _, rc := range out {
		if rc.Lines, err = r.lines(ctx, rc.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}
