package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, cliente_id, canal, forma_pago_id, iva_id, porcentaje_iva, estado,
	subtotal, iva_valor, total, carrito_id, motivo_anulacion, creado_por, fecha_emision, actualizado_en`

// InvoiceRepo implementación del puerto InvoiceRepository (factura + detalle_factura).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create inserta cabecera y líneas. El id llega ya numerado (F-YYYY-NNNNNN).
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO factura (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		inv.ID, inv.CustomerID, inv.Channel, inv.PaymentMethodID, inv.TaxRateID, inv.TaxPercentage, inv.State,
		inv.Subtotal, inv.Tax, inv.Total, inv.CartID, nullIfEmpty(inv.CancelReason), inv.CreatedBy, inv.IssuedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	b := &pgx.Batch{}
	for i := range inv.Lines {
		inv.Lines[i].InvoiceID = inv.ID
		l := inv.Lines[i]
		b.Queue(`
			INSERT INTO detalle_factura (factura_id, producto_id, cantidad, precio_unitario, subtotal)
			VALUES ($1, $2, $3, $4, $5)`,
			inv.ID, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal)
	}
	if err := sendBatch(ctx, r.q, b); err != nil {
		return fmt.Errorf("insert invoice detail: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) get(ctx context.Context, id string, lock bool) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM factura WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var inv entity.Invoice
	var reason *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.CustomerID, &inv.Channel, &inv.PaymentMethodID, &inv.TaxRateID, &inv.TaxPercentage, &inv.State,
		&inv.Subtotal, &inv.Tax, &inv.Total, &inv.CartID, &reason, &inv.CreatedBy, &inv.IssuedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.CancelReason = emptyIfNull(reason)

	rows, err := r.q.Query(ctx, `
		SELECT factura_id, producto_id, cantidad, precio_unitario, subtotal
		FROM detalle_factura WHERE factura_id = $1 ORDER BY producto_id`, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice details: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.InvoiceID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan invoice detail: %w", err)
		}
		inv.Lines = append(inv.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get invoice details: %w", err)
	}
	return &inv, nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, id, false)
}

func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, id, true)
}

// UpdateState solo cambia estado y motivo de anulación; el resto de la factura es inmutable.
func (r *InvoiceRepo) UpdateState(ctx context.Context, inv *entity.Invoice) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE factura SET estado = $2, motivo_anulacion = $3, actualizado_en = $4 WHERE id = $1`,
		inv.ID, inv.State, nullIfEmpty(inv.CancelReason), inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update invoice state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update state: factura %s no existe", inv.ID)
	}
	return nil
}
