package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseOrderColumns = `c.id, c.proveedor_id, c.subtotal, c.total, c.estado, c.notas, c.creado_por,
	c.fecha_compra, c.actualizado_en, p.id, p.nombre, p.ruc, p.estado`

// PurchaseOrderRepo compra + detalle_compra.
type PurchaseOrderRepo struct {
	q Querier
}

func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create inserta cabecera y líneas en un solo batch.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO compra (id, proveedor_id, subtotal, total, estado, notas, creado_por, fecha_compra, actualizado_en)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.SupplierID, o.Subtotal, o.Total, o.State, nullIfEmpty(o.Notes), o.CreatedBy, o.OrderedAt, o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	if err := r.insertLines(ctx, o); err != nil {
		return err
	}
	return nil
}

func (r *PurchaseOrderRepo) insertLines(ctx context.Context, o *entity.PurchaseOrder) error {
	b := &pgx.Batch{}
	for i, l := range o.Lines {
		b.Queue(`
			INSERT INTO detalle_compra (compra_id, linea, producto_id, cantidad, costo_unitario, subtotal, cantidad_recibida)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			o.ID, i+1, l.ProductID, l.Quantity, l.UnitCost, l.Subtotal, l.QuantityReceived)
	}
	if err := sendBatch(ctx, r.q, b); err != nil {
		return fmt.Errorf("insert purchase order lines: %w", err)
	}
	return nil
}

func (r *PurchaseOrderRepo) get(ctx context.Context, id string, lock bool) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + `
		FROM compra c JOIN proveedor p ON p.id = c.proveedor_id
		WHERE c.id = $1`
	if lock {
		query += ` FOR UPDATE OF c`
	}
	o, err := scanPurchaseOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if o.Lines, err = r.lines(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func scanPurchaseOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	var notes *string
	sup := &entity.Supplier{}
	if err := row.Scan(&o.ID, &o.SupplierID, &o.Subtotal, &o.Total, &o.State, &notes, &o.CreatedBy,
		&o.OrderedAt, &o.UpdatedAt, &sup.ID, &sup.Name, &sup.TaxID, &sup.State); err != nil {
		return nil, err
	}
	o.Notes = emptyIfNull(notes)
	o.Supplier = sup
	return &o, nil
}

func (r *PurchaseOrderRepo) lines(ctx context.Context, orderID string) ([]entity.PurchaseOrderLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT compra_id, producto_id, cantidad, costo_unitario, subtotal, cantidad_recibida
		FROM detalle_compra WHERE compra_id = $1 ORDER BY linea`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list purchase order lines: %w", err)
	}
	defer rows.Close()
	var out []entity.PurchaseOrderLine
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.Quantity, &l.UnitCost, &l.Subtotal, &l.QuantityReceived); err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera; las líneas solo se modifican con ese lock tomado.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, true)
}

func (r *PurchaseOrderRepo) ReplaceLines(ctx context.Context, o *entity.PurchaseOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE compra SET subtotal = $2, total = $3, actualizado_en = $4 WHERE id = $1`,
		o.ID, o.Subtotal, o.Total, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update purchase order totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("replace lines: compra %s no existe", o.ID)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM detalle_compra WHERE compra_id = $1`, o.ID); err != nil {
		return fmt.Errorf("delete purchase order lines: %w", err)
	}
	return r.insertLines(ctx, o)
}

func (r *PurchaseOrderRepo) UpdateState(ctx context.Context, id string, state entity.PurchaseOrderState) error {
	tag, err := r.q.Exec(ctx, `UPDATE compra SET estado = $2, actualizado_en = NOW() WHERE id = $1`, id, state)
	if err != nil {
		return fmt.Errorf("update purchase order state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update state: compra %s no existe", id)
	}
	return nil
}

// AddReceived suma a cantidad_recibida; el CHECK de la tabla impide superar lo pedido.
func (r *PurchaseOrderRepo) AddReceived(ctx context.Context, orderID string, productID int64, qty decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE detalle_compra SET cantidad_recibida = cantidad_recibida + $3
		WHERE compra_id = $1 AND producto_id = $2`, orderID, productID, qty)
	if err != nil {
		return fmt.Errorf("add received quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("add received: producto %d no está en la compra %s", productID, orderID)
	}
	return nil
}

// List devuelve órdenes (más recientes primero) con sus líneas.
func (r *PurchaseOrderRepo) List(ctx context.Context, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	var where []string
	var args []any
	if f.State != "" {
		args = append(args, f.State)
		where = append(where, fmt.Sprintf("c.estado = $%d", len(args)))
	}
	if f.SupplierID != 0 {
		args = append(args, f.SupplierID)
		where = append(where, fmt.Sprintf("c.proveedor_id = $%d", len(args)))
	}
	query := `SELECT ` + purchaseOrderColumns + ` FROM compra c JOIN proveedor p ON p.id = c.proveedor_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(` ORDER BY c.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	var out []*entity.PurchaseOrder
	for rows.Next() {
		o, err := scanPurchaseOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	for _, o := range out {
		if o.Lines, err = r.lines(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}
