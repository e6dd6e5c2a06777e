package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
)

var (
	_ repository.CatalogRepository = (*CatalogRepo)(nil)
	_ repository.CartRepository    = (*CartRepo)(nil)
)

// CatalogRepo lecturas de tablas de referencia.
type CatalogRepo struct {
	q Querier
}

func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// scanOne ejecuta un QueryRow y traduce pgx.ErrNoRows a (false, nil).
func scanOne(ctx context.Context, q Querier, what, sql string, id int64, dest ...any) (bool, error) {
	if err := q.QueryRow(ctx, sql, id).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", what, err)
	}
	return true, nil
}

func (r *CatalogRepo) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	return NewProductRepository(r.q).GetByID(ctx, id)
}

func (r *CatalogRepo) GetSupplier(ctx context.Context, id int64) (*entity.Supplier, error) {
	var s entity.Supplier
	ok, err := scanOne(ctx, r.q, "supplier",
		`SELECT id, nombre, ruc, estado FROM proveedor WHERE id = $1`, id,
		&s.ID, &s.Name, &s.TaxID, &s.State)
	if !ok {
		return nil, err
	}
	return &s, nil
}

func (r *CatalogRepo) GetTaxRate(ctx context.Context, id int64) (*entity.TaxRate, error) {
	var t entity.TaxRate
	ok, err := scanOne(ctx, r.q, "tax rate",
		`SELECT id, porcentaje, estado, vigente_desde, vigente_hasta FROM iva WHERE id = $1`, id,
		&t.ID, &t.Percentage, &t.State, &t.ValidFrom, &t.ValidTo)
	if !ok {
		return nil, err
	}
	return &t, nil
}

func (r *CatalogRepo) GetUnitMeasure(ctx context.Context, id int64) (*entity.UnitMeasure, error) {
	var u entity.UnitMeasure
	ok, err := scanOne(ctx, r.q, "unit measure",
		`SELECT id, nombre, abreviatura, estado FROM unidad_medida WHERE id = $1`, id,
		&u.ID, &u.Name, &u.Abbreviation, &u.State)
	if !ok {
		return nil, err
	}
	return &u, nil
}

func (r *CatalogRepo) GetCustomer(ctx context.Context, id int64) (*entity.Customer, error) {
	var c entity.Customer
	ok, err := scanOne(ctx, r.q, "customer",
		`SELECT id, nombre, cedula, estado FROM cliente WHERE id = $1`, id,
		&c.ID, &c.Name, &c.DocumentID, &c.State)
	if !ok {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepo) GetPaymentMethod(ctx context.Context, id int64) (*entity.PaymentMethod, error) {
	var pm entity.PaymentMethod
	ok, err := scanOne(ctx, r.q, "payment method",
		`SELECT id, nombre, estado FROM forma_pago WHERE id = $1`, id,
		&pm.ID, &pm.Name, &pm.State)
	if !ok {
		return nil, err
	}
	return &pm, nil
}

// CartRepo carrito de la tienda en línea (carrito_detalle).
type CartRepo struct {
	q Querier
}

func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

// GetLines bloquea las líneas del carrito para que un checkout concurrente espere.
func (r *CartRepo) GetLines(ctx context.Context, cartID int64) ([]entity.CartLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT carrito_id, producto_id, cantidad
		FROM carrito_detalle WHERE carrito_id = $1
		ORDER BY producto_id
		FOR UPDATE`, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()
	var out []entity.CartLine
	for rows.Next() {
		var l entity.CartLine
		if err := rows.Scan(&l.CartID, &l.ProductID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *CartRepo) Clear(ctx context.Context, cartID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM carrito_detalle WHERE carrito_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
