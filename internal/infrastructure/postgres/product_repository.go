package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, codigo, nombre, COALESCE(categoria_id, 0), COALESCE(unidad_medida_id, 0),
	precio_unitario, costo, saldo_inicial, entradas, salidas, ajustes, saldo_actual, estado, actualizado_en`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.CategoryID, &p.UnitMeasureID,
		&p.UnitPrice, &p.Cost, &p.InitialBalance, &p.Inflow, &p.Outflow, &p.Adjustments,
		&p.CurrentBalance, &p.State, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM producto WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE). Debe usarse dentro de una tx.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM producto WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

// UpdateLedger persiste los acumulados del kardex. El CHECK de la tabla rechaza saldos que no cuadran.
func (r *ProductRepo) UpdateLedger(ctx context.Context, p *entity.Product) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE producto
		SET entradas = $2, salidas = $3, ajustes = $4, saldo_actual = $5, actualizado_en = NOW()
		WHERE id = $1`,
		p.ID, p.Inflow, p.Outflow, p.Adjustments, p.CurrentBalance)
	if err != nil {
		return fmt.Errorf("update product ledger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update product ledger: producto %d no existe", p.ID)
	}
	return nil
}

func (r *ProductRepo) UpdateCost(ctx context.Context, productID int64, cost decimal.Decimal) error {
	if _, err := r.q.Exec(ctx, `UPDATE producto SET costo = $2, actualizado_en = NOW() WHERE id = $1`, productID, cost); err != nil {
		return fmt.Errorf("update product cost: %w", err)
	}
	return nil
}
