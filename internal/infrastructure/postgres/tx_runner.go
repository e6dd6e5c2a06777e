package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/licoreria-api/internal/application/billing"
	"github.com/jhoicas/licoreria-api/internal/application/inventory"
	"github.com/jhoicas/licoreria-api/internal/application/purchasing"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner      = (*TxRunner)(nil)
	_ purchasing.TxRunner     = (*TxRunner)(nil)
	_ billing.BillingTxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + SELECT FOR UPDATE).
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepos arma el juego completo de repositorios sobre q (pool o tx).
func NewRepos(q Querier) repository.Repos {
	return repository.Repos{
		Catalog:        NewCatalogRepository(q),
		Carts:          NewCartRepository(q),
		Products:       NewProductRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
		Receipts:       NewReceiptRepository(q),
		Adjustments:    NewAdjustmentRepository(q),
		Invoices:       NewInvoiceRepository(q),
		Sequences:      NewSequenceRepository(q),
	}
}
