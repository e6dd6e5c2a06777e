package purchasing

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/licoreria-api/internal/application/dto"
	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/domain/inventory"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
	"github.com/jhoicas/licoreria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// PurchaseOrderPrefix prefijo del código de compra.
const PurchaseOrderPrefix = "C"

// PurchaseOrderUseCase crea, edita, anula y consulta órdenes de compra.
type PurchaseOrderUseCase struct {
	txRunner TxRunner
	repos    repository.Repos
	log      *logger.Logger
	now      func() time.Time
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(txRunner TxRunner, repos repository.Repos, log *logger.Logger) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{
		txRunner: txRunner,
		repos:    repos,
		log:      log.Component("purchase_orders"),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests de cambio de año).
func (uc *PurchaseOrderUseCase) WithClock(now func() time.Time) *PurchaseOrderUseCase {
	uc.now = now
	return uc
}

// Create valida proveedor y productos, calcula subtotales y persiste la orden en estado PEN.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, employeeID int64, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	lines, err := buildOrderLines(in.Lines)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	var order *entity.PurchaseOrder

	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		supplier, err := repos.Catalog.GetSupplier(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if supplier == nil || supplier.State != entity.RecordActive {
			return domain.Invalid("proveedor %d inexistente o inactivo", in.SupplierID)
		}
		if err := requireActiveProducts(ctx, repos.Catalog, lines); err != nil {
			return err
		}

		seq, err := repos.Sequences.Next(ctx, repository.SeriesPurchaseOrder, now.Year())
		if err != nil {
			return err
		}
		id, err := entity.NewDocumentID(PurchaseOrderPrefix, now.Year(), seq)
		if err != nil {
			return err
		}
		order = &entity.PurchaseOrder{
			ID:         id,
			SupplierID: supplier.ID,
			Supplier:   supplier,
			State:      entity.PurchaseOrderPending,
			Notes:      in.Notes,
			CreatedBy:  employeeID,
			OrderedAt:  now,
			UpdatedAt:  now,
			Lines:      lines,
		}
		setOrderTotals(order)
		return repos.PurchaseOrders.Create(ctx, order)
	})
	if err != nil {
		logFailure(uc.log, err, "crear compra")
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Int64("supplier_id", order.SupplierID).
		Str("total", order.Total.String()).Msg("compra creada")
	return toPurchaseOrderResponse(order), nil
}

// Update reemplaza todas las líneas de una orden PEN sin recepciones.
func (uc *PurchaseOrderUseCase) Update(ctx context.Context, orderID string, in dto.UpdatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	lines, err := buildOrderLines(in.Lines)
	if err != nil {
		return nil, err
	}
	var order *entity.PurchaseOrder

	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		order, err = repos.PurchaseOrders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NotFound("compra %s no encontrada", orderID)
		}
		if err := requireNoReceipts(ctx, repos.Receipts, orderID); err != nil {
			return err
		}
		if _, err := order.State.Next(entity.PurchaseOrderEdit); err != nil {
			return domain.Conflict("%s", err.Error())
		}
		if err := requireActiveProducts(ctx, repos.Catalog, lines); err != nil {
			return err
		}
		order.Lines = lines
		order.UpdatedAt = uc.now()
		setOrderTotals(order)
		return repos.PurchaseOrders.ReplaceLines(ctx, order)
	})
	if err != nil {
		logFailure(uc.log, err, "editar compra")
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Int("lines", len(order.Lines)).
		Str("total", order.Total.String()).Msg("compra editada")
	return toPurchaseOrderResponse(order), nil
}

// Cancel anula una orden PEN sin recepciones. No tiene efecto en stock.
func (uc *PurchaseOrderUseCase) Cancel(ctx context.Context, orderID string) (*dto.PurchaseOrderResponse, error) {
	var order *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		order, err = repos.PurchaseOrders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NotFound("compra %s no encontrada", orderID)
		}
		if order.State == entity.PurchaseOrderCanceled {
			return domain.Invalid("la compra %s ya está anulada", orderID)
		}
		if err := requireNoReceipts(ctx, repos.Receipts, orderID); err != nil {
			return err
		}
		next, err := order.State.Next(entity.PurchaseOrderCancel)
		if err != nil {
			return domain.Conflict("%s", err.Error())
		}
		order.State = next
		return repos.PurchaseOrders.UpdateState(ctx, orderID, next)
	})
	if err != nil {
		logFailure(uc.log, err, "anular compra")
		return nil, err
	}
	uc.log.Info().Str("order_id", orderID).Msg("compra anulada")
	return toPurchaseOrderResponse(order), nil
}

// Get devuelve la orden con líneas y proveedor.
func (uc *PurchaseOrderUseCase) Get(ctx context.Context, orderID string) (*dto.PurchaseOrderResponse, error) {
	order, err := uc.repos.PurchaseOrders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NotFound("compra %s no encontrada", orderID)
	}
	return toPurchaseOrderResponse(order), nil
}

// List lista órdenes filtradas por estado y proveedor, más recientes primero.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, in dto.ListPurchaseOrdersRequest) ([]dto.PurchaseOrderResponse, error) {
	state := entity.PurchaseOrderState(in.State)
	if state != "" && !state.IsValid() {
		return nil, domain.Invalid("estado de compra inválido: %q", in.State)
	}
	in.DefaultPage()
	orders, err := uc.repos.PurchaseOrders.List(ctx, repository.PurchaseOrderFilter{
		State:      state,
		SupplierID: in.SupplierID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.PurchaseOrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, *toPurchaseOrderResponse(o))
	}
	return out, nil
}

// buildOrderLines valida forma y rangos de las líneas y calcula subtotales.
func buildOrderLines(in []dto.PurchaseOrderLineRequest) ([]entity.PurchaseOrderLine, error) {
	if len(in) == 0 {
		return nil, domain.Invalid("la compra debe tener al menos una línea")
	}
	seen := make(map[int64]bool, len(in))
	lines := make([]entity.PurchaseOrderLine, 0, len(in))
	for _, l := range in {
		if l.ProductID <= 0 {
			return nil, domain.Invalid("producto inválido en la compra")
		}
		if seen[l.ProductID] {
			return nil, domain.Invalid("el producto %d aparece más de una vez", l.ProductID)
		}
		seen[l.ProductID] = true
		if !l.Quantity.IsPositive() || l.Quantity.GreaterThan(entity.MaxLineQuantity) {
			return nil, domain.Invalid("cantidad fuera de rango para el producto %d (0 < cantidad <= %s)",
				l.ProductID, entity.MaxLineQuantity.String())
		}
		if !l.UnitCost.IsPositive() || l.UnitCost.GreaterThan(entity.MaxUnitCost) {
			return nil, domain.Invalid("costo unitario fuera de rango para el producto %d (0 < costo <= %s)",
				l.ProductID, entity.MaxUnitCost.String())
		}
		if err := inventory.CheckScale("cantidad", l.Quantity); err != nil {
			return nil, err
		}
		if err := inventory.CheckScale("costo unitario", l.UnitCost); err != nil {
			return nil, err
		}
		lines = append(lines, entity.PurchaseOrderLine{
			ProductID:        l.ProductID,
			Quantity:         l.Quantity,
			UnitCost:         l.UnitCost,
			Subtotal:         inventory.LineSubtotal(l.Quantity, l.UnitCost),
			QuantityReceived: decimal.Zero,
		})
	}
	return lines, nil
}

func setOrderTotals(o *entity.PurchaseOrder) {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal)
	}
	o.Subtotal = inventory.Round(total)
	o.Total = o.Subtotal
}

func requireActiveProducts(ctx context.Context, catalog repository.CatalogRepository, lines []entity.PurchaseOrderLine) error {
	for _, l := range lines {
		p, err := catalog.GetProduct(ctx, l.ProductID)
		if err != nil {
			return err
		}
		if p == nil || !p.IsActive() {
			return domain.Invalid("producto %d inexistente o inactivo", l.ProductID)
		}
	}
	return nil
}

func requireNoReceipts(ctx context.Context, receipts repository.ReceiptRepository, orderID string) error {
	n, err := receipts.CountByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.Conflict("la compra %s ya tiene %d recepción(es)", orderID, n)
	}
	return nil
}

// logFailure registra rechazos de negocio en Debug y fallas de infraestructura en Error.
func logFailure(log *logger.Logger, err error, op string) {
	if domain.IsBusiness(err) {
		log.Debug().Err(err).Str("op", op).Msg("operación rechazada")
		return
	}
	if errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("op", op).Msg("operación cancelada")
		return
	}
	log.Error().Err(err).Str("op", op).Msg("falla de infraestructura")
}
