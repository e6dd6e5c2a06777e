package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/licoreria-api/internal/application/dto"
	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/domain/inventory"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
	"github.com/jhoicas/licoreria-api/pkg/logger"
)

// StockUseCase aplica ajustes manuales de stock y expone el kardex de cada producto.
// Todo ajuste bloquea la fila del producto (GetForUpdate) y se registra en la misma tx.
type StockUseCase struct {
	txRunner TxRunner
	repos    repository.Repos
	log      *logger.Logger
	now      func() time.Time
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner, repos repository.Repos, log *logger.Logger) *StockUseCase {
	return &StockUseCase{
		txRunner: txRunner,
		repos:    repos,
		log:      log.Component("stock"),
		now:      time.Now,
	}
}

// AdjustStock aplica un ajuste manual INCREASE/DECREASE y escribe un ajuste con un detalle.
// Un DECREASE que deje el saldo negativo falla con stock insuficiente y no modifica nada.
func (uc *StockUseCase) AdjustStock(ctx context.Context, productID, employeeID int64, in dto.AdjustStockRequest) (*dto.AdjustStockResponse, error) {
	var dir entity.AdjustmentDirection
	switch strings.ToUpper(strings.TrimSpace(in.Direction)) {
	case dto.AdjustIncrease:
		dir = entity.AdjustmentInflow
	case dto.AdjustDecrease:
		dir = entity.AdjustmentOutflow
	default:
		return nil, domain.Invalid("dirección de ajuste inválida: %q (INCREASE|DECREASE)", in.Direction)
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("la cantidad debe ser mayor que cero")
	}
	if err := inventory.CheckScale("cantidad", in.Quantity); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.Invalid("el motivo del ajuste es obligatorio")
	}

	now := uc.now()
	var (
		product *entity.Product
		adj     *entity.InventoryAdjustment
	)
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		product, err = repos.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NotFound("producto %d no encontrado", productID)
		}
		if err := inventory.ApplyAdjustment(product, dir, in.Quantity); err != nil {
			return err
		}
		if err := repos.Products.UpdateLedger(ctx, product); err != nil {
			return err
		}
		adj = &entity.InventoryAdjustment{
			Reason:    reason,
			Direction: dir,
			Source:    entity.AdjustmentSourceManual,
			LineCount: 1,
			State:     entity.AdjustmentApplied,
			CreatedBy: employeeID,
			CreatedAt: now,
			Details:   []entity.AdjustmentDetail{{ProductID: productID, Quantity: in.Quantity}},
		}
		return repos.Adjustments.Create(ctx, adj)
	})
	if err != nil {
		uc.logFailure(err, productID)
		return nil, err
	}
	uc.log.Info().Int64("product_id", productID).Str("direction", string(dir)).
		Str("quantity", in.Quantity.String()).Str("balance", product.CurrentBalance.String()).
		Int64("adjustment_id", adj.ID).Msg("ajuste de stock aplicado")
	return &dto.AdjustStockResponse{
		Adjustment: ToAdjustmentResponse(adj),
		Ledger:     toLedgerResponse(product),
	}, nil
}

// GetLedger devuelve el kardex agregado del producto.
func (uc *StockUseCase) GetLedger(ctx context.Context, productID int64) (*dto.LedgerResponse, error) {
	p, err := uc.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto %d no encontrado", productID)
	}
	out := toLedgerResponse(p)
	return &out, nil
}

// ListAdjustments lista los ajustes que tocaron al producto, más recientes primero.
func (uc *StockUseCase) ListAdjustments(ctx context.Context, productID int64, page dto.PageRequest) ([]dto.AdjustmentResponse, error) {
	p, err := uc.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto %d no encontrado", productID)
	}
	page.DefaultPage()
	list, err := uc.repos.Adjustments.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AdjustmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, ToAdjustmentResponse(a))
	}
	return out, nil
}

func (uc *StockUseCase) logFailure(err error, productID int64) {
	if domain.IsBusiness(err) {
		uc.log.Debug().Err(err).Int64("product_id", productID).Msg("ajuste rechazado")
		return
	}
	uc.log.Error().Err(err).Int64("product_id", productID).Msg("falla de infraestructura en ajuste")
}

// ToAdjustmentResponse convierte un ajuste a su DTO.
func ToAdjustmentResponse(a *entity.InventoryAdjustment) dto.AdjustmentResponse {
	out := dto.AdjustmentResponse{
		ID:            a.ID,
		TransactionID: a.TransactionID,
		Reason:        a.Reason,
		Direction:     string(a.Direction),
		Source:        a.Source,
		Reference:     a.Reference,
		LineCount:     a.LineCount,
		State:         string(a.State),
		CreatedBy:     a.CreatedBy,
		CreatedAt:     a.CreatedAt,
		Details:       make([]dto.AdjustmentDetailResponse, 0, len(a.Details)),
	}
	for _, d := range a.Details {
		out.Details = append(out.Details, dto.AdjustmentDetailResponse{ProductID: d.ProductID, Quantity: d.Quantity})
	}
	return out
}

func toLedgerResponse(p *entity.Product) dto.LedgerResponse {
	return dto.LedgerResponse{
		ProductID:      p.ID,
		Code:           p.Code,
		Name:           p.Name,
		InitialBalance: p.InitialBalance,
		Inflow:         p.Inflow,
		Outflow:        p.Outflow,
		Adjustments:    p.Adjustments,
		CurrentBalance: p.CurrentBalance,
		Cost:           p.Cost,
		Consistent:     inventory.Consistent(p),
	}
}
