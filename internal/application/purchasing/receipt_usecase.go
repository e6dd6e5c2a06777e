package purchasing

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jhoicas/licoreria-api/internal/application/dto"
	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/domain/inventory"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
	"github.com/jhoicas/licoreria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ReceiptUseCase gestiona recepciones de bodega contra órdenes de compra.
// Una recepción abierta (ABI) no toca stock; solo la aprobación compromete el kardex.
type ReceiptUseCase struct {
	txRunner TxRunner
	repos    repository.Repos
	log      *logger.Logger
	now      func() time.Time
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(txRunner TxRunner, repos repository.Repos, log *logger.Logger) *ReceiptUseCase {
	return &ReceiptUseCase{
		txRunner: txRunner,
		repos:    repos,
		log:      log.Component("receipts"),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj.
func (uc *ReceiptUseCase) WithClock(now func() time.Time) *ReceiptUseCase {
	uc.now = now
	return uc
}

// Open crea una recepción ABI. Sin líneas explícitas copia las cantidades pendientes de la orden.
func (uc *ReceiptUseCase) Open(ctx context.Context, orderID string, employeeID int64, in dto.OpenReceiptRequest) (*dto.ReceiptResponse, error) {
	if employeeID <= 0 {
		return nil, domain.Invalid("empleado requerido")
	}
	now := uc.now()
	var receipt *entity.Receipt

	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		order, err := repos.PurchaseOrders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NotFound("compra %s no encontrada", orderID)
		}
		if _, err := order.State.Next(entity.PurchaseOrderOpenReceipt); err != nil {
			return domain.Conflict("%s", err.Error())
		}
		if !order.HasPending() {
			return domain.Conflict("la compra %s no tiene cantidades pendientes", orderID)
		}

		var lines []entity.ReceiptLine
		if len(in.Lines) == 0 {
			for _, l := range order.Lines {
				if p := l.Pending(); p.IsPositive() {
					lines = append(lines, entity.ReceiptLine{ProductID: l.ProductID, QuantityReceived: p})
				}
			}
		} else {
			lines, err = receiptLinesFor(order, in.Lines)
			if err != nil {
				return err
			}
		}

		receipt = &entity.Receipt{
			OrderID:    order.ID,
			EmployeeID: employeeID,
			State:      entity.ReceiptDraft,
			Notes:      in.Notes,
			CreatedAt:  now,
			UpdatedAt:  now,
			Lines:      lines,
		}
		return repos.Receipts.Create(ctx, receipt)
	})
	if err != nil {
		logFailure(uc.log, err, "abrir recepción")
		return nil, err
	}
	uc.log.Info().Int64("receipt_id", receipt.ID).Str("order_id", orderID).
		Int64("employee_id", employeeID).Msg("recepción abierta")
	return toReceiptResponse(receipt), nil
}

// AdjustLines sobrescribe cantidades recibidas de una recepción ABI.
// Cada cantidad debe ser >= 0 y no superar lo pendiente en la orden.
func (uc *ReceiptUseCase) AdjustLines(ctx context.Context, receiptID int64, in dto.AdjustReceiptLinesRequest) (*dto.ReceiptResponse, error) {
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("se requiere al menos una línea")
	}
	var receipt *entity.Receipt

	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		receipt, err = repos.Receipts.GetForUpdate(ctx, receiptID)
		if err != nil {
			return err
		}
		if receipt == nil {
			return domain.NotFound("recepción %d no encontrada", receiptID)
		}
		if _, err := receipt.State.Next(entity.ReceiptEditLines); err != nil {
			return domain.Conflict("%s", err.Error())
		}
		order, err := repos.PurchaseOrders.GetByID(ctx, receipt.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("recepción %d: compra %s no existe", receiptID, receipt.OrderID)
		}
		updates, err := receiptLinesFor(order, in.Lines)
		if err != nil {
			return err
		}

		byProduct := make(map[int64]int, len(receipt.Lines))
		for i, l := range receipt.Lines {
			byProduct[l.ProductID] = i
		}
		for _, u := range updates {
			if i, ok := byProduct[u.ProductID]; ok {
				receipt.Lines[i].QuantityReceived = u.QuantityReceived
				continue
			}
			receipt.Lines = append(receipt.Lines, u)
		}
		receipt.UpdatedAt = uc.now()
		return repos.Receipts.ReplaceLines(ctx, receipt.ID, receipt.Lines)
	})
	if err != nil {
		logFailure(uc.log, err, "ajustar recepción")
		return nil, err
	}
	uc.log.Info().Int64("receipt_id", receiptID).Int("lines", len(in.Lines)).Msg("recepción ajustada")
	return toReceiptResponse(receipt), nil
}

// Approve compromete la recepción: entradas al kardex, costo promedio, un ajuste de
// entrada con su detalle, recepción APR y recálculo del estado de la orden. Todo o nada.
func (uc *ReceiptUseCase) Approve(ctx context.Context, receiptID, employeeID int64, in dto.ApproveReceiptRequest) (*dto.ApproveReceiptResponse, error) {
	now := uc.now()
	var (
		receipt    *entity.Receipt
		order      *entity.PurchaseOrder
		adjustment *entity.InventoryAdjustment
	)

	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		receipt, err = repos.Receipts.GetForUpdate(ctx, receiptID)
		if err != nil {
			return err
		}
		if receipt == nil {
			return domain.NotFound("recepción %d no encontrada", receiptID)
		}
		next, err := receipt.State.Next(entity.ReceiptApprove)
		if err != nil {
			return domain.Conflict("%s", err.Error())
		}
		order, err = repos.PurchaseOrders.GetForUpdate(ctx, receipt.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("recepción %d: compra %s no existe", receiptID, receipt.OrderID)
		}

		received := positiveLines(receipt.Lines)
		if len(received) == 0 {
			return domain.Invalid("la recepción %d no tiene cantidades recibidas", receiptID)
		}
		// Otra recepción pudo aprobarse desde que esta se abrió.
		for _, l := range received {
			ol, ok := order.Line(l.ProductID)
			if !ok {
				return domain.Conflict("el producto %d no pertenece a la compra %s", l.ProductID, order.ID)
			}
			if l.QuantityReceived.GreaterThan(ol.Pending()) {
				return domain.Conflict("producto %d: recibido %s excede lo pendiente %s",
					l.ProductID, l.QuantityReceived.String(), ol.Pending().String())
			}
		}

		details := make([]entity.AdjustmentDetail, 0, len(received))
		for _, l := range received {
			ol, _ := order.Line(l.ProductID)
			product, err := repos.Products.GetForUpdate(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.NotFound("producto %d no encontrado", l.ProductID)
			}
			cost := inventory.CostCalculator(product.CurrentBalance, product.Cost, l.QuantityReceived, ol.UnitCost)
			if err := inventory.ApplyInflow(product, l.QuantityReceived); err != nil {
				return err
			}
			if err := repos.Products.UpdateLedger(ctx, product); err != nil {
				return err
			}
			if err := repos.Products.UpdateCost(ctx, product.ID, cost); err != nil {
				return err
			}
			if err := repos.PurchaseOrders.AddReceived(ctx, order.ID, l.ProductID, l.QuantityReceived); err != nil {
				return err
			}
			ol.QuantityReceived = ol.QuantityReceived.Add(l.QuantityReceived)
			details = append(details, entity.AdjustmentDetail{ProductID: l.ProductID, Quantity: l.QuantityReceived})
		}

		reason := in.Reason
		if reason == "" {
			reason = fmt.Sprintf("Recepción %d de la compra %s", receipt.ID, order.ID)
		}
		adjustment = &entity.InventoryAdjustment{
			Reason:    reason,
			Direction: entity.AdjustmentInflow,
			Source:    entity.AdjustmentSourceReceipt,
			Reference: strconv.FormatInt(receipt.ID, 10),
			LineCount: len(details),
			State:     entity.AdjustmentApplied,
			CreatedBy: employeeID,
			CreatedAt: now,
			Details:   details,
		}
		if err := repos.Adjustments.Create(ctx, adjustment); err != nil {
			return err
		}

		receipt.State = next
		receipt.UpdatedAt = now
		if err := repos.Receipts.UpdateState(ctx, receipt); err != nil {
			return err
		}

		if ev, ok := order.ReceivingEvent(); ok {
			state, err := order.State.Next(ev)
			if err != nil {
				return domain.Conflict("%s", err.Error())
			}
			if state != order.State {
				order.State = state
				return repos.PurchaseOrders.UpdateState(ctx, order.ID, state)
			}
		}
		return nil
	})
	if err != nil {
		logFailure(uc.log, err, "aprobar recepción")
		return nil, err
	}
	uc.log.Info().Int64("receipt_id", receiptID).Str("order_id", order.ID).
		Str("order_state", string(order.State)).Int64("adjustment_id", adjustment.ID).
		Msg("recepción aprobada")
	return &dto.ApproveReceiptResponse{
		Receipt:      *toReceiptResponse(receipt),
		OrderState:   string(order.State),
		AdjustmentID: adjustment.ID,
	}, nil
}

// Cancel anula una recepción ABI. No hay stock que revertir.
func (uc *ReceiptUseCase) Cancel(ctx context.Context, receiptID int64, in dto.CancelRequest) (*dto.ReceiptResponse, error) {
	var receipt *entity.Receipt
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		receipt, err = repos.Receipts.GetForUpdate(ctx, receiptID)
		if err != nil {
			return err
		}
		if receipt == nil {
			return domain.NotFound("recepción %d no encontrada", receiptID)
		}
		next, err := receipt.State.Next(entity.ReceiptCancel)
		if err != nil {
			return domain.Conflict("%s", err.Error())
		}
		receipt.State = next
		receipt.CancelReason = in.Reason
		receipt.UpdatedAt = uc.now()
		return repos.Receipts.UpdateState(ctx, receipt)
	})
	if err != nil {
		logFailure(uc.log, err, "anular recepción")
		return nil, err
	}
	uc.log.Info().Int64("receipt_id", receiptID).Msg("recepción anulada")
	return toReceiptResponse(receipt), nil
}

// Get devuelve la recepción con sus líneas.
func (uc *ReceiptUseCase) Get(ctx context.Context, receiptID int64) (*dto.ReceiptResponse, error) {
	r, err := uc.repos.Receipts.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound("recepción %d no encontrada", receiptID)
	}
	return toReceiptResponse(r), nil
}

// ListByOrder lista las recepciones de una orden en orden de creación.
func (uc *ReceiptUseCase) ListByOrder(ctx context.Context, orderID string) ([]dto.ReceiptResponse, error) {
	order, err := uc.repos.PurchaseOrders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NotFound("compra %s no encontrada", orderID)
	}
	list, err := uc.repos.Receipts.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReceiptResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *toReceiptResponse(r))
	}
	return out, nil
}

// receiptLinesFor valida líneas contra la orden: producto de la orden, sin repetir,
// 0 <= cantidad <= pendiente.
func receiptLinesFor(order *entity.PurchaseOrder, in []dto.ReceiptLineRequest) ([]entity.ReceiptLine, error) {
	seen := make(map[int64]bool, len(in))
	out := make([]entity.ReceiptLine, 0, len(in))
	for _, l := range in {
		if seen[l.ProductID] {
			return nil, domain.Invalid("el producto %d aparece más de una vez", l.ProductID)
		}
		seen[l.ProductID] = true
		ol, ok := order.Line(l.ProductID)
		if !ok {
			return nil, domain.Invalid("el producto %d no pertenece a la compra %s", l.ProductID, order.ID)
		}
		if l.QuantityReceived.IsNegative() {
			return nil, domain.Invalid("cantidad recibida negativa para el producto %d", l.ProductID)
		}
		if err := inventory.CheckScale("cantidad recibida", l.QuantityReceived); err != nil {
			return nil, err
		}
		if l.QuantityReceived.GreaterThan(ol.Pending()) {
			return nil, domain.Invalid("producto %d: cantidad %s excede lo pendiente %s",
				l.ProductID, l.QuantityReceived.String(), ol.Pending().String())
		}
		out = append(out, entity.ReceiptLine{ProductID: l.ProductID, QuantityReceived: l.QuantityReceived})
	}
	return out, nil
}

// positiveLines devuelve las líneas con cantidad > 0 ordenadas por producto,
// para bloquear filas siempre en el mismo orden.
func positiveLines(lines []entity.ReceiptLine) []entity.ReceiptLine {
	out := make([]entity.ReceiptLine, 0, len(lines))
	for _, l := range lines {
		if l.QuantityReceived.GreaterThan(decimal.Zero) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}
