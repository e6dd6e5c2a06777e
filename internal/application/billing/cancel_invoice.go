package billing

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/licoreria-api/internal/application/dto"
	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/domain/inventory"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
)

// CancelInvoice anula una factura EMI: revierte las salidas de cada línea al saldo y
// registra un ajuste de entrada con origen ANULACION_FACTURA, todo en la misma tx.
func (uc *InvoiceUseCase) CancelInvoice(ctx context.Context, invoiceID string, employeeID int64, in dto.CancelRequest) (*dto.InvoiceResponse, error) {
	now := uc.now()
	var inv *entity.Invoice

	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		inv, err = repos.Invoices.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.NotFound("factura %s no encontrada", invoiceID)
		}
		next, err := inv.State.Next(entity.InvoiceCancel)
		if err != nil {
			return domain.Conflict("%s", err.Error())
		}

		lines := append([]entity.InvoiceLine(nil), inv.Lines...)
		sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
		details := make([]entity.AdjustmentDetail, 0, len(lines))
		for _, l := range lines {
			p, err := repos.Products.GetForUpdate(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("anular factura %s: producto %d no existe", invoiceID, l.ProductID)
			}
			if err := inventory.ReverseOutflow(p, l.Quantity); err != nil {
				return err
			}
			if err := repos.Products.UpdateLedger(ctx, p); err != nil {
				return err
			}
			details = append(details, entity.AdjustmentDetail{ProductID: l.ProductID, Quantity: l.Quantity})
		}

		reason := in.Reason
		if reason == "" {
			reason = "Anulación de factura " + inv.ID
		}
		if err := repos.Adjustments.Create(ctx, &entity.InventoryAdjustment{
			Reason:    reason,
			Direction: entity.AdjustmentInflow,
			Source:    entity.AdjustmentSourceInvoiceCancel,
			Reference: inv.ID,
			LineCount: len(details),
			State:     entity.AdjustmentApplied,
			CreatedBy: employeeID,
			CreatedAt: now,
			Details:   details,
		}); err != nil {
			return err
		}

		inv.State = next
		inv.CancelReason = in.Reason
		inv.UpdatedAt = now
		return repos.Invoices.UpdateState(ctx, inv)
	})
	if err != nil {
		logFailure(uc.log, err, "anular factura")
		return nil, err
	}
	uc.log.Info().Str("invoice_id", invoiceID).Msg("factura anulada")
	return toInvoiceResponse(inv), nil
}
