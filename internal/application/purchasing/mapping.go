package purchasing

import (
	"github.com/jhoicas/licoreria-api/internal/application/dto"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
)

func toPurchaseOrderResponse(o *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	out := &dto.PurchaseOrderResponse{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		Subtotal:   o.Subtotal,
		Total:      o.Total,
		State:      string(o.State),
		Notes:      o.Notes,
		CreatedBy:  o.CreatedBy,
		OrderedAt:  o.OrderedAt,
		Lines:      make([]dto.PurchaseOrderLineResponse, 0, len(o.Lines)),
	}
	if o.Supplier != nil {
		out.Supplier = &dto.SupplierResponse{ID: o.Supplier.ID, Name: o.Supplier.Name, TaxID: o.Supplier.TaxID}
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, dto.PurchaseOrderLineResponse{
			ProductID:        l.ProductID,
			Quantity:         l.Quantity,
			UnitCost:         l.UnitCost,
			Subtotal:         l.Subtotal,
			QuantityReceived: l.QuantityReceived,
			Pending:          l.Pending(),
		})
	}
	return out
}

func toReceiptResponse(r *entity.Receipt) *dto.ReceiptResponse {
	out := &dto.ReceiptResponse{
		ID:           r.ID,
		OrderID:      r.OrderID,
		EmployeeID:   r.EmployeeID,
		State:        string(r.State),
		Notes:        r.Notes,
		CancelReason: r.CancelReason,
		CreatedAt:    r.CreatedAt,
		Lines:        make([]dto.ReceiptLineResponse, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		out.Lines = append(out.Lines, dto.ReceiptLineResponse{ProductID: l.ProductID, QuantityReceived: l.QuantityReceived})
	}
	return out
}
