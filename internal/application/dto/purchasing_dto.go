package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderLineRequest línea de una orden de compra.
type PurchaseOrderLineRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest body para POST /api/compras.
type CreatePurchaseOrderRequest struct {
	SupplierID int64                      `json:"supplier_id" validate:"required,gt=0"`
	Notes      string                     `json:"notes,omitempty" validate:"max=500"`
	Lines      []PurchaseOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdatePurchaseOrderRequest body para PUT /api/compras/:id (reemplaza todas las líneas).
type UpdatePurchaseOrderRequest struct {
	Lines []PurchaseOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ListPurchaseOrdersRequest filtros de GET /api/compras.
type ListPurchaseOrdersRequest struct {
	PageRequest
	State      string `query:"state" validate:"omitempty,oneof=PEN PAR COM ANU"`
	SupplierID int64  `query:"supplier_id" validate:"omitempty,gt=0"`
}

// SupplierResponse proveedor embebido en la orden.
type SupplierResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
}

// PurchaseOrderResponse orden de compra con líneas y proveedor.
type PurchaseOrderResponse struct {
	ID         string                      `json:"id"`
	Supplier   *SupplierResponse           `json:"supplier,omitempty"`
	SupplierID int64                       `json:"supplier_id"`
	Subtotal   decimal.Decimal             `json:"subtotal"`
	Total      decimal.Decimal             `json:"total"`
	State      string                      `json:"state"`
	Notes      string                      `json:"notes,omitempty"`
	CreatedBy  int64                       `json:"created_by"`
	OrderedAt  time.Time                   `json:"ordered_at"`
	Lines      []PurchaseOrderLineResponse `json:"lines"`
}

// PurchaseOrderLineResponse línea con cantidad recibida y pendiente.
type PurchaseOrderLineResponse struct {
	ProductID        int64           `json:"product_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	Pending          decimal.Decimal `json:"pending"`
}

// ReceiptLineRequest cantidad recibida de un producto.
type ReceiptLineRequest struct {
	ProductID        int64           `json:"product_id" validate:"required,gt=0"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
}

// OpenReceiptRequest body para POST /api/compras/:id/recepciones.
// Sin líneas, la recepción copia las cantidades pendientes de la orden.
type OpenReceiptRequest struct {
	Notes string               `json:"notes,omitempty" validate:"max=500"`
	Lines []ReceiptLineRequest `json:"lines,omitempty" validate:"omitempty,dive"`
}

// AdjustReceiptLinesRequest body para PUT /api/recepciones/:id/detalles.
type AdjustReceiptLinesRequest struct {
	Lines []ReceiptLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ApproveReceiptRequest body opcional para POST /api/recepciones/:id/aprobar.
type ApproveReceiptRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=250"`
}

// CancelRequest body opcional para las anulaciones.
type CancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=250"`
}

// ReceiptResponse recepción con líneas.
type ReceiptResponse struct {
	ID           int64                 `json:"id"`
	OrderID      string                `json:"order_id"`
	EmployeeID   int64                 `json:"employee_id"`
	State        string                `json:"state"`
	Notes        string                `json:"notes,omitempty"`
	CancelReason string                `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	Lines        []ReceiptLineResponse `json:"lines"`
}

// ReceiptLineResponse línea de recepción.
type ReceiptLineResponse struct {
	ProductID        int64           `json:"product_id"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
}

// ApproveReceiptResponse resultado de aprobar: recepción, estado de la orden y ajuste generado.
type ApproveReceiptResponse struct {
	Receipt      ReceiptResponse `json:"receipt"`
	OrderState   string          `json:"order_state"`
	AdjustmentID int64           `json:"adjustment_id"`
}
