package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest body para POST /api/facturas.
// Se indican Items o CartID, nunca ambos.
type CreateInvoiceRequest struct {
	CustomerID      int64                `json:"customer_id" validate:"required,gt=0"`
	Channel         string               `json:"channel" validate:"required,oneof=POS WEB"`
	PaymentMethodID int64                `json:"payment_method_id" validate:"required,gt=0"`
	TaxRateID       int64                `json:"tax_rate_id" validate:"required,gt=0"`
	CartID          *int64               `json:"cart_id,omitempty" validate:"omitempty,gt=0"`
	Items           []InvoiceItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

// InvoiceItemRequest línea de factura. UnitPrice cero toma el precio del producto.
type InvoiceItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// InvoiceResponse factura con detalle para GET /api/facturas/:id.
type InvoiceResponse struct {
	ID              string                  `json:"id"`
	CustomerID      int64                   `json:"customer_id"`
	Channel         string                  `json:"channel"`
	PaymentMethodID int64                   `json:"payment_method_id"`
	TaxRateID       int64                   `json:"tax_rate_id"`
	TaxPercentage   decimal.Decimal         `json:"tax_percentage"`
	State           string                  `json:"state"`
	Subtotal        decimal.Decimal         `json:"subtotal"`
	Tax             decimal.Decimal         `json:"tax"`
	Total           decimal.Decimal         `json:"total"`
	CartID          *int64                  `json:"cart_id,omitempty"`
	CancelReason    string                  `json:"cancel_reason,omitempty"`
	CreatedBy       int64                   `json:"created_by"`
	IssuedAt        time.Time               `json:"issued_at"`
	Details         []InvoiceDetailResponse `json:"details"`
}

// InvoiceDetailResponse línea de detalle en la respuesta.
type InvoiceDetailResponse struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}
