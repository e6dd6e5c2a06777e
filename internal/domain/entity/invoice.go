package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/shopspring/decimal"
)

// SalesChannel canal de venta de la factura.
type SalesChannel string

const (
	ChannelPOS SalesChannel = "POS"
	ChannelWeb SalesChannel = "WEB"
)

// IsValid indica si el canal pertenece al conjunto cerrado.
func (c SalesChannel) IsValid() bool { return c == ChannelPOS || c == ChannelWeb }

// InvoiceState estado de la factura.
type InvoiceState string

const (
	InvoiceIssued    InvoiceState = "EMI"
	InvoiceCanceled  InvoiceState = "ANU"
	InvoicePaid      InvoiceState = "PAG"
	InvoiceApproved  InvoiceState = "APR"
	InvoiceDelivered InvoiceState = "ENT"
)

// InvoiceEvent evento sobre una factura.
type InvoiceEvent string

const InvoiceCancel InvoiceEvent = "CANCEL"

// Next aplica ev sobre s. La anulación solo es legal desde EMI.
func (s InvoiceState) Next(ev InvoiceEvent) (InvoiceState, error) {
	if s == InvoiceIssued && ev == InvoiceCancel {
		return InvoiceCanceled, nil
	}
	return s, fmt.Errorf("factura en estado %s no admite %s", s, ev)
}

// InvoiceIDPrefix prefijo de numeración de facturas.
const InvoiceIDPrefix = "F"

// MaxDocumentSequence último número que cabe en los seis dígitos del identificador.
const MaxDocumentSequence int64 = 999999

// FormatDocumentID arma el identificador PREFIJO-YYYY-NNNNNN.
func FormatDocumentID(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%04d-%06d", prefix, year, seq)
}

// NewDocumentID arma el identificador validando que seq quepa en el formato.
// Una serie anual agotada es un conflicto: no se emiten más documentos ese año.
func NewDocumentID(prefix string, year int, seq int64) (string, error) {
	if seq < 1 {
		return "", fmt.Errorf("secuencia %s-%04d inválida: %d", prefix, year, seq)
	}
	if seq > MaxDocumentSequence {
		return "", domain.Conflict("numeración %s-%04d agotada (máximo %d)", prefix, year, MaxDocumentSequence)
	}
	return FormatDocumentID(prefix, year, seq), nil
}

// Invoice cabecera de una factura (inmutable salvo anulación).
type Invoice struct {
	ID              string // F-YYYY-NNNNNN
	CustomerID      int64
	Channel         SalesChannel
	PaymentMethodID int64
	TaxRateID       int64
	TaxPercentage   decimal.Decimal
	State           InvoiceState
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	CartID          *int64
	CancelReason    string
	CreatedBy       int64
	IssuedAt        time.Time
	UpdatedAt       time.Time
	Lines           []InvoiceLine
}

// InvoiceLine detalle_factura.
type InvoiceLine struct {
	InvoiceID string
	ProductID int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
