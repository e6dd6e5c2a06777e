package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Límites por línea de compra.
var (
	MaxLineQuantity = decimal.NewFromInt(999999)
	MaxUnitCost     = decimal.RequireFromString("999999.999")
)

// PurchaseOrderState estado de una orden de compra.
type PurchaseOrderState string

const (
	PurchaseOrderPending   PurchaseOrderState = "PEN" // emitida, sin recepciones aprobadas
	PurchaseOrderPartial   PurchaseOrderState = "PAR" // recibida parcialmente
	PurchaseOrderCompleted PurchaseOrderState = "COM" // todas las líneas recibidas
	PurchaseOrderCanceled  PurchaseOrderState = "ANU"
)

// PurchaseOrderEvent evento que intenta mover una orden de compra.
type PurchaseOrderEvent string

const (
	PurchaseOrderEdit            PurchaseOrderEvent = "EDIT"
	PurchaseOrderCancel          PurchaseOrderEvent = "CANCEL"
	PurchaseOrderOpenReceipt     PurchaseOrderEvent = "OPEN_RECEIPT"
	PurchaseOrderReceivePartial  PurchaseOrderEvent = "RECEIVE_PARTIAL"
	PurchaseOrderReceiveComplete PurchaseOrderEvent = "RECEIVE_COMPLETE"
)

// IsValid indica si el estado pertenece al conjunto cerrado.
func (s PurchaseOrderState) IsValid() bool {
	switch s {
	case PurchaseOrderPending, PurchaseOrderPartial, PurchaseOrderCompleted, PurchaseOrderCanceled:
		return true
	}
	return false
}

// Next aplica ev sobre s. Solo los pares (estado, evento) listados son válidos.
func (s PurchaseOrderState) Next(ev PurchaseOrderEvent) (PurchaseOrderState, error) {
	switch {
	case s == PurchaseOrderPending && ev == PurchaseOrderEdit:
		return PurchaseOrderPending, nil
	case s == PurchaseOrderPending && ev == PurchaseOrderCancel:
		return PurchaseOrderCanceled, nil
	case (s == PurchaseOrderPending || s == PurchaseOrderPartial) && ev == PurchaseOrderOpenReceipt:
		return s, nil
	case (s == PurchaseOrderPending || s == PurchaseOrderPartial) && ev == PurchaseOrderReceivePartial:
		return PurchaseOrderPartial, nil
	case (s == PurchaseOrderPending || s == PurchaseOrderPartial) && ev == PurchaseOrderReceiveComplete:
		return PurchaseOrderCompleted, nil
	}
	return s, fmt.Errorf("orden de compra en estado %s no admite %s", s, ev)
}

// PurchaseOrder cabecera de una orden de compra (compra).
type PurchaseOrder struct {
	ID         string // C-YYYY-NNNNNN
	SupplierID int64
	Supplier   *Supplier
	Subtotal   decimal.Decimal
	Total      decimal.Decimal
	State      PurchaseOrderState
	Notes      string
	CreatedBy  int64
	OrderedAt  time.Time
	UpdatedAt  time.Time
	Lines      []PurchaseOrderLine
}

// PurchaseOrderLine detalle de compra.
type PurchaseOrderLine struct {
	OrderID          string
	ProductID        int64
	Quantity         decimal.Decimal
	UnitCost         decimal.Decimal
	Subtotal         decimal.Decimal // round(Quantity * UnitCost, 3)
	QuantityReceived decimal.Decimal
}

// Pending devuelve la cantidad aún no recibida (nunca negativa).
func (l PurchaseOrderLine) Pending() decimal.Decimal {
	p := l.Quantity.Sub(l.QuantityReceived)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// IsFullyReceived indica si la línea alcanzó la cantidad pedida.
func (l PurchaseOrderLine) IsFullyReceived() bool {
	return l.QuantityReceived.GreaterThanOrEqual(l.Quantity)
}

// Line busca la línea de un producto.
func (o *PurchaseOrder) Line(productID int64) (*PurchaseOrderLine, bool) {
	for i := range o.Lines {
		if o.Lines[i].ProductID == productID {
			return &o.Lines[i], true
		}
	}
	return nil, false
}

// HasPending indica si alguna línea tiene cantidad pendiente de recibir.
func (o *PurchaseOrder) HasPending() bool {
	for _, l := range o.Lines {
		if l.Pending().IsPositive() {
			return true
		}
	}
	return false
}

// ReceivingEvent deduce el evento de recepción a partir de las cantidades recibidas:
// todas completas => RECEIVE_COMPLETE, alguna recibida => RECEIVE_PARTIAL, ninguna => ok=false.
func (o *PurchaseOrder) ReceivingEvent() (ev PurchaseOrderEvent, ok bool) {
	all, some := len(o.Lines) > 0, false
	for _, l := range o.Lines {
		if !l.IsFullyReceived() {
			all = false
		}
		if l.QuantityReceived.IsPositive() {
			some = true
		}
	}
	switch {
	case all:
		return PurchaseOrderReceiveComplete, true
	case some:
		return PurchaseOrderReceivePartial, true
	}
	return "", false
}
