package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptState estado de una recepción de bodega.
type ReceiptState string

const (
	ReceiptDraft    ReceiptState = "ABI" // abierta, editable, sin efecto en stock
	ReceiptApproved ReceiptState = "APR" // stock comprometido; terminal
	ReceiptCanceled ReceiptState = "ANU" // terminal, sin efecto en stock
)

// ReceiptEvent evento sobre una recepción.
type ReceiptEvent string

const (
	ReceiptEditLines ReceiptEvent = "EDIT_LINES"
	ReceiptApprove   ReceiptEvent = "APPROVE"
	ReceiptCancel    ReceiptEvent = "CANCEL"
)

// Next aplica ev sobre s. Solo una recepción abierta acepta eventos.
func (s ReceiptState) Next(ev ReceiptEvent) (ReceiptState, error) {
	if s == ReceiptDraft {
		switch ev {
		case ReceiptEditLines:
			return ReceiptDraft, nil
		case ReceiptApprove:
			return ReceiptApproved, nil
		case ReceiptCancel:
			return ReceiptCanceled, nil
		}
	}
	return s, fmt.Errorf("recepción en estado %s no admite %s", s, ev)
}

// Receipt recepción de mercadería contra una orden de compra.
type Receipt struct {
	ID           int64
	OrderID      string
	EmployeeID   int64
	State        ReceiptState
	Notes        string
	CancelReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Lines        []ReceiptLine
}

// ReceiptLine cantidad recibida de un producto.
type ReceiptLine struct {
	ReceiptID        int64
	ProductID        int64
	QuantityReceived decimal.Decimal
}
