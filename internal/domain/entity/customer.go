package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer representa un cliente (POS o tienda en línea).
type Customer struct {
	ID         int64
	Name       string
	DocumentID string // cédula o RUC
	State      RecordState
}

// Supplier representa un proveedor al que se emiten órdenes de compra.
type Supplier struct {
	ID    int64
	Name  string
	TaxID string
	State RecordState
}

// PaymentMethod forma de pago aceptada en facturación.
type PaymentMethod struct {
	ID    int64
	Name  string
	State RecordState
}

// TaxRate tarifa de IVA con vigencia. Percentage en puntos (12 = 12%).
type TaxRate struct {
	ID         int64
	Percentage decimal.Decimal
	State      RecordState
	ValidFrom  time.Time
	ValidTo    *time.Time // nil = vigente sin fecha de fin
}

// AppliesAt indica si la tarifa está activa y vigente en la fecha dada.
func (t *TaxRate) AppliesAt(at time.Time) bool {
	if t.State != RecordActive {
		return false
	}
	if at.Before(t.ValidFrom) {
		return false
	}
	if t.ValidTo != nil && at.After(*t.ValidTo) {
		return false
	}
	return true
}

// CartLine línea de un carrito de compras en línea.
type CartLine struct {
	CartID    int64
	ProductID int64
	Quantity  decimal.Decimal
}
