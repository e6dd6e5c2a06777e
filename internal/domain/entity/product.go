package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado de registros de catálogo (producto, proveedor, IVA, unidad de medida...).
type RecordState string

const (
	RecordActive   RecordState = "ACT"
	RecordInactive RecordState = "INA"
)

// Product representa un producto del catálogo junto con su kardex agregado.
// CurrentBalance = InitialBalance + Inflow - Outflow + Adjustments, siempre >= 0.
type Product struct {
	ID             int64
	Code           string
	Name           string
	CategoryID     int64
	UnitMeasureID  int64
	UnitPrice      decimal.Decimal // precio de venta (sin IVA)
	Cost           decimal.Decimal // costo promedio ponderado
	InitialBalance decimal.Decimal
	Inflow         decimal.Decimal // entradas acumuladas (recepciones)
	Outflow        decimal.Decimal // salidas acumuladas (facturas)
	Adjustments    decimal.Decimal // ajustes manuales netos (+/-)
	CurrentBalance decimal.Decimal
	State          RecordState
	UpdatedAt      time.Time
}

// IsActive indica si el producto puede usarse en documentos nuevos.
func (p *Product) IsActive() bool { return p.State == RecordActive }

// UnitMeasure unidad de medida de un producto.
type UnitMeasure struct {
	ID           int64
	Name         string
	Abbreviation string
	State        RecordState
}
