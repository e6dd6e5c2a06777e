package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentDirection sentido del ajuste de inventario.
type AdjustmentDirection string

const (
	AdjustmentInflow  AdjustmentDirection = "E" // entrada
	AdjustmentOutflow AdjustmentDirection = "S" // salida
)

// IsValid indica si la dirección pertenece al conjunto cerrado.
func (d AdjustmentDirection) IsValid() bool {
	return d == AdjustmentInflow || d == AdjustmentOutflow
}

// AdjustmentState estado del registro de ajuste. Solo se persisten ajustes aplicados.
type AdjustmentState string

const AdjustmentApplied AdjustmentState = "APL"

// Origen del ajuste (trazabilidad del documento que lo produjo).
const (
	AdjustmentSourceManual        = "MANUAL"
	AdjustmentSourceReceipt       = "RECEPCION"
	AdjustmentSourceInvoiceCancel = "ANULACION_FACTURA"
)

// InventoryAdjustment cabecera de ajuste_inventario; siempre acompaña a una mutación del kardex.
type InventoryAdjustment struct {
	ID            int64
	TransactionID string
	Reason        string
	Direction     AdjustmentDirection
	Source        string
	Reference     string // id de la recepción o factura, vacío si es manual
	LineCount     int
	State         AdjustmentState
	CreatedBy     int64
	CreatedAt     time.Time
	Details       []AdjustmentDetail
}

// AdjustmentDetail detalle_ajuste: cantidad (positiva) por producto.
type AdjustmentDetail struct {
	AdjustmentID int64
	ProductID    int64
	Quantity     decimal.Decimal
}
