package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones aceptadas por el ajuste manual.
const (
	AdjustIncrease = "INCREASE"
	AdjustDecrease = "DECREASE"
)

// AdjustStockRequest body para POST /api/productos/:id/ajustar-stock.
type AdjustStockRequest struct {
	Direction string          `json:"direction" validate:"required,oneof=INCREASE DECREASE"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason" validate:"required,max=250"`
}

// LedgerResponse kardex agregado de un producto.
type LedgerResponse struct {
	ProductID      int64           `json:"product_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Inflow         decimal.Decimal `json:"inflow"`
	Outflow        decimal.Decimal `json:"outflow"`
	Adjustments    decimal.Decimal `json:"adjustments"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Cost           decimal.Decimal `json:"cost"`
	Consistent     bool            `json:"consistent"`
}

// AdjustmentResponse ajuste de inventario con su detalle.
type AdjustmentResponse struct {
	ID            int64                      `json:"id"`
	TransactionID string                     `json:"transaction_id"`
	Reason        string                     `json:"reason"`
	Direction     string                     `json:"direction"`
	Source        string                     `json:"source"`
	Reference     string                     `json:"reference,omitempty"`
	LineCount     int                        `json:"line_count"`
	State         string                     `json:"state"`
	CreatedBy     int64                      `json:"created_by"`
	CreatedAt     time.Time                  `json:"created_at"`
	Details       []AdjustmentDetailResponse `json:"details"`
}

// AdjustmentDetailResponse línea de detalle_ajuste.
type AdjustmentDetailResponse struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// AdjustStockResponse resultado del ajuste manual.
type AdjustStockResponse struct {
	Adjustment AdjustmentResponse `json:"adjustment"`
	Ledger     LedgerResponse     `json:"ledger"`
}
