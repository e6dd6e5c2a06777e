package inventory

import (
	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Reglas del kardex agregado por producto. Cada mutador valida antes de tocar el
// producto: si devuelve error, ningún campo fue modificado.

// ExpectedBalance calcula saldo inicial + entradas - salidas + ajustes.
func ExpectedBalance(p *entity.Product) decimal.Decimal {
	return p.InitialBalance.Add(p.Inflow).Sub(p.Outflow).Add(p.Adjustments)
}

// Consistent indica si el saldo actual coincide con la identidad del kardex y no es negativo.
func Consistent(p *entity.Product) bool {
	return p.CurrentBalance.Equal(ExpectedBalance(p)) && !p.CurrentBalance.IsNegative()
}

func requirePositive(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.Invalid("la cantidad debe ser mayor que cero")
	}
	return nil
}

// ApplyInflow registra una entrada (recepción aprobada).
func ApplyInflow(p *entity.Product, qty decimal.Decimal) error {
	if err := requirePositive(qty); err != nil {
		return err
	}
	p.Inflow = p.Inflow.Add(qty)
	p.CurrentBalance = p.CurrentBalance.Add(qty)
	return nil
}

// ApplyOutflow registra una salida (venta). Falla con stock insuficiente si el saldo
// quedaría negativo.
func ApplyOutflow(p *entity.Product, qty decimal.Decimal) error {
	if err := requirePositive(qty); err != nil {
		return err
	}
	if p.CurrentBalance.LessThan(qty) {
		return domain.InsufficientStock("stock insuficiente para el producto %d: saldo %s, solicitado %s",
			p.ID, p.CurrentBalance.String(), qty.String())
	}
	p.Outflow = p.Outflow.Add(qty)
	p.CurrentBalance = p.CurrentBalance.Sub(qty)
	return nil
}

// ReverseOutflow devuelve al saldo una salida previamente registrada (anulación de factura).
func ReverseOutflow(p *entity.Product, qty decimal.Decimal) error {
	if err := requirePositive(qty); err != nil {
		return err
	}
	if p.Outflow.LessThan(qty) {
		return domain.Conflict("el producto %d no registra salidas suficientes para revertir %s", p.ID, qty.String())
	}
	p.Outflow = p.Outflow.Sub(qty)
	p.CurrentBalance = p.CurrentBalance.Add(qty)
	return nil
}

// ApplyAdjustment aplica un ajuste manual en la dirección indicada.
func ApplyAdjustment(p *entity.Product, dir entity.AdjustmentDirection, qty decimal.Decimal) error {
	if !dir.IsValid() {
		return domain.Invalid("dirección de ajuste inválida: %q", string(dir))
	}
	if err := requirePositive(qty); err != nil {
		return err
	}
	if dir == entity.AdjustmentOutflow {
		if p.CurrentBalance.LessThan(qty) {
			return domain.InsufficientStock("stock insuficiente para el producto %d: saldo %s, ajuste -%s",
				p.ID, p.CurrentBalance.String(), qty.String())
		}
		p.Adjustments = p.Adjustments.Sub(qty)
		p.CurrentBalance = p.CurrentBalance.Sub(qty)
		return nil
	}
	p.Adjustments = p.Adjustments.Add(qty)
	p.CurrentBalance = p.CurrentBalance.Add(qty)
	return nil
}
