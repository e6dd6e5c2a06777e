package inventory

import (
	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Places decimales de montos y cantidades persistidos.
const Places int32 = 3

var hundred = decimal.NewFromInt(100)

// Round redondea a 3 decimales (mitad alejándose de cero).
func Round(d decimal.Decimal) decimal.Decimal { return d.Round(Places) }

// CheckScale rechaza valores con más de 3 decimales: se persisten como NUMERIC(12,3)
// y el redondeo silencioso rompería el kardex.
func CheckScale(field string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(Places)) {
		return domain.Invalid("%s admite como máximo %d decimales: %s", field, Places, d.String())
	}
	return nil
}

// LineSubtotal devuelve round(cantidad * precio, 3).
func LineSubtotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Round(quantity.Mul(unitPrice))
}

// TaxAmount devuelve round(subtotal * porcentaje / 100, 3).
func TaxAmount(subtotal, percentage decimal.Decimal) decimal.Decimal {
	return Round(subtotal.Mul(percentage).Div(hundred))
}

// Totals calcula subtotal, impuesto y total a partir de los subtotales de línea.
func Totals(lineSubtotals []decimal.Decimal, taxPercentage decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	for _, s := range lineSubtotals {
		subtotal = subtotal.Add(s)
	}
	subtotal = Round(subtotal)
	tax = TaxAmount(subtotal, taxPercentage)
	return subtotal, tax, Round(subtotal.Add(tax))
}
