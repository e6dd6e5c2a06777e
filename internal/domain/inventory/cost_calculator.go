package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((SaldoActual * CostoActual) + (CantEntrada * CostoEntrada)) / (SaldoActual + CantEntrada)
// El resultado se redondea a 3 decimales; si el saldo resultante no es positivo el costo es 0.
func CostCalculator(saldoActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := saldoActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := saldoActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return Round(num.Div(sum))
}
