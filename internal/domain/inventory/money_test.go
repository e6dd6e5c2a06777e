package inventory_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/jhoicas/licoreria-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// Escenario A: 10 x 5.00 + 3 x 12.50 = 87.50.
func TestTotals_OrdenDeCompra(t *testing.T) {
	lines := []decimal.Decimal{
		inventory.LineSubtotal(dec("10"), dec("5.00")),
		inventory.LineSubtotal(dec("3"), dec("12.50")),
	}
	subtotal, tax, total := inventory.Totals(lines, decimal.Zero)

	assert.True(t, dec("87.5").Equal(subtotal))
	assert.True(t, tax.IsZero())
	assert.True(t, dec("87.5").Equal(total))
}

// Escenario E: IVA 12% sobre 100.000 => 112.000.
func TestTotals_IVA12(t *testing.T) {
	subtotal, tax, total := inventory.Totals([]decimal.Decimal{dec("100.000")}, dec("12"))

	assert.Equal(t, "100.000", subtotal.StringFixed(3))
	assert.Equal(t, "12.000", tax.StringFixed(3))
	assert.Equal(t, "112.000", total.StringFixed(3))
}

func TestRound_TresDecimales(t *testing.T) {
	cases := map[string]string{
		"1.0004":  "1",
		"1.0005":  "1.001",
		"2.9999":  "3",
		"-1.0005": "-1.001",
	}
	for in, want := range cases {
		assert.True(t, dec(want).Equal(inventory.Round(dec(in))), "Round(%s)", in)
	}
	assert.True(t, dec("3.704").Equal(inventory.LineSubtotal(dec("3"), dec("1.2345"))))
}

func TestTaxAmount_Redondeo(t *testing.T) {
	// 33.333 * 12 / 100 = 3.99996 -> 4.000
	assert.Equal(t, "4.000", inventory.TaxAmount(dec("33.333"), dec("12")).StringFixed(3))
}

func TestCostCalculator(t *testing.T) {
	// (10*2 + 10*4) / 20 = 3
	assert.True(t, dec("3").Equal(inventory.CostCalculator(dec("10"), dec("2"), dec("10"), dec("4"))))
	// sin saldo previo el costo es el de entrada
	assert.True(t, dec("7.5").Equal(inventory.CostCalculator(decimal.Zero, decimal.Zero, dec("4"), dec("7.5"))))
	// (1*1 + 2*1) / 3 redondeado
	assert.True(t, dec("1.333").Equal(inventory.CostCalculator(dec("1"), dec("1"), dec("2"), dec("1.5"))))
	assert.True(t, inventory.CostCalculator(decimal.Zero, dec("1"), decimal.Zero, dec("1")).IsZero())
}

func TestCheckScale(t *testing.T) {
	for _, ok := range []string{"1", "0.001", "2.500", "12.3450000", "-4.25"} {
		assert.NoError(t, inventory.CheckScale("cantidad", dec(ok)), ok)
	}
	for _, bad := range []string{"0.0004", "1.0005", "-0.0001", "3.14159"} {
		err := inventory.CheckScale("cantidad", dec(bad))
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "%s: %v", bad, err)
	}
}
