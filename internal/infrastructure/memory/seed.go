package memory

import (
	"fmt"

	"github.com/jhoicas/licoreria-api/internal/domain/entity"
)

// Carga de datos de referencia (catálogo). Usado por tests y por el modo memoria.

func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

func (s *Store) AddSupplier(sup entity.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.suppliers[sup.ID] = sup
}

func (s *Store) AddTaxRate(t entity.TaxRate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.taxRates[t.ID] = t
}

func (s *Store) AddUnitMeasure(u entity.UnitMeasure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.units[u.ID] = u
}

func (s *Store) AddCustomer(c entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.customers[c.ID] = c
}

func (s *Store) AddPaymentMethod(pm entity.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.paymentMethods[pm.ID] = pm
}

// SetSequence fija el último número emitido de una serie anual.
func (s *Store) SetSequence(series string, year int, last int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.sequences[fmt.Sprintf("%s/%d", series, year)] = last
}

// SetCart reemplaza el contenido de un carrito.
func (s *Store) SetCart(cartID int64, lines []entity.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range lines {
		lines[i].CartID = cartID
	}
	s.st.carts[cartID] = append([]entity.CartLine(nil), lines...)
}

// Product devuelve una copia del producto (lectura directa para aserciones).
func (s *Store) Product(id int64) (entity.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	return p, ok
}

// InvoiceCount cantidad de facturas persistidas.
func (s *Store) InvoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.invoices)
}

// AdjustmentCount cantidad de ajustes de inventario persistidos.
func (s *Store) AdjustmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.adjustments)
}
