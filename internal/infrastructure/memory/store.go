// Package memory implementa todos los puertos de repositorio en memoria.
// Las transacciones se serializan con un mutex y se revierten restaurando una
// copia del estado tomada al inicio, por lo que un fn que falla no deja rastro.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
)

type state struct {
	products       map[int64]entity.Product
	suppliers      map[int64]entity.Supplier
	taxRates       map[int64]entity.TaxRate
	units          map[int64]entity.UnitMeasure
	customers      map[int64]entity.Customer
	paymentMethods map[int64]entity.PaymentMethod
	carts          map[int64][]entity.CartLine
	orders         map[string]entity.PurchaseOrder
	receipts       map[int64]entity.Receipt
	adjustments    []entity.InventoryAdjustment
	invoices       map[string]entity.Invoice
	sequences      map[string]int64

	nextReceiptID    int64
	nextAdjustmentID int64
}

func newState() *state {
	return &state{
		products:       map[int64]entity.Product{},
		suppliers:      map[int64]entity.Supplier{},
		taxRates:       map[int64]entity.TaxRate{},
		units:          map[int64]entity.UnitMeasure{},
		customers:      map[int64]entity.Customer{},
		paymentMethods: map[int64]entity.PaymentMethod{},
		carts:          map[int64][]entity.CartLine{},
		orders:         map[string]entity.PurchaseOrder{},
		receipts:       map[int64]entity.Receipt{},
		invoices:       map[string]entity.Invoice{},
		sequences:      map[string]int64{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.taxRates {
		c.taxRates[k] = v
	}
	for k, v := range s.units {
		c.units[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.paymentMethods {
		c.paymentMethods[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = append([]entity.CartLine(nil), v...)
	}
	for k, v := range s.orders {
		c.orders[k] = copyOrder(v)
	}
	for k, v := range s.receipts {
		c.receipts[k] = copyReceipt(v)
	}
	for _, a := range s.adjustments {
		a.Details = append([]entity.AdjustmentDetail(nil), a.Details...)
		c.adjustments = append(c.adjustments, a)
	}
	for k, v := range s.invoices {
		c.invoices[k] = copyInvoice(v)
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	c.nextReceiptID = s.nextReceiptID
	c.nextAdjustmentID = s.nextAdjustmentID
	return c
}

func copyOrder(o entity.PurchaseOrder) entity.PurchaseOrder {
	o.Lines = append([]entity.PurchaseOrderLine(nil), o.Lines...)
	if o.Supplier != nil {
		sup := *o.Supplier
		o.Supplier = &sup
	}
	return o
}

func copyReceipt(r entity.Receipt) entity.Receipt {
	r.Lines = append([]entity.ReceiptLine(nil), r.Lines...)
	return r
}

func copyInvoice(i entity.Invoice) entity.Invoice {
	i.Lines = append([]entity.InvoiceLine(nil), i.Lines...)
	if i.CartID != nil {
		id := *i.CartID
		i.CartID = &id
	}
	return i
}

// Store almacén en memoria. El valor cero no es usable; construir con New.
type Store struct {
	mu   sync.Mutex
	st   *state
	fail map[string]error
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{st: newState(), fail: map[string]error{}}
}

// FailOn hace que la próxima llamada al método indicado (ej. "Adjustments.Create")
// devuelva err. Útil para simular fallas de infraestructura a mitad de transacción.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method] = err
}

// Run ejecuta fn con repositorios atados a una transacción exclusiva.
// Si fn devuelve error, el estado vuelve al snapshot previo.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	tx := &view{store: s, locked: true}
	if err := fn(tx.repos()); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// Repos devuelve repositorios fuera de transacción (cada llamada toma el lock).
func (s *Store) Repos() repository.Repos {
	v := &view{store: s}
	return v.repos()
}

// view comparte el estado del Store; locked indica que el llamador ya posee el mutex.
type view struct {
	store  *Store
	locked bool
}

func (v *view) repos() repository.Repos {
	return repository.Repos{
		Catalog:        catalogRepo{v},
		Carts:          cartRepo{v},
		Products:       productRepo{v},
		PurchaseOrders: purchaseOrderRepo{v},
		Receipts:       receiptRepo{v},
		Adjustments:    adjustmentRepo{v},
		Invoices:       invoiceRepo{v},
		Sequences:      sequenceRepo{v},
	}
}

// do ejecuta fn sobre el estado actual, tomando el lock si hace falta y
// devolviendo la falla inyectada para method, si existe.
func (v *view) do(method string, fn func(st *state) error) error {
	if !v.locked {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	if err, ok := v.store.fail[method]; ok {
		delete(v.store.fail, method)
		return err
	}
	return fn(v.store.st)
}
