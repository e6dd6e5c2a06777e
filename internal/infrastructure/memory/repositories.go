package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.CatalogRepository       = catalogRepo{}
	_ repository.CartRepository          = cartRepo{}
	_ repository.ProductRepository       = productRepo{}
	_ repository.PurchaseOrderRepository = purchaseOrderRepo{}
	_ repository.ReceiptRepository       = receiptRepo{}
	_ repository.AdjustmentRepository    = adjustmentRepo{}
	_ repository.InvoiceRepository       = invoiceRepo{}
	_ repository.SequenceRepository      = sequenceRepo{}
)

// ── catálogo ────────────────────────────────────────────────────────────────

type catalogRepo struct{ v *view }

func (r catalogRepo) GetProduct(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do("Catalog.GetProduct", func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r catalogRepo) GetSupplier(_ context.Context, id int64) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.v.do("Catalog.GetSupplier", func(st *state) error {
		if s, ok := st.suppliers[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r catalogRepo) GetTaxRate(_ context.Context, id int64) (*entity.TaxRate, error) {
	var out *entity.TaxRate
	err := r.v.do("Catalog.GetTaxRate", func(st *state) error {
		if t, ok := st.taxRates[id]; ok {
			out = &t
		}
		return nil
	})
	return out, err
}

func (r catalogRepo) GetUnitMeasure(_ context.Context, id int64) (*entity.UnitMeasure, error) {
	var out *entity.UnitMeasure
	err := r.v.do("Catalog.GetUnitMeasure", func(st *state) error {
		if u, ok := st.units[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r catalogRepo) GetCustomer(_ context.Context, id int64) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.v.do("Catalog.GetCustomer", func(st *state) error {
		if c, ok := st.customers[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r catalogRepo) GetPaymentMethod(_ context.Context, id int64) (*entity.PaymentMethod, error) {
	var out *entity.PaymentMethod
	err := r.v.do("Catalog.GetPaymentMethod", func(st *state) error {
		if pm, ok := st.paymentMethods[id]; ok {
			out = &pm
		}
		return nil
	})
	return out, err
}

type cartRepo struct{ v *view }

func (r cartRepo) GetLines(_ context.Context, cartID int64) ([]entity.CartLine, error) {
	var out []entity.CartLine
	err := r.v.do("Carts.GetLines", func(st *state) error {
		out = append(out, st.carts[cartID]...)
		return nil
	})
	return out, err
}

func (r cartRepo) Clear(_ context.Context, cartID int64) error {
	return r.v.do("Carts.Clear", func(st *state) error {
		delete(st.carts, cartID)
		return nil
	})
}

// ── productos / kardex ──────────────────────────────────────────────────────

type productRepo struct{ v *view }

func (r productRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do("Products.GetByID", func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate no necesita bloqueo propio: la transacción ya es exclusiva.
func (r productRepo) GetForUpdate(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do("Products.GetForUpdate", func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r productRepo) UpdateLedger(_ context.Context, product *entity.Product) error {
	return r.v.do("Products.UpdateLedger", func(st *state) error {
		p, ok := st.products[product.ID]
		if !ok {
			return fmt.Errorf("update ledger: producto %d no existe", product.ID)
		}
		if product.CurrentBalance.IsNegative() {
			return fmt.Errorf("update ledger: check constraint saldo_actual >= 0 (producto %d)", product.ID)
		}
		p.Inflow = product.Inflow
		p.Outflow = product.Outflow
		p.Adjustments = product.Adjustments
		p.CurrentBalance = product.CurrentBalance
		p.UpdatedAt = time.Now()
		st.products[product.ID] = p
		return nil
	})
}

func (r productRepo) UpdateCost(_ context.Context, productID int64, cost decimal.Decimal) error {
	return r.v.do("Products.UpdateCost", func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return fmt.Errorf("update cost: producto %d no existe", productID)
		}
		p.Cost = cost
		st.products[productID] = p
		return nil
	})
}

// ── compras ─────────────────────────────────────────────────────────────────

type purchaseOrderRepo struct{ v *view }

func (r purchaseOrderRepo) Create(_ context.Context, order *entity.PurchaseOrder) error {
	return r.v.do("PurchaseOrders.Create", func(st *state) error {
		if _, ok := st.orders[order.ID]; ok {
			return domain.ErrDuplicate
		}
		o := copyOrder(*order)
		o.Supplier = nil
		for i := range o.Lines {
			o.Lines[i].OrderID = o.ID
		}
		st.orders[o.ID] = o
		return nil
	})
}

func (r purchaseOrderRepo) get(method, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := r.v.do(method, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return nil
		}
		o = copyOrder(o)
		if sup, ok := st.suppliers[o.SupplierID]; ok {
			o.Supplier = &sup
		}
		out = &o
		return nil
	})
	return out, err
}

func (r purchaseOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get("PurchaseOrders.GetByID", id)
}

func (r purchaseOrderRepo) GetForUpdate(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get("PurchaseOrders.GetForUpdate", id)
}

func (r purchaseOrderRepo) ReplaceLines(_ context.Context, order *entity.PurchaseOrder) error {
	return r.v.do("PurchaseOrders.ReplaceLines", func(st *state) error {
		o, ok := st.orders[order.ID]
		if !ok {
			return fmt.Errorf("replace lines: compra %s no existe", order.ID)
		}
		o.Lines = append([]entity.PurchaseOrderLine(nil), order.Lines...)
		for i := range o.Lines {
			o.Lines[i].OrderID = o.ID
		}
		o.Subtotal = order.Subtotal
		o.Total = order.Total
		o.UpdatedAt = order.UpdatedAt
		st.orders[o.ID] = o
		return nil
	})
}

func (r purchaseOrderRepo) UpdateState(_ context.Context, id string, s entity.PurchaseOrderState) error {
	return r.v.do("PurchaseOrders.UpdateState", func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return fmt.Errorf("update state: compra %s no existe", id)
		}
		o.State = s
		o.UpdatedAt = time.Now()
		st.orders[id] = o
		return nil
	})
}

func (r purchaseOrderRepo) AddReceived(_ context.Context, orderID string, productID int64, qty decimal.Decimal) error {
	return r.v.do("PurchaseOrders.AddReceived", func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return fmt.Errorf("add received: compra %s no existe", orderID)
		}
		o = copyOrder(o)
		line, ok := o.Line(productID)
		if !ok {
			return fmt.Errorf("add received: producto %d no está en la compra %s", productID, orderID)
		}
		line.QuantityReceived = line.QuantityReceived.Add(qty)
		st.orders[orderID] = o
		return nil
	})
}

func (r purchaseOrderRepo) List(_ context.Context, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	err := r.v.do("PurchaseOrders.List", func(st *state) error {
		for _, o := range st.orders {
			if f.State != "" && o.State != f.State {
				continue
			}
			if f.SupplierID != 0 && o.SupplierID != f.SupplierID {
				continue
			}
			c := copyOrder(o)
			if sup, ok := st.suppliers[c.SupplierID]; ok {
				c.Supplier = &sup
			}
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, f.Limit, f.Offset), err
}

// ── recepciones ─────────────────────────────────────────────────────────────

type receiptRepo struct{ v *view }

func (r receiptRepo) Create(_ context.Context, receipt *entity.Receipt) error {
	return r.v.do("Receipts.Create", func(st *state) error {
		st.nextReceiptID++
		receipt.ID = st.nextReceiptID
		for i := range receipt.Lines {
			receipt.Lines[i].ReceiptID = receipt.ID
		}
		st.receipts[receipt.ID] = copyReceipt(*receipt)
		return nil
	})
}

func (r receiptRepo) get(method string, id int64) (*entity.Receipt, error) {
	var out *entity.Receipt
	err := r.v.do(method, func(st *state) error {
		if rc, ok := st.receipts[id]; ok {
			rc = copyReceipt(rc)
			out = &rc
		}
		return nil
	})
	return out, err
}

func (r receiptRepo) GetByID(_ context.Context, id int64) (*entity.Receipt, error) {
	return r.get("Receipts.GetByID", id)
}

func (r receiptRepo) GetForUpdate(_ context.Context, id int64) (*entity.Receipt, error) {
	return r.get("Receipts.GetForUpdate", id)
}

func (r receiptRepo) ReplaceLines(_ context.Context, receiptID int64, lines []entity.ReceiptLine) error {
	return r.v.do("Receipts.ReplaceLines", func(st *state) error {
		rc, ok := st.receipts[receiptID]
		if !ok {
			return fmt.Errorf("replace lines: recepción %d no existe", receiptID)
		}
		rc.Lines = append([]entity.ReceiptLine(nil), lines...)
		for i := range rc.Lines {
			rc.Lines[i].ReceiptID = receiptID
		}
		rc.UpdatedAt = time.Now()
		st.receipts[receiptID] = rc
		return nil
	})
}

func (r receiptRepo) UpdateState(_ context.Context, receipt *entity.Receipt) error {
	return r.v.do("Receipts.UpdateState", func(st *state) error {
		rc, ok := st.receipts[receipt.ID]
		if !ok {
			return fmt.Errorf("update state: recepción %d no existe", receipt.ID)
		}
		rc.State = receipt.State
		rc.CancelReason = receipt.CancelReason
		rc.UpdatedAt = receipt.UpdatedAt
		st.receipts[receipt.ID] = rc
		return nil
	})
}

func (r receiptRepo) CountByOrder(_ context.Context, orderID string) (int, error) {
	n := 0
	err := r.v.do("Receipts.CountByOrder", func(st *state) error {
		for _, rc := range st.receipts {
			if rc.OrderID == orderID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r receiptRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.Receipt, error) {
	var out []*entity.Receipt
	err := r.v.do("Receipts.ListByOrder", func(st *state) error {
		for _, rc := range st.receipts {
			if rc.OrderID == orderID {
				c := copyReceipt(rc)
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// ── ajustes ─────────────────────────────────────────────────────────────────

type adjustmentRepo struct{ v *view }

func (r adjustmentRepo) Create(_ context.Context, adj *entity.InventoryAdjustment) error {
	return r.v.do("Adjustments.Create", func(st *state) error {
		st.nextAdjustmentID++
		adj.ID = st.nextAdjustmentID
		if adj.TransactionID == "" {
			adj.TransactionID = uuid.New().String()
		}
		for i := range adj.Details {
			adj.Details[i].AdjustmentID = adj.ID
		}
		c := *adj
		c.Details = append([]entity.AdjustmentDetail(nil), adj.Details...)
		st.adjustments = append(st.adjustments, c)
		return nil
	})
}

func (r adjustmentRepo) ListByProduct(_ context.Context, productID int64, limit, offset int) ([]*entity.InventoryAdjustment, error) {
	var out []*entity.InventoryAdjustment
	err := r.v.do("Adjustments.ListByProduct", func(st *state) error {
		for i := len(st.adjustments) - 1; i >= 0; i-- {
			a := st.adjustments[i]
			for _, d := range a.Details {
				if d.ProductID == productID {
					c := a
					c.Details = append([]entity.AdjustmentDetail(nil), a.Details...)
					out = append(out, &c)
					break
				}
			}
		}
		return nil
	})
	return paginate(out, limit, offset), err
}

// ── facturas ────────────────────────────────────────────────────────────────

type invoiceRepo struct{ v *view }

func (r invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	return r.v.do("Invoices.Create", func(st *state) error {
		if _, ok := st.invoices[inv.ID]; ok {
			return domain.ErrDuplicate
		}
		c := copyInvoice(*inv)
		for i := range c.Lines {
			c.Lines[i].InvoiceID = c.ID
		}
		st.invoices[c.ID] = c
		return nil
	})
}

func (r invoiceRepo) get(method, id string) (*entity.Invoice, error) {
	var out *entity.Invoice
	err := r.v.do(method, func(st *state) error {
		if inv, ok := st.invoices[id]; ok {
			inv = copyInvoice(inv)
			out = &inv
		}
		return nil
	})
	return out, err
}

func (r invoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	return r.get("Invoices.GetByID", id)
}

func (r invoiceRepo) GetForUpdate(_ context.Context, id string) (*entity.Invoice, error) {
	return r.get("Invoices.GetForUpdate", id)
}

func (r invoiceRepo) UpdateState(_ context.Context, inv *entity.Invoice) error {
	return r.v.do("Invoices.UpdateState", func(st *state) error {
		c, ok := st.invoices[inv.ID]
		if !ok {
			return fmt.Errorf("update state: factura %s no existe", inv.ID)
		}
		c.State = inv.State
		c.CancelReason = inv.CancelReason
		c.UpdatedAt = inv.UpdatedAt
		st.invoices[inv.ID] = c
		return nil
	})
}

// ── secuencias ──────────────────────────────────────────────────────────────

type sequenceRepo struct{ v *view }

func (r sequenceRepo) Next(_ context.Context, series string, year int) (int64, error) {
	var n int64
	err := r.v.do("Sequences.Next", func(st *state) error {
		key := fmt.Sprintf("%s/%d", series, year)
		st.sequences[key]++
		n = st.sequences[key]
		return nil
	})
	return n, err
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset > len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
