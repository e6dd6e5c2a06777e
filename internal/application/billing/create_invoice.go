package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/licoreria-api/internal/application/dto"
	"github.com/jhoicas/licoreria-api/internal/domain"
	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/domain/inventory"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
	"github.com/jhoicas/licoreria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// InvoiceUseCase crea una factura y descuenta el inventario en una sola transacción;
// también la anula devolviendo el stock.
type InvoiceUseCase struct {
	txRunner BillingTxRunner
	repos    repository.Repos
	log      *logger.Logger
	now      func() time.Time
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(txRunner BillingTxRunner, repos repository.Repos, log *logger.Logger) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner: txRunner,
		repos:    repos,
		log:      log.Component("invoices"),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (numeración por año).
func (uc *InvoiceUseCase) WithClock(now func() time.Time) *InvoiceUseCase {
	uc.now = now
	return uc
}

type itemInput struct {
	productID int64
	quantity  decimal.Decimal
	unitPrice decimal.Decimal // cero = precio del producto
}

// CreateInvoice toma las líneas del request o del carrito, verifica stock con las filas
// bloqueadas, asigna el siguiente F-YYYY-NNNNNN y persiste cabecera, detalle y salidas.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, employeeID int64, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	channel := entity.SalesChannel(in.Channel)
	if !channel.IsValid() {
		return nil, domain.Invalid("canal de venta inválido: %q (POS|WEB)", in.Channel)
	}
	if in.CartID != nil && len(in.Items) > 0 {
		return nil, domain.Invalid("indique ítems o carrito, no ambos")
	}
	if in.CartID == nil && len(in.Items) == 0 {
		return nil, domain.Invalid("la factura debe tener al menos un ítem")
	}
	var direct []itemInput
	for _, it := range in.Items {
		direct = append(direct, itemInput{productID: it.ProductID, quantity: it.Quantity, unitPrice: it.UnitPrice})
	}
	if len(direct) > 0 {
		if err := validateItems(direct); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	var inv *entity.Invoice

	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		if err := uc.checkReferences(ctx, repos.Catalog, in, now); err != nil {
			return err
		}
		items := direct
		if in.CartID != nil {
			cartLines, err := repos.Carts.GetLines(ctx, *in.CartID)
			if err != nil {
				return err
			}
			if len(cartLines) == 0 {
				return domain.Invalid("el carrito %d está vacío", *in.CartID)
			}
			for _, cl := range cartLines {
				items = append(items, itemInput{productID: cl.ProductID, quantity: cl.Quantity})
			}
			if err := validateItems(items); err != nil {
				return err
			}
		}
		sort.Slice(items, func(i, j int) bool { return items[i].productID < items[j].productID })

		// Primero bloquear y verificar todas las filas; luego escribir.
		products := make([]*entity.Product, len(items))
		for i, it := range items {
			p, err := repos.Products.GetForUpdate(ctx, it.productID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NotFound("producto %d no encontrado", it.productID)
			}
			if !p.IsActive() {
				return domain.Invalid("producto %d inactivo", it.productID)
			}
			if err := inventory.ApplyOutflow(p, it.quantity); err != nil {
				return err
			}
			products[i] = p
		}

		tax, err := repos.Catalog.GetTaxRate(ctx, in.TaxRateID)
		if err != nil {
			return err
		}
		lines := make([]entity.InvoiceLine, len(items))
		subtotals := make([]decimal.Decimal, len(items))
		for i, it := range items {
			price := it.unitPrice
			if price.IsZero() {
				price = products[i].UnitPrice
			}
			lines[i] = entity.InvoiceLine{
				ProductID: it.productID,
				Quantity:  it.quantity,
				UnitPrice: price,
				Subtotal:  inventory.LineSubtotal(it.quantity, price),
			}
			subtotals[i] = lines[i].Subtotal
		}
		subtotal, taxAmount, total := inventory.Totals(subtotals, tax.Percentage)

		seq, err := repos.Sequences.Next(ctx, repository.SeriesInvoice, now.Year())
		if err != nil {
			return err
		}
		id, err := entity.NewDocumentID(entity.InvoiceIDPrefix, now.Year(), seq)
		if err != nil {
			return err
		}
		inv = &entity.Invoice{
			ID:              id,
			CustomerID:      in.CustomerID,
			Channel:         channel,
			PaymentMethodID: in.PaymentMethodID,
			TaxRateID:       in.TaxRateID,
			TaxPercentage:   tax.Percentage,
			State:           entity.InvoiceIssued,
			Subtotal:        subtotal,
			Tax:             taxAmount,
			Total:           total,
			CartID:          in.CartID,
			CreatedBy:       employeeID,
			IssuedAt:        now,
			UpdatedAt:       now,
			Lines:           lines,
		}
		if err := repos.Invoices.Create(ctx, inv); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.Conflict("la factura %s ya existe", inv.ID)
			}
			return err
		}
		for _, p := range products {
			if err := repos.Products.UpdateLedger(ctx, p); err != nil {
				return err
			}
		}
		if in.CartID != nil {
			return repos.Carts.Clear(ctx, *in.CartID)
		}
		return nil
	})
	if err != nil {
		logFailure(uc.log, err, "emitir factura")
		return nil, err
	}
	uc.log.Info().Str("invoice_id", inv.ID).Int64("customer_id", inv.CustomerID).
		Str("channel", string(inv.Channel)).Str("total", inv.Total.String()).Msg("factura emitida")
	return toInvoiceResponse(inv), nil
}

// checkReferences verifica cliente, forma de pago y tarifa de IVA vigente en la fecha de emisión.
func (uc *InvoiceUseCase) checkReferences(ctx context.Context, catalog repository.CatalogRepository, in dto.CreateInvoiceRequest, at time.Time) error {
	customer, err := catalog.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.NotFound("cliente %d no encontrado", in.CustomerID)
	}
	if customer.State != entity.RecordActive {
		return domain.Invalid("cliente %d inactivo", in.CustomerID)
	}
	pm, err := catalog.GetPaymentMethod(ctx, in.PaymentMethodID)
	if err != nil {
		return err
	}
	if pm == nil {
		return domain.NotFound("forma de pago %d no encontrada", in.PaymentMethodID)
	}
	if pm.State != entity.RecordActive {
		return domain.Invalid("forma de pago %d inactiva", in.PaymentMethodID)
	}
	tax, err := catalog.GetTaxRate(ctx, in.TaxRateID)
	if err != nil {
		return err
	}
	if tax == nil {
		return domain.NotFound("tarifa de IVA %d no encontrada", in.TaxRateID)
	}
	if !tax.AppliesAt(at) {
		return domain.Invalid("tarifa de IVA %d inactiva o fuera de vigencia", in.TaxRateID)
	}
	return nil
}

func validateItems(items []itemInput) error {
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if it.productID <= 0 {
			return domain.Invalid("producto inválido en la factura")
		}
		if seen[it.productID] {
			return domain.Invalid("el producto %d aparece más de una vez", it.productID)
		}
		seen[it.productID] = true
		if !it.quantity.IsPositive() {
			return domain.Invalid("cantidad inválida para el producto %d", it.productID)
		}
		if it.unitPrice.IsNegative() {
			return domain.Invalid("precio negativo para el producto %d", it.productID)
		}
		if err := inventory.CheckScale("cantidad", it.quantity); err != nil {
			return err
		}
		if err := inventory.CheckScale("precio unitario", it.unitPrice); err != nil {
			return err
		}
	}
	return nil
}

// GetInvoice devuelve la factura con su detalle.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.repos.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.NotFound("factura %s no encontrada", invoiceID)
	}
	return toInvoiceResponse(inv), nil
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	out := &dto.InvoiceResponse{
		ID:              inv.ID,
		CustomerID:      inv.CustomerID,
		Channel:         string(inv.Channel),
		PaymentMethodID: inv.PaymentMethodID,
		TaxRateID:       inv.TaxRateID,
		TaxPercentage:   inv.TaxPercentage,
		State:           string(inv.State),
		Subtotal:        inv.Subtotal,
		Tax:             inv.Tax,
		Total:           inv.Total,
		CartID:          inv.CartID,
		CancelReason:    inv.CancelReason,
		CreatedBy:       inv.CreatedBy,
		IssuedAt:        inv.IssuedAt,
		Details:         make([]dto.InvoiceDetailResponse, 0, len(inv.Lines)),
	}
	for _, l := range inv.Lines {
		out.Details = append(out.Details, dto.InvoiceDetailResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	return out
}

func logFailure(log *logger.Logger, err error, op string) {
	if domain.IsBusiness(err) {
		log.Debug().Err(err).Str("op", op).Msg("operación rechazada")
		return
	}
	log.Error().Err(fmt.Errorf("%s: %w", op, err)).Msg("falla de infraestructura")
}
