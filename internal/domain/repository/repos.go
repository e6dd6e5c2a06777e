package repository

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Catalog        CatalogRepository
	Carts          CartRepository
	Products       ProductRepository
	PurchaseOrders PurchaseOrderRepository
	Receipts       ReceiptRepository
	Adjustments    AdjustmentRepository
	Invoices       InvoiceRepository
	Sequences      SequenceRepository
}
