package main

import (
	"time"

	"github.com/jhoicas/licoreria-api/internal/domain/entity"
	"github.com/jhoicas/licoreria-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
)

// seedDemoCatalog carga un catálogo de ejemplo para STORE_DRIVER=memory.
func seedDemoCatalog(store *memory.Store) {
	d := decimal.RequireFromString

	store.AddUnitMeasure(entity.UnitMeasure{ID: 1, Name: "Botella", Abbreviation: "bot", State: entity.RecordActive})
	store.AddSupplier(entity.Supplier{ID: 1, Name: "Distribuidora Andina", TaxID: "1790012345001", State: entity.RecordActive})
	store.AddCustomer(entity.Customer{ID: 1, Name: "Consumidor final", DocumentID: "9999999999", State: entity.RecordActive})
	store.AddPaymentMethod(entity.PaymentMethod{ID: 1, Name: "Efectivo", State: entity.RecordActive})
	store.AddPaymentMethod(entity.PaymentMethod{ID: 2, Name: "PayPal", State: entity.RecordActive})
	store.AddTaxRate(entity.TaxRate{
		ID: 1, Percentage: d("12"), State: entity.RecordActive,
		ValidFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	products := []entity.Product{
		{ID: 1, Code: "RON-750", Name: "Ron añejo 750ml", UnitPrice: d("18.500"), Cost: d("9.200"), InitialBalance: d("24")},
		{ID: 2, Code: "WHK-1L", Name: "Whisky escocés 1L", UnitPrice: d("42.000"), Cost: d("25.000"), InitialBalance: d("12")},
		{ID: 3, Code: "VOD-750", Name: "Vodka 750ml", UnitPrice: d("15.000"), Cost: d("7.800"), InitialBalance: d("0")},
	}
	for _, p := range products {
		p.UnitMeasureID = 1
		p.CurrentBalance = p.InitialBalance
		p.State = entity.RecordActive
		store.AddProduct(p)
	}
}
