// Package demo holds the sample shop loaded by "load demo data".
package demo

import (
	"time"

	"go-myshop-agent/internal/actions"
	"go-myshop-agent/internal/models"
)

// BusinessName is shown for guest sessions.
const BusinessName = "My Demo Shop"

// State builds the sample shop dated relative to now. Ids are fresh on every
// call so two owners loading the demo never share a row id.
func State(now time.Time) models.BusinessState {
	day := func(ago int) time.Time { return now.AddDate(0, 0, -ago).UTC() }

	rice := models.Product{ID: actions.NewID(""), Name: "Miniket Rice (5kg)", SKU: "SKU-1001", Price: 420, Cost: 380, Quantity: 40, Categories: []string{"Grocery"}}
	oil := models.Product{ID: actions.NewID(""), Name: "Soybean Oil (1L)", SKU: "SKU-1002", Price: 185, Cost: 168, Quantity: 25, Categories: []string{"Grocery"}}
	lentils := models.Product{ID: actions.NewID(""), Name: "Red Lentils (1kg)", SKU: "SKU-1003", Price: 135, Cost: 118, Quantity: 6, Categories: []string{"Grocery"}}
	soap := models.Product{ID: actions.NewID(""), Name: "Bath Soap", SKU: "SKU-2001", Price: 55, Cost: 42, Quantity: 60, Categories: []string{"Personal Care"}}
	tea := models.Product{ID: actions.NewID(""), Name: "Tea Leaves (400g)", SKU: "SKU-1004", Price: 210, Cost: 182, Quantity: 4, Categories: []string{"Beverage", "Grocery"}}

	rina := models.Customer{ID: actions.NewID("cust-"), Name: "Rina Akter", Phone: "+8801712345678", Email: "rina@example.com"}
	karim := models.Customer{ID: actions.NewID("cust-"), Name: "Abdul Karim", Phone: "+8801811111111"}

	sales := []models.Sale{
		sale(day(0), rina.Name, models.SaleItem{ProductID: rice.ID, Quantity: 1, Price: rice.Price}, models.SaleItem{ProductID: oil.ID, Quantity: 2, Price: oil.Price}),
		sale(day(1), karim.Name, models.SaleItem{ProductID: tea.ID, Quantity: 1, Price: tea.Price}),
		sale(day(3), actions.WalkInCustomer, models.SaleItem{ProductID: soap.ID, Quantity: 4, Price: soap.Price}),
		sale(day(6), rina.Name, models.SaleItem{ProductID: lentils.ID, Quantity: 2, Price: lentils.Price}),
	}
	rina.TotalSpent = sales[0].TotalAmount + sales[3].TotalAmount
	karim.TotalSpent = sales[1].TotalAmount

	return models.BusinessState{
		Inventory: []models.Product{rice, oil, lentils, soap, tea},
		Sales:     sales,
		Customers: []models.Customer{rina, karim},
		Expenses: []models.Expense{
			{ID: actions.NewID("exp-"), Date: day(2).Format(time.DateOnly), Description: "Electricity bill", Category: "Utilities", Amount: 1200},
			{ID: actions.NewID("exp-"), Date: day(5).Format(time.DateOnly), Description: "Shop rent", Category: "Rent", Amount: 8000},
		},
	}
}

func sale(at time.Time, customer string, items ...models.SaleItem) models.Sale {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return models.Sale{
		ID:           actions.NewID("sale-"),
		Date:         at.Format(time.RFC3339),
		CustomerName: customer,
		Items:        items,
		TotalAmount:  total,
	}
}
