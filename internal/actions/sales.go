package actions

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"go-myshop-agent/internal/models"
)

// WalkInCustomer names a sale entered without a customer.
const WalkInCustomer = "Walk-in Customer"

type SaleLine struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type SaleInput struct {
	CustomerName  string     `json:"customerName" validate:"max=120"`
	CustomerPhone string     `json:"customerPhone" validate:"max=32"`
	Items         []SaleLine `json:"items" validate:"required,min=1,dive"`
}

// RecordSale sells the lines at today's prices. It fails without changing
// anything when a product is unknown or short on stock. The sold quantities
// leave inventory, and a customer given by phone is found or created and
// credited with the total.
func RecordSale(state models.BusinessState, in SaleInput, region string) (models.BusinessState, models.Sale, error) {
	if err := check(in); err != nil {
		return state, models.Sale{}, err
	}

	inventory := slices.Clone(state.Inventory)
	items := make([]models.SaleItem, 0, len(in.Items))
	total := decimal.Zero
	for _, line := range in.Items {
		i := indexByID(inventory, line.ProductID)
		if i < 0 {
			return state, models.Sale{}, fmt.Errorf("product %s: %w", line.ProductID, ErrNotFound)
		}
		p := inventory[i]
		if p.Quantity < line.Quantity {
			return state, models.Sale{}, fmt.Errorf("%s has %d left, %d requested: %w", p.Name, p.Quantity, line.Quantity, ErrInsufficientStock)
		}
		p.Quantity -= line.Quantity
		inventory[i] = p

		items = append(items, models.SaleItem{ProductID: p.ID, Quantity: line.Quantity, Price: p.Price})
		total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	sale := models.Sale{
		ID:           NewID("sale-"),
		Date:         now().UTC().Format(time.RFC3339),
		CustomerName: strings.TrimSpace(in.CustomerName),
		Items:        items,
		TotalAmount:  total.Round(2).InexactFloat64(),
	}

	if phone := NormalizePhone(in.CustomerPhone, region); phone != "" {
		if i := findByPhone(state.Customers, phone, region); i >= 0 {
			c := state.Customers[i]
			c.TotalSpent = decimal.NewFromFloat(c.TotalSpent).Add(total).Round(2).InexactFloat64()
			if sale.CustomerName == "" {
				sale.CustomerName = c.Name
			}
			state.Customers = replaceAt(state.Customers, i, c)
		} else {
			name := sale.CustomerName
			if name == "" {
				name = WalkInCustomer
			}
			c := models.Customer{ID: NewID("cust-"), Name: name, Phone: phone, TotalSpent: sale.TotalAmount}
			state.Customers = append(state.Customers[:len(state.Customers):len(state.Customers)], c)
		}
	}
	if sale.CustomerName == "" {
		sale.CustomerName = WalkInCustomer
	}

	state.Inventory = inventory
	state.Sales = prepend(state.Sales, sale)
	return state, sale, nil
}

// DeleteSale drops the record only; stock is not returned.
func DeleteSale(state models.BusinessState, id string) (models.BusinessState, error) {
	sales, err := without(state.Sales, id)
	if err != nil {
		return state, fmt.Errorf("sale %s: %w", id, err)
	}
	state.Sales = sales
	return state, nil
}
