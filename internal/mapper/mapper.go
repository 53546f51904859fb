// Package mapper translates business entities to and from the rows of the
// remote store. Reads are forward compatible with every row layout an
// earlier version of this package wrote.
package mapper

import (
	"go-myshop-agent/internal/models"
	"go-myshop-agent/internal/store"
)

// legacyCategory is the single-category column of version 1 product rows.
// It is still written so older readers keep working.
const legacyCategory = "category"

// --- Product ---

func ProductToRow(p models.Product, ownerID string) store.Row {
	categories := p.Categories
	if categories == nil {
		categories = []string{}
	}
	fields := map[string]any{
		"id":                p.ID,
		"name":              p.Name,
		"sku":               p.SKU,
		"price":             p.Price,
		"cost":              p.Cost,
		"quantity":          p.Quantity,
		"categories":        categories,
		legacyCategory:      p.PrimaryCategory(),
		store.ColumnOwnerID: ownerID,
	}
	if p.Image != "" {
		fields["image"] = p.Image
	}
	return Schemas[store.Inventory].encode(fields)
}

func ProductFromRow(row store.Row) models.Product {
	s := Schemas[store.Inventory]
	return models.Product{
		ID:         s.text(row, "id"),
		Name:       s.text(row, "name"),
		SKU:        s.text(row, "sku"),
		Price:      s.number(row, "price"),
		Cost:       s.number(row, "cost"),
		Quantity:   s.whole(row, "quantity"),
		Categories: productCategories(s, row),
		Image:      s.text(row, "image"),
	}
}

// productCategories prefers the list column and lifts a legacy single
// category into a one-element list.
func productCategories(s Schema, row store.Row) []string {
	if v, ok := s.lookup(row, "categories"); ok {
		if list, ok := asList(v); ok {
			return nonEmptyStrings(list)
		}
	}
	if c := s.text(row, legacyCategory); c != "" {
		return []string{c}
	}
	return []string{}
}

// --- Sale ---

func SaleToRow(sale models.Sale, ownerID string) store.Row {
	items := make([]map[string]any, 0, len(sale.Items))
	for _, it := range sale.Items {
		items = append(items, map[string]any{
			"productId": it.ProductID,
			"quantity":  it.Quantity,
			"price":     it.Price,
		})
	}
	return Schemas[store.Sales].encode(map[string]any{
		"id":                sale.ID,
		"date":              sale.Date,
		"customerName":      sale.CustomerName,
		"items":             items,
		"totalAmount":       sale.TotalAmount,
		store.ColumnOwnerID: ownerID,
	})
}

func SaleFromRow(row store.Row) models.Sale {
	s := Schemas[store.Sales]
	return models.Sale{
		ID:           s.text(row, "id"),
		Date:         s.text(row, "date"),
		CustomerName: s.text(row, "customerName"),
		Items:        saleItems(s, row),
		TotalAmount:  s.number(row, "totalAmount"),
	}
}

// itemSchema reads line items, which older rows wrote in snake_case.
var itemSchema = Schema{Renames: map[string]string{"productId": "product_id"}}

func saleItems(s Schema, row store.Row) []models.SaleItem {
	items := []models.SaleItem{}
	v, ok := s.lookup(row, "items")
	if !ok {
		return items
	}
	list, ok := asList(v)
	if !ok {
		return items
	}
	for _, raw := range list {
		m, ok := asMap(raw)
		if !ok {
			continue
		}
		r := store.Row(m)
		items = append(items, models.SaleItem{
			ProductID: itemSchema.text(r, "productId"),
			Quantity:  itemSchema.whole(r, "quantity"),
			Price:     itemSchema.number(r, "price"),
		})
	}
	return items
}

// --- Customer ---

func CustomerToRow(c models.Customer, ownerID string) store.Row {
	return Schemas[store.Customers].encode(map[string]any{
		"id":                c.ID,
		"name":              c.Name,
		"phone":             c.Phone,
		"email":             c.Email,
		"totalSpent":        c.TotalSpent,
		store.ColumnOwnerID: ownerID,
	})
}

func CustomerFromRow(row store.Row) models.Customer {
	s := Schemas[store.Customers]
	return models.Customer{
		ID:         s.text(row, "id"),
		Name:       s.text(row, "name"),
		Phone:      s.text(row, "phone"),
		Email:      s.text(row, "email"),
		TotalSpent: s.number(row, "totalSpent"),
	}
}

// --- Expense ---

func ExpenseToRow(e models.Expense, ownerID string) store.Row {
	return Schemas[store.Expenses].encode(map[string]any{
		"id":                e.ID,
		"date":              e.Date,
		"description":       e.Description,
		"category":          e.Category,
		"amount":            e.Amount,
		store.ColumnOwnerID: ownerID,
	})
}

func ExpenseFromRow(row store.Row) models.Expense {
	s := Schemas[store.Expenses]
	return models.Expense{
		ID:          s.text(row, "id"),
		Date:        s.text(row, "date"),
		Description: s.text(row, "description"),
		Category:    s.text(row, "category"),
		Amount:      s.number(row, "amount"),
	}
}

// --- Profile ---

func ProfileToRow(p models.Profile, ownerID string) store.Row {
	return profileSchema.encode(map[string]any{
		"id":             ownerID,
		"businessName":   p.BusinessName,
		"profilePicture": p.ProfilePicture,
	})
}

// ProfileFromRow falls back to the default shop name for a nil or blank row.
func ProfileFromRow(row store.Row) models.Profile {
	p := models.Profile{
		BusinessName:   profileSchema.text(row, "businessName"),
		ProfilePicture: profileSchema.text(row, "profilePicture"),
	}
	if p.BusinessName == "" {
		p.BusinessName = models.DefaultBusinessName
	}
	return p
}

// --- Collections ---

// FromRows maps every fetched row; the result is never nil.
func FromRows[T any](rows []store.Row, from func(store.Row) T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, from(r))
	}
	return out
}

// ToRows maps entities for one batched gateway call.
func ToRows[T any](items []T, ownerID string, to func(T, string) store.Row) []store.Row {
	out := make([]store.Row, 0, len(items))
	for _, it := range items {
		out = append(out, to(it, ownerID))
	}
	return out
}

// StateToRows maps a whole business state, for bulk loads.
func StateToRows(state models.BusinessState, ownerID string) map[store.Collection][]store.Row {
	return map[store.Collection][]store.Row{
		store.Inventory: ToRows(state.Inventory, ownerID, ProductToRow),
		store.Sales:     ToRows(state.Sales, ownerID, SaleToRow),
		store.Customers: ToRows(state.Customers, ownerID, CustomerToRow),
		store.Expenses:  ToRows(state.Expenses, ownerID, ExpenseToRow),
	}
}
