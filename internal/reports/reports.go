// Package reports computes the dashboard and report figures from a business
// state snapshot. Money is summed with decimal arithmetic and rounded to
// cents on the way out.
package reports

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"go-myshop-agent/internal/models"
)

// LowStockThreshold is the quantity below which a product counts as low.
const LowStockThreshold = 10

const (
	topSellingLimit  = 5
	recentSalesLimit = 10
)

type LowStockItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type TopProduct struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Sold        int     `json:"sold"`
	Revenue     float64 `json:"revenue"`
}

// Summary is the whole-shop overview.
type Summary struct {
	TotalRevenue   float64        `json:"total_revenue"`
	TotalExpenses  float64        `json:"total_expenses"`
	NetProfit      float64        `json:"net_profit"`
	TotalOrders    int            `json:"total_orders"`
	InventoryValue float64        `json:"inventory_value"` // price x quantity
	StockCost      float64        `json:"stock_cost"`      // cost x quantity
	UnitsInStock   int            `json:"units_in_stock"`
	ProductCount   int            `json:"product_count"`
	CustomerCount  int            `json:"customer_count"`
	Categories     []string       `json:"categories"`
	LowStock       []LowStockItem `json:"low_stock"`
	TopSelling     []TopProduct   `json:"top_selling"`
	RecentSales    []models.Sale  `json:"recent_sales"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func Summarize(state models.BusinessState) Summary {
	revenue := decimal.Zero
	for _, s := range state.Sales {
		revenue = revenue.Add(decimal.NewFromFloat(s.TotalAmount))
	}
	expenses := decimal.Zero
	for _, e := range state.Expenses {
		expenses = expenses.Add(decimal.NewFromFloat(e.Amount))
	}

	value, cost := decimal.Zero, decimal.Zero
	units := 0
	categories := []string{}
	lowStock := []LowStockItem{}
	for _, p := range state.Inventory {
		qty := decimal.NewFromInt(int64(p.Quantity))
		value = value.Add(decimal.NewFromFloat(p.Price).Mul(qty))
		cost = cost.Add(decimal.NewFromFloat(p.Cost).Mul(qty))
		units += p.Quantity
		for _, c := range p.Categories {
			if !slices.Contains(categories, c) {
				categories = append(categories, c)
			}
		}
		if p.Quantity < LowStockThreshold {
			lowStock = append(lowStock, LowStockItem{ID: p.ID, Name: p.Name, Quantity: p.Quantity})
		}
	}
	slices.Sort(categories)

	return Summary{
		TotalRevenue:   money(revenue),
		TotalExpenses:  money(expenses),
		NetProfit:      money(revenue.Sub(expenses)),
		TotalOrders:    len(state.Sales),
		InventoryValue: money(value),
		StockCost:      money(cost),
		UnitsInStock:   units,
		ProductCount:   len(state.Inventory),
		CustomerCount:  len(state.Customers),
		Categories:     categories,
		LowStock:       lowStock,
		TopSelling:     TopSelling(state, topSellingLimit),
		RecentSales:    RecentSales(state.Sales, recentSalesLimit),
	}
}

// TopSelling ranks products by units sold. Products no longer in inventory
// are reported by id.
func TopSelling(state models.BusinessState, limit int) []TopProduct {
	names := make(map[string]string, len(state.Inventory))
	for _, p := range state.Inventory {
		names[p.ID] = p.Name
	}

	type tally struct {
		sold    int
		revenue decimal.Decimal
	}
	byProduct := map[string]*tally{}
	for _, s := range state.Sales {
		for _, it := range s.Items {
			t, ok := byProduct[it.ProductID]
			if !ok {
				t = &tally{revenue: decimal.Zero}
				byProduct[it.ProductID] = t
			}
			t.sold += it.Quantity
			t.revenue = t.revenue.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}

	out := make([]TopProduct, 0, len(byProduct))
	for id, t := range byProduct {
		name := names[id]
		if name == "" {
			name = id
		}
		out = append(out, TopProduct{ProductID: id, ProductName: name, Sold: t.sold, Revenue: money(t.revenue)})
	}
	slices.SortFunc(out, func(a, b TopProduct) int {
		if c := cmp.Compare(b.Sold, a.Sold); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductName, b.ProductName)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RecentSales returns up to limit sales, newest first. Sales with an
// unreadable date sort last.
func RecentSales(sales []models.Sale, limit int) []models.Sale {
	out := slices.Clone(sales)
	if out == nil {
		out = []models.Sale{}
	}
	slices.SortStableFunc(out, func(a, b models.Sale) int {
		ta, okA := ParseDate(a.Date)
		tb, okB := ParseDate(b.Date)
		switch {
		case okA && okB:
			return tb.Compare(ta)
		case okA:
			return -1
		case okB:
			return 1
		}
		return 0
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SalesReport is revenue and order count over a period.
type SalesReport struct {
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	TotalRevenue float64   `json:"total_revenue"`
	TotalCount   int       `json:"total_count"`
}

// SalesBetween sums the sales dated within [from, to]. Sales whose date
// cannot be parsed are left out.
func SalesBetween(state models.BusinessState, from, to time.Time) SalesReport {
	report := SalesReport{From: from, To: to}
	revenue := decimal.Zero
	for _, s := range state.Sales {
		at, ok := ParseDate(s.Date)
		if !ok || at.Before(from) || at.After(to) {
			continue
		}
		revenue = revenue.Add(decimal.NewFromFloat(s.TotalAmount))
		report.TotalCount++
	}
	report.TotalRevenue = money(revenue)
	return report
}

// ParseDate accepts the RFC 3339 timestamps of sales and the plain dates of
// expenses.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
