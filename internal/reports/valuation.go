package reports

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"go-myshop-agent/internal/models"
)

// Uncategorized groups products without a category.
const Uncategorized = "Uncategorized"

// ValuationItem is one product line of the stock valuation.
type ValuationItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	CostPrice float64 `json:"cost_price"`
	TotalCost float64 `json:"total_cost"`
}

// CategoryGroup holds the products of one category.
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     float64         `json:"subtotal"`
}

type Valuation struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal float64         `json:"grand_total"`
}

// StockValuation values stock at cost, grouped by each product's first
// category. Groups are sorted by name, items keep inventory order.
func StockValuation(inventory []models.Product) Valuation {
	type group struct {
		items    []ValuationItem
		subtotal decimal.Decimal
	}
	grouped := map[string]*group{}
	grand := decimal.Zero

	for _, p := range inventory {
		name := p.PrimaryCategory()
		if name == "" {
			name = Uncategorized
		}
		g, ok := grouped[name]
		if !ok {
			g = &group{items: []ValuationItem{}, subtotal: decimal.Zero}
			grouped[name] = g
		}

		total := decimal.NewFromFloat(p.Cost).Mul(decimal.NewFromInt(int64(p.Quantity)))
		g.items = append(g.items, ValuationItem{
			Name:      p.Name,
			Quantity:  p.Quantity,
			CostPrice: p.Cost,
			TotalCost: money(total),
		})
		g.subtotal = g.subtotal.Add(total)
		grand = grand.Add(total)
	}

	v := Valuation{Categories: make([]CategoryGroup, 0, len(grouped)), GrandTotal: money(grand)}
	for name, g := range grouped {
		v.Categories = append(v.Categories, CategoryGroup{CategoryName: name, Items: g.items, Subtotal: money(g.subtotal)})
	}
	slices.SortFunc(v.Categories, func(a, b CategoryGroup) int {
		return cmp.Compare(a.CategoryName, b.CategoryName)
	})
	return v
}
