package ai

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-myshop-agent/internal/models"
	"go-myshop-agent/internal/reports"
)

// BuildPrompt renders the business context, the rules and the question as
// the first chat message.
func BuildPrompt(question string, state models.BusinessState, profile models.Profile, today time.Time) string {
	sum := reports.Summarize(state)

	lowStock := make([]string, 0, len(sum.LowStock))
	for _, it := range sum.LowStock {
		lowStock = append(lowStock, it.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SYSTEM: Today is %s. You are the business assistant of %q.\n\n", today.Format(time.DateOnly), profile.BusinessName)
	b.WriteString("Current Business Context:\n")
	fmt.Fprintf(&b, "Inventory Items: %d\n", sum.ProductCount)
	fmt.Fprintf(&b, "Total Inventory Value: %s\n", num(sum.InventoryValue))
	fmt.Fprintf(&b, "Total Sales Transactions: %d\n", sum.TotalOrders)
	fmt.Fprintf(&b, "Total Sales Revenue: %s\n", num(sum.TotalRevenue))
	fmt.Fprintf(&b, "Total Expenses: %s\n", num(sum.TotalExpenses))
	fmt.Fprintf(&b, "Customers: %d\n", sum.CustomerCount)
	fmt.Fprintf(&b, "Low Stock Items (Qty < %d): %s\n\n", reports.LowStockThreshold, strings.Join(lowStock, ", "))
	b.WriteString(`RULES:
1. Answer questions based on this data. Be helpful, concise and professional.
2. For the PRICE, COST or STOCK of a specific product call 'check_inventory' and read the item from it.
3. For revenue over a period call 'get_sales_report'. For best sellers call 'get_top_products'.
4. If asked in Bengali, answer in Bengali. If asked in English, answer in English.

`)
	fmt.Fprintf(&b, "USER: %s", question)
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
