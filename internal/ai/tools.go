package ai

import (
	"encoding/json"
	"time"

	"github.com/google/generative-ai-go/genai"

	"go-myshop-agent/internal/models"
	"go-myshop-agent/internal/reports"
)

const (
	toolCheckInventory = "check_inventory"
	toolSalesReport    = "get_sales_report"
	toolTopProducts    = "get_top_products"
)

var tools = []*genai.Tool{
	{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        toolCheckInventory,
				Description: "Get the full inventory list. Use this to find ANY product details like ID, Name, SKU, Price, Cost, Stock or Categories.",
			},
			{
				Name:        toolSalesReport,
				Description: "Get total sales revenue and number of sales for a date range.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
						"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD), inclusive"},
					},
					Required: []string{"start_date", "end_date"},
				},
			},
			{
				Name:        toolTopProducts,
				Description: "Get the best selling products by units sold.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"limit": {Type: genai.TypeInteger, Description: "How many products to return (default 5)"},
					},
				},
			},
		},
	},
}

type inventoryItem struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	SKU        string   `json:"sku"`
	Stock      int      `json:"stock"`
	Price      float64  `json:"price"`
	Cost       float64  `json:"cost"`
	Categories []string `json:"categories"`
}

// answerTool runs one function call against the snapshot. Tools only read;
// changes go through the regular actions.
func answerTool(call genai.FunctionCall, state models.BusinessState) genai.FunctionResponse {
	resp := genai.FunctionResponse{Name: call.Name}

	switch call.Name {
	case toolCheckInventory:
		items := make([]inventoryItem, 0, len(state.Inventory))
		for _, p := range state.Inventory {
			items = append(items, inventoryItem{ID: p.ID, Name: p.Name, SKU: p.SKU, Stock: p.Quantity, Price: p.Price, Cost: p.Cost, Categories: p.Categories})
		}
		jsonBytes, _ := json.Marshal(items)
		resp.Response = map[string]any{"inventory": string(jsonBytes)}

	case toolSalesReport:
		startStr, _ := call.Args["start_date"].(string)
		endStr, _ := call.Args["end_date"].(string)
		start, err1 := time.Parse(time.DateOnly, startStr)
		end, err2 := time.Parse(time.DateOnly, endStr)
		if err1 != nil || err2 != nil {
			resp.Response = map[string]any{"error": "Dates must be in YYYY-MM-DD format."}
			break
		}
		report := reports.SalesBetween(state, start, end.Add(24*time.Hour-time.Nanosecond))
		resp.Response = map[string]any{
			"revenue":     report.TotalRevenue,
			"sales_count": report.TotalCount,
		}

	case toolTopProducts:
		limit := 5
		if v, ok := call.Args["limit"].(float64); ok && v >= 1 {
			limit = int(v)
		}
		top := reports.TopSelling(state, limit)
		jsonBytes, _ := json.Marshal(top)
		resp.Response = map[string]any{"products": string(jsonBytes)}

	default:
		resp.Response = map[string]any{"error": "unknown tool " + call.Name}
	}
	return resp
}
