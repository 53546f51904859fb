package reports

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"go-myshop-agent/internal/models"
)

// Sheet names of the exported workbook.
const (
	SheetSummary   = "Summary"
	SheetInventory = "Inventory"
	SheetSales     = "Sales"
	SheetCustomers = "Customers"
	SheetExpenses  = "Expenses"
)

// ExportWorkbook writes an xlsx workbook with a summary sheet and one sheet
// per collection.
func ExportWorkbook(w io.Writer, state models.BusinessState, profile models.Profile) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetInventory, SheetSales, SheetCustomers, SheetExpenses} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	sum := Summarize(state)
	summary := [][]any{
		{"Business", profile.BusinessName},
		{"Total Revenue", sum.TotalRevenue},
		{"Total Expenses", sum.TotalExpenses},
		{"Net Profit", sum.NetProfit},
		{"Orders", sum.TotalOrders},
		{"Inventory Value", sum.InventoryValue},
		{"Stock Cost", sum.StockCost},
		{"Customers", sum.CustomerCount},
	}
	if err := writeTable(f, SheetSummary, []string{"Metric", "Value"}, summary); err != nil {
		return err
	}

	var rows [][]any
	for _, p := range state.Inventory {
		rows = append(rows, []any{p.ID, p.Name, p.SKU, strings.Join(p.Categories, ", "), p.Price, p.Cost, p.Quantity})
	}
	if err := writeTable(f, SheetInventory, []string{"ID", "Name", "SKU", "Categories", "Price", "Cost", "Quantity"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, s := range state.Sales {
		units := 0
		for _, it := range s.Items {
			units += it.Quantity
		}
		rows = append(rows, []any{s.ID, s.Date, s.CustomerName, units, s.TotalAmount})
	}
	if err := writeTable(f, SheetSales, []string{"ID", "Date", "Customer", "Units", "Total"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, c := range state.Customers {
		rows = append(rows, []any{c.ID, c.Name, c.Phone, c.Email, c.TotalSpent})
	}
	if err := writeTable(f, SheetCustomers, []string{"ID", "Name", "Phone", "Email", "Total Spent"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, e := range state.Expenses {
		rows = append(rows, []any{e.ID, e.Date, e.Description, e.Category, e.Amount})
	}
	if err := writeTable(f, SheetExpenses, []string{"ID", "Date", "Description", "Category", "Amount"}, rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, headings []string, rows [][]any) error {
	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
