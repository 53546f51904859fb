package actions

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-myshop-agent/internal/models"
)

func fixedClock(t *testing.T) {
	t.Helper()
	old := now
	now = func() time.Time { return time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { now = old })
}

func shop() models.BusinessState {
	return models.BusinessState{
		Inventory: []models.Product{
			{ID: "p1", Name: "Rice", SKU: "SKU-1", Price: 50, Cost: 40, Quantity: 10, Categories: []string{"Food"}},
			{ID: "p2", Name: "Oil", SKU: "SKU-2", Price: 180.5, Cost: 160, Quantity: 3, Categories: []string{"Food"}},
		},
		Sales: []models.Sale{},
		Customers: []models.Customer{
			{ID: "c1", Name: "Rina", Phone: "+8801712345678", TotalSpent: 100},
		},
		Expenses: []models.Expense{},
	}
}

func sameBacking[T any](a, b []T) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}

func TestAddProduct_DefaultsAndClamps(t *testing.T) {
	prev := shop()

	next, p, err := AddProduct(prev, ProductInput{Name: "  Sugar ", SKU: "sku-9", Price: -5, Cost: 20, Quantity: -1})
	require.NoError(t, err)

	assert.Equal(t, "Sugar", p.Name)
	assert.Equal(t, "SKU-9", p.SKU)
	assert.Equal(t, 0.0, p.Price)
	assert.Equal(t, 0, p.Quantity)
	assert.Equal(t, []string{DefaultCategory}, p.Categories)
	assert.NotEmpty(t, p.ID)

	assert.Len(t, next.Inventory, 3)
	assert.Len(t, prev.Inventory, 2, "input state untouched")
	assert.False(t, sameBacking(prev.Inventory, next.Inventory))
	assert.True(t, sameBacking(prev.Customers, next.Customers), "other collections keep their slice")
}

func TestAddProduct_GeneratesSKU(t *testing.T) {
	_, p, err := AddProduct(models.EmptyState(), ProductInput{Name: "Salt", Categories: []string{" Spice ", "", "Spice"}})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(p.SKU, "SKU-"))
	assert.Equal(t, []string{"Spice"}, p.Categories)
}

func TestAddProduct_Invalid(t *testing.T) {
	_, _, err := AddProduct(shop(), ProductInput{})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, map[string]string{"Name": "required"}, FieldErrors(err))
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	prev := shop()

	next, p, err := UpdateProduct(prev, "p2", ProductInput{Name: "Soybean Oil", SKU: "SKU-2", Price: 190, Cost: 160, Quantity: 3, Categories: []string{"Food"}})
	require.NoError(t, err)
	assert.Equal(t, "p2", p.ID)
	assert.Equal(t, 190.0, next.Inventory[1].Price)
	assert.Equal(t, 180.5, prev.Inventory[1].Price)

	next, err = DeleteProduct(next, "p1")
	require.NoError(t, err)
	require.Len(t, next.Inventory, 1)
	assert.Equal(t, "p2", next.Inventory[0].ID)

	_, err = DeleteProduct(next, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = UpdateProduct(next, "nope", ProductInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordSale_ExistingCustomer(t *testing.T) {
	fixedClock(t)
	prev := shop()

	next, sale, err := RecordSale(prev, SaleInput{
		CustomerPhone: "01712-345678",
		Items:         []SaleLine{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}},
	}, "BD")
	require.NoError(t, err)

	assert.Equal(t, 280.5, sale.TotalAmount)
	assert.Equal(t, "Rina", sale.CustomerName)
	assert.Equal(t, "2024-05-17T09:30:00Z", sale.Date)
	assert.True(t, strings.HasPrefix(sale.ID, "sale-"))
	assert.Equal(t, []models.SaleItem{{ProductID: "p1", Quantity: 2, Price: 50}, {ProductID: "p2", Quantity: 1, Price: 180.5}}, sale.Items)

	assert.Equal(t, 8, next.Inventory[0].Quantity)
	assert.Equal(t, 2, next.Inventory[1].Quantity)
	assert.Equal(t, 10, prev.Inventory[0].Quantity, "previous state untouched")

	require.Len(t, next.Customers, 1)
	assert.Equal(t, 380.5, next.Customers[0].TotalSpent)
	assert.Equal(t, sale.ID, next.Sales[0].ID)
}

func TestRecordSale_NewCustomer(t *testing.T) {
	next, sale, err := RecordSale(shop(), SaleInput{
		CustomerName:  "Karim",
		CustomerPhone: "01811111111",
		Items:         []SaleLine{{ProductID: "p1", Quantity: 1}},
	}, "BD")
	require.NoError(t, err)

	require.Len(t, next.Customers, 2)
	c := next.Customers[1]
	assert.Equal(t, "Karim", c.Name)
	assert.Equal(t, "+8801811111111", c.Phone)
	assert.Equal(t, 50.0, c.TotalSpent)
	assert.True(t, strings.HasPrefix(c.ID, "cust-"))
	assert.Equal(t, "Karim", sale.CustomerName)
}

func TestRecordSale_WalkIn(t *testing.T) {
	prev := shop()
	next, sale, err := RecordSale(prev, SaleInput{Items: []SaleLine{{ProductID: "p1", Quantity: 1}}}, "BD")
	require.NoError(t, err)

	assert.Equal(t, WalkInCustomer, sale.CustomerName)
	assert.True(t, sameBacking(prev.Customers, next.Customers), "customers untouched")
}

func TestRecordSale_Rejects(t *testing.T) {
	prev := shop()

	_, _, err := RecordSale(prev, SaleInput{Items: []SaleLine{{ProductID: "p2", Quantity: 2}, {ProductID: "p2", Quantity: 2}}}, "BD")
	assert.ErrorIs(t, err, ErrInsufficientStock, "lines for one product add up")

	_, _, err = RecordSale(prev, SaleInput{Items: []SaleLine{{ProductID: "ghost", Quantity: 1}}}, "BD")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = RecordSale(prev, SaleInput{}, "BD")
	assert.ErrorIs(t, err, ErrInvalid)

	assert.Equal(t, 3, prev.Inventory[1].Quantity)
}

func TestDeleteSale(t *testing.T) {
	state, sale, err := RecordSale(shop(), SaleInput{Items: []SaleLine{{ProductID: "p1", Quantity: 1}}}, "BD")
	require.NoError(t, err)

	next, err := DeleteSale(state, sale.ID)
	require.NoError(t, err)
	assert.Empty(t, next.Sales)
	assert.Equal(t, 9, next.Inventory[0].Quantity)
}

func TestCustomers(t *testing.T) {
	prev := shop()

	next, c, err := AddCustomer(prev, CustomerInput{Name: "Karim", Phone: "01811 111 111", Email: "karim@shop.test"}, "BD")
	require.NoError(t, err)
	assert.Equal(t, "+8801811111111", c.Phone)
	assert.Zero(t, c.TotalSpent)

	_, _, err = AddCustomer(next, CustomerInput{Name: "Other", Phone: "+8801811111111"}, "BD")
	assert.ErrorIs(t, err, ErrDuplicatePhone)

	_, _, err = AddCustomer(next, CustomerInput{Name: "Bad", Phone: "1", Email: "not-an-email"}, "BD")
	assert.ErrorIs(t, err, ErrInvalid)

	next, c, err = UpdateCustomer(next, "c1", CustomerInput{Name: "Rina Das", Phone: "+8801712345678"}, "BD")
	require.NoError(t, err)
	assert.Equal(t, 100.0, c.TotalSpent, "spent is kept")

	_, _, err = UpdateCustomer(next, "c1", CustomerInput{Name: "Rina", Phone: "01811111111"}, "BD")
	assert.ErrorIs(t, err, ErrDuplicatePhone)

	next, err = DeleteCustomer(next, "c1")
	require.NoError(t, err)
	assert.Len(t, next.Customers, 1)
	assert.Len(t, prev.Customers, 1)
}

func TestExpenses(t *testing.T) {
	fixedClock(t)
	prev := shop()

	next, e, err := AddExpense(prev, ExpenseInput{Description: "Shop rent", Category: "Rent", Amount: 5000})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-17", e.Date)
	assert.True(t, strings.HasPrefix(e.ID, "exp-"))

	next, second, err := AddExpense(next, ExpenseInput{Date: "2024-05-18", Description: "Power", Category: "Utilities", Amount: 800})
	require.NoError(t, err)
	assert.Equal(t, second.ID, next.Expenses[0].ID, "newest first")

	_, _, err = AddExpense(next, ExpenseInput{Date: "18/05/2024", Description: "x", Category: "y", Amount: 1})
	assert.ErrorIs(t, err, ErrInvalid)
	_, _, err = AddExpense(next, ExpenseInput{Description: "x", Category: "y", Amount: 0})
	assert.ErrorIs(t, err, ErrInvalid)

	next, e, err = UpdateExpense(next, e.ID, ExpenseInput{Date: "2024-05-01", Description: "Shop rent", Category: "Rent", Amount: 5500})
	require.NoError(t, err)
	assert.Equal(t, 5500.0, e.Amount)

	next, err = DeleteExpense(next, second.ID)
	require.NoError(t, err)
	assert.Len(t, next.Expenses, 1)
}

func TestCategorySuggestions(t *testing.T) {
	s := CategorySuggestions()
	assert.Equal(t, []string{"Rent", "Utilities", "Salaries", "Supplies", "Marketing", "Maintenance", "Taxes", "Others"}, s)

	s[0] = "changed"
	assert.Equal(t, "Rent", CategorySuggestions()[0])
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+8801712345678", NormalizePhone("01712-345678", "BD"))
	assert.Equal(t, "+8801712345678", NormalizePhone("+880 1712 345678", "BD"))
	assert.Equal(t, "12345", NormalizePhone(" 12-345 ", "BD"))
	assert.Equal(t, "", NormalizePhone("  ", "BD"))
}

func TestValidateState(t *testing.T) {
	require.NoError(t, ValidateState(shop()))
	require.NoError(t, ValidateState(models.BusinessState{}), "missing collections")

	tests := []struct {
		name  string
		state models.BusinessState
		field string
	}{
		{"empty id", models.BusinessState{Inventory: []models.Product{{ID: "good"}, {ID: ""}}}, "Inventory[1].ID"},
		{"duplicate id", models.BusinessState{Customers: []models.Customer{{ID: "c1"}, {ID: "c1"}}}, "Customers"},
		{"negative quantity", models.BusinessState{Inventory: []models.Product{{ID: "p1", Quantity: -1}}}, "Inventory[0].Quantity"},
		{"negative sale line", models.BusinessState{Sales: []models.Sale{{ID: "s1", Items: []models.SaleItem{{ProductID: "p1", Quantity: -2}}}}}, "Sales[0].Items[0].Quantity"},
		{"negative expense", models.BusinessState{Expenses: []models.Expense{{ID: "e1", Amount: -5}}}, "Expenses[0].Amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateState(tt.state)
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, FieldErrors(err), tt.field)
		})
	}
}
