package actions

import (
	"fmt"
	"slices"
	"strings"

	"go-myshop-agent/internal/models"
)

var categorySuggestions = []string{
	"Rent", "Utilities", "Salaries", "Supplies", "Marketing", "Maintenance", "Taxes", "Others",
}

// CategorySuggestions lists the expense categories offered by default.
func CategorySuggestions() []string {
	return slices.Clone(categorySuggestions)
}

type ExpenseInput struct {
	Date        string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description string  `json:"description" validate:"required,max=200"`
	Category    string  `json:"category" validate:"required,max=40"`
	Amount      float64 `json:"amount" validate:"gt=0"`
}

func (in ExpenseInput) apply(e models.Expense) models.Expense {
	e.Date = in.Date
	if e.Date == "" {
		e.Date = today()
	}
	e.Description = strings.TrimSpace(in.Description)
	e.Category = strings.TrimSpace(in.Category)
	e.Amount = in.Amount
	return e
}

// AddExpense puts the new expense first, matching the newest-first order the
// store returns.
func AddExpense(state models.BusinessState, in ExpenseInput) (models.BusinessState, models.Expense, error) {
	if err := check(in); err != nil {
		return state, models.Expense{}, err
	}
	e := in.apply(models.Expense{ID: NewID("exp-")})
	state.Expenses = prepend(state.Expenses, e)
	return state, e, nil
}

func UpdateExpense(state models.BusinessState, id string, in ExpenseInput) (models.BusinessState, models.Expense, error) {
	if err := check(in); err != nil {
		return state, models.Expense{}, err
	}
	i := indexByID(state.Expenses, id)
	if i < 0 {
		return state, models.Expense{}, fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	e := in.apply(state.Expenses[i])
	state.Expenses = replaceAt(state.Expenses, i, e)
	return state, e, nil
}

func DeleteExpense(state models.BusinessState, id string) (models.BusinessState, error) {
	es, err := without(state.Expenses, id)
	if err != nil {
		return state, fmt.Errorf("expense %s: %w", id, err)
	}
	state.Expenses = es
	return state, nil
}
