package actions

import (
	"fmt"
	"strings"

	"go-myshop-agent/internal/models"
)

type CustomerInput struct {
	Name  string `json:"name" validate:"required,max=120"`
	Phone string `json:"phone" validate:"required,max=32"`
	Email string `json:"email" validate:"omitempty,email"`
}

// findByPhone returns the index of the customer whose phone normalizes to
// the same number, or -1.
func findByPhone(customers []models.Customer, phone, region string) int {
	if phone == "" {
		return -1
	}
	for i, c := range customers {
		if NormalizePhone(c.Phone, region) == phone {
			return i
		}
	}
	return -1
}

func AddCustomer(state models.BusinessState, in CustomerInput, region string) (models.BusinessState, models.Customer, error) {
	if err := check(in); err != nil {
		return state, models.Customer{}, err
	}
	phone := NormalizePhone(in.Phone, region)
	if findByPhone(state.Customers, phone, region) >= 0 {
		return state, models.Customer{}, ErrDuplicatePhone
	}
	c := models.Customer{
		ID:    NewID("cust-"),
		Name:  strings.TrimSpace(in.Name),
		Phone: phone,
		Email: strings.TrimSpace(in.Email),
	}
	state.Customers = append(state.Customers[:len(state.Customers):len(state.Customers)], c)
	return state, c, nil
}

// UpdateCustomer edits contact details; TotalSpent is only changed by sales.
func UpdateCustomer(state models.BusinessState, id string, in CustomerInput, region string) (models.BusinessState, models.Customer, error) {
	if err := check(in); err != nil {
		return state, models.Customer{}, err
	}
	i := indexByID(state.Customers, id)
	if i < 0 {
		return state, models.Customer{}, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	phone := NormalizePhone(in.Phone, region)
	if j := findByPhone(state.Customers, phone, region); j >= 0 && j != i {
		return state, models.Customer{}, ErrDuplicatePhone
	}
	c := state.Customers[i]
	c.Name = strings.TrimSpace(in.Name)
	c.Phone = phone
	c.Email = strings.TrimSpace(in.Email)
	state.Customers = replaceAt(state.Customers, i, c)
	return state, c, nil
}

func DeleteCustomer(state models.BusinessState, id string) (models.BusinessState, error) {
	cs, err := without(state.Customers, id)
	if err != nil {
		return state, fmt.Errorf("customer %s: %w", id, err)
	}
	state.Customers = cs
	return state, nil
}
