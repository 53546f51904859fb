package actions

import (
	"fmt"
	"strings"

	"go-myshop-agent/internal/models"
)

type ProductInput struct {
	Name       string   `json:"name" validate:"required,max=120"`
	SKU        string   `json:"sku" validate:"max=64"`
	Price      float64  `json:"price"`
	Cost       float64  `json:"cost"`
	Quantity   int      `json:"quantity"`
	Categories []string `json:"categories" validate:"max=10,dive,max=40"`
	Image      string   `json:"image"`
}

// DefaultCategory is used when a product is saved without one.
const DefaultCategory = "General"

func (in ProductInput) apply(p models.Product) models.Product {
	p.Name = strings.TrimSpace(in.Name)
	p.SKU = strings.ToUpper(strings.TrimSpace(in.SKU))
	if p.SKU == "" {
		p.SKU = generateSKU()
	}
	p.Price = clamp(in.Price)
	p.Cost = clamp(in.Cost)
	p.Quantity = clampInt(in.Quantity)
	p.Categories = cleanList(in.Categories)
	if len(p.Categories) == 0 {
		p.Categories = []string{DefaultCategory}
	}
	p.Image = in.Image
	return p
}

func AddProduct(state models.BusinessState, in ProductInput) (models.BusinessState, models.Product, error) {
	if err := check(in); err != nil {
		return state, models.Product{}, err
	}
	p := in.apply(models.Product{ID: NewID("")})
	state.Inventory = append(state.Inventory[:len(state.Inventory):len(state.Inventory)], p)
	return state, p, nil
}

func UpdateProduct(state models.BusinessState, id string, in ProductInput) (models.BusinessState, models.Product, error) {
	if err := check(in); err != nil {
		return state, models.Product{}, err
	}
	i := indexByID(state.Inventory, id)
	if i < 0 {
		return state, models.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	p := in.apply(state.Inventory[i])
	state.Inventory = replaceAt(state.Inventory, i, p)
	return state, p, nil
}

func DeleteProduct(state models.BusinessState, id string) (models.BusinessState, error) {
	inv, err := without(state.Inventory, id)
	if err != nil {
		return state, fmt.Errorf("product %s: %w", id, err)
	}
	state.Inventory = inv
	return state, nil
}
