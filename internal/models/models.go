package models

import (
	"slices"
	"time"
)

// Product - The Inventory
type Product struct {
	ID         string   `json:"id" validate:"required"`
	Name       string   `json:"name"`
	SKU        string   `json:"sku"`
	Price      float64  `json:"price" validate:"gte=0"`
	Cost       float64  `json:"cost" validate:"gte=0"`
	Quantity   int      `json:"quantity" validate:"gte=0"`
	Categories []string `json:"categories"`
	Image      string   `json:"image,omitempty"` // data URI or URL
}

// SaleItem - Snapshot of a product at the time of sale, never a live reference
type SaleItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity" validate:"gte=0"`
	Price     float64 `json:"price" validate:"gte=0"`
}

// Sale - The Transaction
type Sale struct {
	ID           string     `json:"id" validate:"required"`
	Date         string     `json:"date"` // ISO date
	CustomerName string     `json:"customerName"`
	Items        []SaleItem `json:"items" validate:"dive"`
	TotalAmount  float64    `json:"totalAmount" validate:"gte=0"`
}

// Customer - Phone is the natural key used when a sale is entered
type Customer struct {
	ID         string  `json:"id" validate:"required"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email,omitempty"`
	TotalSpent float64 `json:"totalSpent" validate:"gte=0"`
}

type Expense struct {
	ID          string  `json:"id" validate:"required"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

// BusinessState is the whole shop as one value. It is replaced wholesale on
// every change and diffed collection by collection.
type BusinessState struct {
	Inventory []Product  `json:"inventory" validate:"unique=ID,dive"`
	Sales     []Sale     `json:"sales" validate:"unique=ID,dive"`
	Customers []Customer `json:"customers" validate:"unique=ID,dive"`
	Expenses  []Expense  `json:"expenses" validate:"unique=ID,dive"`
}

// EmptyState returns a state with non-nil empty collections.
func EmptyState() BusinessState {
	return BusinessState{
		Inventory: []Product{},
		Sales:     []Sale{},
		Customers: []Customer{},
		Expenses:  []Expense{},
	}
}

// Profile - Per-owner shop settings
type Profile struct {
	BusinessName   string `json:"businessName"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

const DefaultBusinessName = "My Shop"

// User - An account of the email/password auth provider
type User struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `json:"-"` // Never return this in JSON
	CreatedAt    time.Time `json:"created_at"`
}

func (p Product) Key() string  { return p.ID }
func (s Sale) Key() string     { return s.ID }
func (c Customer) Key() string { return c.ID }
func (e Expense) Key() string  { return e.ID }

// Equal compares field by field; nil and empty category lists are equal.
func (p Product) Equal(o Product) bool {
	return p.ID == o.ID &&
		p.Name == o.Name &&
		p.SKU == o.SKU &&
		p.Price == o.Price &&
		p.Cost == o.Cost &&
		p.Quantity == o.Quantity &&
		slices.Equal(p.Categories, o.Categories) &&
		p.Image == o.Image
}

func (s Sale) Equal(o Sale) bool {
	return s.ID == o.ID &&
		s.Date == o.Date &&
		s.CustomerName == o.CustomerName &&
		slices.Equal(s.Items, o.Items) &&
		s.TotalAmount == o.TotalAmount
}

func (c Customer) Equal(o Customer) bool {
	return c == o
}

func (e Expense) Equal(o Expense) bool {
	return e == o
}

// PrimaryCategory is the first category or "".
func (p Product) PrimaryCategory() string {
	if len(p.Categories) == 0 {
		return ""
	}
	return p.Categories[0]
}
