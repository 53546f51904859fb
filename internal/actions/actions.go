// Package actions turns user intents into the next business state.
//
// Every function takes the current state by value and returns a new one in
// which each changed collection is a freshly allocated slice. Unchanged
// collections keep their slice, so the reconciler skips them.
package actions

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"go-myshop-agent/internal/models"
)

var (
	ErrInvalid           = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicatePhone    = errors.New("a customer with this phone already exists")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// now is the clock used for default dates.
var now = time.Now

func check(in any) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// FieldErrors lists the failed validation tag per field, or nil when err
// carries no validation errors.
func FieldErrors(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		// "ProductInput.Name" -> "Name", "BusinessState.Inventory[1].ID" -> "Inventory[1].ID"
		_, field, ok := strings.Cut(fe.Namespace(), ".")
		if !ok {
			field = fe.Field()
		}
		out[field] = fe.Tag()
	}
	return out
}

// NewID returns a time-ordered id with the given prefix.
func NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + id.String()
}

func generateSKU() string {
	return fmt.Sprintf("SKU-%d", rand.IntN(10000))
}

func today() string {
	return now().Format(time.DateOnly)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampInt(v int) int {
	return max(v, 0)
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func indexByID[T interface{ Key() string }](items []T, id string) int {
	return slices.IndexFunc(items, func(it T) bool { return it.Key() == id })
}

// replaceAt returns a copy of items with items[i] set to v.
func replaceAt[T any](items []T, i int, v T) []T {
	out := slices.Clone(items)
	out[i] = v
	return out
}

// without returns a copy of items minus the element with the given id.
func without[T interface{ Key() string }](items []T, id string) ([]T, error) {
	i := indexByID(items, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), nil
}

// prepend returns a new slice with v first.
func prepend[T any](items []T, v T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, v)
	return append(out, items...)
}

// ValidateState checks a whole state sent by a client: every record has an
// id, ids are unique per collection and no amount or quantity is negative.
func ValidateState(state models.BusinessState) error {
	return check(state)
}
