// Package gate decides whether an identity talks to the remote store at all.
package gate

import "go-myshop-agent/internal/models"

// Remote reports the owner id to scope remote calls with. ok is false for
// guests, for a nil identity and for an account without an id; callers must
// then keep every change local.
func Remote(id models.Identity) (ownerID string, ok bool) {
	switch v := id.(type) {
	case models.Authenticated:
		if v.ID == "" {
			return "", false
		}
		return v.ID, true
	case *models.Authenticated:
		if v == nil || v.ID == "" {
			return "", false
		}
		return v.ID, true
	default:
		return "", false
	}
}

// IsGuest is true for anything that is not a usable account.
func IsGuest(id models.Identity) bool {
	_, ok := Remote(id)
	return !ok
}
