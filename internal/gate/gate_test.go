package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-myshop-agent/internal/models"
)

func TestRemote(t *testing.T) {
	tests := []struct {
		name   string
		id     models.Identity
		owner  string
		remote bool
	}{
		{"account", models.Authenticated{ID: "u1", Email: "a@b.c"}, "u1", true},
		{"account pointer", &models.Authenticated{ID: "u2"}, "u2", true},
		{"account without id", models.Authenticated{}, "", false},
		{"nil account pointer", (*models.Authenticated)(nil), "", false},
		{"guest", models.Guest{SessionID: "g1"}, "", false},
		{"no identity", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, ok := Remote(tt.id)
			assert.Equal(t, tt.remote, ok)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, !tt.remote, IsGuest(tt.id))
		})
	}
}
