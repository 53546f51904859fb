package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-myshop-agent/internal/actions"
	"go-myshop-agent/internal/models"
)

func (h *Handler) GetState(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.State())
}

// ReplaceState commits a whole business state sent by the client. A
// collection missing from the body is left as it is.
func (h *Handler) ReplaceState(c *gin.Context) {
	var body models.BusinessState
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := actions.ValidateState(body); err != nil {
		h.fail(c, err)
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	next, plan, err := s.Apply(c.Request.Context(), func(prev models.BusinessState) (models.BusinessState, error) {
		if body.Inventory == nil {
			body.Inventory = prev.Inventory
		}
		if body.Sales == nil {
			body.Sales = prev.Sales
		}
		if body.Customers == nil {
			body.Customers = prev.Customers
		}
		if body.Expenses == nil {
			body.Expenses = prev.Expenses
		}
		return body, nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": next, "remote_ops": len(plan.Ops)})
}

func (h *Handler) RefreshState(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	state, err := s.Refresh(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) SyncStatus(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.SyncStatus())
}

func (h *Handler) LoadDemo(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	state, err := s.LoadDemo(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) ClearData(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.ClearData(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All data cleared"})
}

func (h *Handler) GetProfile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Profile())
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var body models.Profile
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	p, err := s.UpdateProfile(c.Request.Context(), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
