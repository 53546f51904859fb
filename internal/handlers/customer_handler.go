package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-myshop-agent/internal/actions"
	"go-myshop-agent/internal/models"
)

func (h *Handler) GetCustomers(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.State().Customers)
}

func (h *Handler) AddCustomer(c *gin.Context) {
	var input actions.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	h.mutate(c, http.StatusCreated, func(st models.BusinessState) (models.BusinessState, any, error) {
		return actions.AddCustomer(st, input, h.PhoneRegion)
	})
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	var input actions.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	id := c.Param("id")
	h.mutate(c, http.StatusOK, func(st models.BusinessState) (models.BusinessState, any, error) {
		return actions.UpdateCustomer(st, id, input, h.PhoneRegion)
	})
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	id := c.Param("id")
	h.mutate(c, http.StatusOK, func(st models.BusinessState) (models.BusinessState, any, error) {
		next, err := actions.DeleteCustomer(st, id)
		return next, deleted("Customer"), err
	})
}
