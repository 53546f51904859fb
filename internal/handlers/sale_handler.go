package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-myshop-agent/internal/actions"
	"go-myshop-agent/internal/models"
)

func (h *Handler) GetSales(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.State().Sales)
}

func (h *Handler) RecordSale(c *gin.Context) {
	var input actions.SaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	h.mutate(c, http.StatusCreated, func(st models.BusinessState) (models.BusinessState, any, error) {
		return actions.RecordSale(st, input, h.PhoneRegion)
	})
}

func (h *Handler) DeleteSale(c *gin.Context) {
	id := c.Param("id")
	h.mutate(c, http.StatusOK, func(st models.BusinessState) (models.BusinessState, any, error) {
		next, err := actions.DeleteSale(st, id)
		return next, deleted("Sale"), err
	})
}
