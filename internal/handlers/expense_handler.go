package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-myshop-agent/internal/actions"
	"go-myshop-agent/internal/models"
)

func (h *Handler) GetExpenses(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.State().Expenses)
}

func (h *Handler) GetExpenseCategories(c *gin.Context) {
	c.JSON(http.StatusOK, actions.CategorySuggestions())
}

func (h *Handler) AddExpense(c *gin.Context) {
	var input actions.ExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	h.mutate(c, http.StatusCreated, func(st models.BusinessState) (models.BusinessState, any, error) {
		return actions.AddExpense(st, input)
	})
}

func (h *Handler) UpdateExpense(c *gin.Context) {
	var input actions.ExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	id := c.Param("id")
	h.mutate(c, http.StatusOK, func(st models.BusinessState) (models.BusinessState, any, error) {
		return actions.UpdateExpense(st, id, input)
	})
}

func (h *Handler) DeleteExpense(c *gin.Context) {
	id := c.Param("id")
	h.mutate(c, http.StatusOK, func(st models.BusinessState) (models.BusinessState, any, error) {
		next, err := actions.DeleteExpense(st, id)
		return next, deleted("Expense"), err
	})
}
