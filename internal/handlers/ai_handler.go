package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

// AskAI answers a question about the caller's own shop data.
func (h *Handler) AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	reply := h.Assistant.Ask(c.Request.Context(), req.Message, s.State(), s.Profile())
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
